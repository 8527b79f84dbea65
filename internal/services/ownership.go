package services

import (
	"errors"

	"github.com/localnerve/sharmers-menus/internal/models"
	"github.com/localnerve/sharmers-menus/internal/types"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Ownership is re-derived on every mutation: item -> section -> restaurant -> caller profile.
// Existence is checked before ownership, so a missing target is NotFound for everyone.

func requireCaller(op, callerID string) error {
	if callerID == "" {
		return types.NewError(types.KindNotAuthenticated, op, "sign in required")
	}
	return nil
}

// authorizeRestaurant locks the restaurant and checks that callerID's profile owns it.
func authorizeRestaurant(tx *gorm.DB, op, callerID string, restaurantID uint64) (*models.Restaurant, error) {
	var restaurant models.Restaurant
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", restaurantID).
		First(&restaurant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NotFound(op, "restaurant", restaurantID)
	}
	if err != nil {
		return nil, types.Backend(op, err)
	}

	var profile models.Profile
	err = tx.Where("principal_id = ?", callerID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NewError(types.KindNotAuthorized, op, "caller has no owner profile")
	}
	if err != nil {
		return nil, types.Backend(op, err)
	}

	if profile.OwnedRestaurantID == nil || *profile.OwnedRestaurantID != restaurantID {
		return nil, types.NewError(types.KindNotAuthorized, op, "caller does not own this restaurant")
	}
	return &restaurant, nil
}

// authorizeSection loads the section and checks ownership of its restaurant.
func authorizeSection(tx *gorm.DB, op, callerID string, sectionID uint64) (*models.MenuSection, error) {
	var section models.MenuSection
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", sectionID).
		First(&section).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NotFound(op, "section", sectionID)
	}
	if err != nil {
		return nil, types.Backend(op, err)
	}

	if _, err := authorizeRestaurant(tx, op, callerID, section.RestaurantID); err != nil {
		return nil, err
	}
	return &section, nil
}

// authorizeItem loads the item and checks ownership through its section.
func authorizeItem(tx *gorm.DB, op, callerID string, itemID uint64) (*models.MenuItem, error) {
	var item models.MenuItem
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", itemID).
		First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NotFound(op, "item", itemID)
	}
	if err != nil {
		return nil, types.Backend(op, err)
	}

	if _, err := authorizeSection(tx, op, callerID, item.SectionID); err != nil {
		return nil, err
	}
	return &item, nil
}

// nextOrder returns max(display_order)+1 over rows matching column = id, or 1 when there are none.
func nextOrder(tx *gorm.DB, model interface{}, column string, id uint64) (int, error) {
	var maxOrder int
	err := tx.Model(model).
		Where(column+" = ?", id).
		Select("COALESCE(MAX(display_order), 0)").
		Scan(&maxOrder).Error
	if err != nil {
		return 0, err
	}
	return maxOrder + 1, nil
}
