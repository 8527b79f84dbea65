package services

import (
	"context"
	"strings"

	"github.com/localnerve/sharmers-menus/internal/models"
	"github.com/localnerve/sharmers-menus/internal/types"
	"github.com/localnerve/sharmers-menus/internal/validation"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ItemService manages the items of a menu section.
type ItemService struct {
	db       *gorm.DB
	validate *validation.Validator
	log      *logrus.Logger
}

// NewItemService creates an ItemService.
func NewItemService(db *gorm.DB, validate *validation.Validator, log *logrus.Logger) *ItemService {
	return &ItemService{db: db, validate: validate, log: log}
}

// ListBySection returns the section's items by display order, ties in insertion order.
// Unavailable items are included.
func (s *ItemService) ListBySection(ctx context.Context, sectionID uint64) ([]models.MenuItem, error) {
	items := []models.MenuItem{}
	err := s.db.WithContext(ctx).
		Where("section_id = ?", sectionID).
		Order("display_order ASC").Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, types.Backend("items.List", err)
	}
	return items, nil
}

// Create adds an item. Items are available unless the input says otherwise.
func (s *ItemService) Create(ctx context.Context, callerID string, sectionID uint64, in ItemInput) (*models.MenuItem, error) {
	const op = "items.Create"

	if err := requireCaller(op, callerID); err != nil {
		return nil, err
	}
	dietary, err := s.check(op, in)
	if err != nil {
		return nil, err
	}

	var item models.MenuItem
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := authorizeSection(tx, op, callerID, sectionID); err != nil {
			return err
		}

		item = models.MenuItem{
			SectionID:   sectionID,
			Name:        strings.TrimSpace(in.Name),
			Description: strings.TrimSpace(in.Description),
			Price:       in.Price.Round(2),
			Image:       trimmed(in.Image),
			IsAvailable: true,
			Dietary:     dietary,
		}
		if in.IsAvailable != nil {
			item.IsAvailable = *in.IsAvailable
		}
		if in.Order != nil {
			item.DisplayOrder = in.Order.Int()
		} else {
			order, err := nextOrder(tx, &models.MenuItem{}, "section_id", sectionID)
			if err != nil {
				return err
			}
			item.DisplayOrder = order
		}

		return tx.Create(&item).Error
	})
	if err != nil {
		return nil, types.Backend(op, err)
	}
	return &item, nil
}

// Update changes an item's fields. Nil order or availability keep their current values.
func (s *ItemService) Update(ctx context.Context, callerID string, itemID uint64, in ItemInput) (*models.MenuItem, error) {
	const op = "items.Update"

	if err := requireCaller(op, callerID); err != nil {
		return nil, err
	}
	dietary, err := s.check(op, in)
	if err != nil {
		return nil, err
	}

	changes := map[string]interface{}{
		"name":        strings.TrimSpace(in.Name),
		"description": strings.TrimSpace(in.Description),
		"price":       in.Price.Round(2),
		"image":       trimmed(in.Image),
		"dietary":     dietary,
	}
	if in.IsAvailable != nil {
		changes["is_available"] = *in.IsAvailable
	}
	if in.Order != nil {
		changes["display_order"] = in.Order.Int()
	}

	return s.apply(ctx, op, callerID, itemID, changes)
}

// SetAvailability changes only the availability flag.
func (s *ItemService) SetAvailability(ctx context.Context, callerID string, itemID uint64, available bool) (*models.MenuItem, error) {
	const op = "items.SetAvailability"

	if err := requireCaller(op, callerID); err != nil {
		return nil, err
	}
	return s.apply(ctx, op, callerID, itemID, map[string]interface{}{"is_available": available})
}

// Delete removes an item.
func (s *ItemService) Delete(ctx context.Context, callerID string, itemID uint64) error {
	const op = "items.Delete"

	if err := requireCaller(op, callerID); err != nil {
		return err
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := authorizeItem(tx, op, callerID, itemID)
		if err != nil {
			return err
		}
		return tx.Where("id = ?", item.ID).Delete(&models.MenuItem{}).Error
	})
	if err != nil {
		return types.Backend(op, err)
	}
	return nil
}

func (s *ItemService) apply(ctx context.Context, op, callerID string, itemID uint64, changes map[string]interface{}) (*models.MenuItem, error) {
	var updated models.MenuItem
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		item, err := authorizeItem(tx, op, callerID, itemID)
		if err != nil {
			return err
		}
		if err := tx.Model(&models.MenuItem{}).Where("id = ?", item.ID).Updates(changes).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", item.ID).First(&updated).Error
	})
	if err != nil {
		return nil, types.Backend(op, err)
	}
	return &updated, nil
}

// check validates the input and returns its canonical dietary tags.
func (s *ItemService) check(op string, in ItemInput) (models.DietaryTags, error) {
	if err := s.validate.Struct(op, in); err != nil {
		return nil, err
	}
	dietary, err := models.NewDietaryTags(in.Dietary.Slice())
	if err != nil {
		return nil, types.Validation(op, map[string]string{"dietary": err.Error()})
	}
	return dietary, nil
}
