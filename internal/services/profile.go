package services

import (
	"context"
	"errors"

	"github.com/localnerve/sharmers-menus/internal/auth"
	"github.com/localnerve/sharmers-menus/internal/models"
	"github.com/localnerve/sharmers-menus/internal/types"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProfileStore reads and links owner profiles.
type ProfileStore struct {
	db  *gorm.DB
	log *logrus.Logger
}

// NewProfileStore creates a ProfileStore.
func NewProfileStore(db *gorm.DB, log *logrus.Logger) *ProfileStore {
	return &ProfileStore{db: db, log: log}
}

// GetProfile returns the profile of principalID, or a NotFound error.
func (s *ProfileStore) GetProfile(ctx context.Context, principalID string) (*models.Profile, error) {
	const op = "profiles.Get"

	var profile models.Profile
	err := s.db.WithContext(ctx).Where("principal_id = ?", principalID).First(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NotFound(op, "profile", principalID)
	}
	if err != nil {
		return nil, types.Backend(op, err)
	}
	return &profile, nil
}

// EnsureProfile creates the profile for a newly registered or signed in principal.
// An existing profile is returned untouched.
func (s *ProfileStore) EnsureProfile(ctx context.Context, principal auth.Principal) (*models.Profile, error) {
	const op = "profiles.Ensure"

	if principal.ID == "" {
		return nil, types.NewError(types.KindNotAuthenticated, op, "no principal")
	}

	var profile models.Profile
	err := s.db.WithContext(ctx).
		Where(models.Profile{PrincipalID: principal.ID}).
		Attrs(models.Profile{Email: principal.Email, DisplayName: principal.DisplayName}).
		FirstOrCreate(&profile).Error
	if err != nil {
		return nil, types.Backend(op, err)
	}
	return &profile, nil
}

// SetOwnedRestaurant links principalID to restaurantID. It reports false, without error, when
// the profile or restaurant does not exist, when another profile already owns the restaurant,
// or when the profile already owns a different restaurant. Linking the same pair twice succeeds.
func (s *ProfileStore) SetOwnedRestaurant(ctx context.Context, principalID string, restaurantID uint64) (bool, error) {
	const op = "profiles.SetOwnedRestaurant"

	linked := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var profile models.Profile
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("principal_id = ?", principalID).
			First(&profile).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		var restaurants int64
		if err := tx.Model(&models.Restaurant{}).Where("id = ?", restaurantID).Count(&restaurants).Error; err != nil {
			return err
		}
		if restaurants == 0 {
			return nil
		}

		if profile.OwnedRestaurantID != nil {
			linked = *profile.OwnedRestaurantID == restaurantID
			return nil
		}

		var owners int64
		if err := tx.Model(&models.Profile{}).
			Where("owned_restaurant_id = ? AND principal_id <> ?", restaurantID, principalID).
			Count(&owners).Error; err != nil {
			return err
		}
		if owners > 0 {
			return nil
		}

		if err := tx.Model(&models.Profile{}).
			Where("principal_id = ?", principalID).
			Update("owned_restaurant_id", restaurantID).Error; err != nil {
			return err
		}
		linked = true
		return nil
	})
	if err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"principal":  principalID,
			"restaurant": restaurantID,
		}).Error("Failed to link restaurant to profile")
		return false, types.Backend(op, err)
	}
	return linked, nil
}
