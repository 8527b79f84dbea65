// restaurant.go
//
// Restaurant menu management data and authorization service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of sharmers-menus.
// sharmers-menus is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// sharmers-menus is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with sharmers-menus.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package services

import (
	"context"
	"errors"
	"strings"

	"github.com/localnerve/sharmers-menus/internal/metrics"
	"github.com/localnerve/sharmers-menus/internal/models"
	"github.com/localnerve/sharmers-menus/internal/types"
	"github.com/localnerve/sharmers-menus/internal/validation"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// RestaurantService manages restaurants. Each owner has at most one restaurant.
type RestaurantService struct {
	db       *gorm.DB
	profiles *ProfileStore
	validate *validation.Validator
	log      *logrus.Logger
}

// NewRestaurantService creates a RestaurantService.
func NewRestaurantService(db *gorm.DB, profiles *ProfileStore, validate *validation.Validator, log *logrus.Logger) *RestaurantService {
	return &RestaurantService{db: db, profiles: profiles, validate: validate, log: log}
}

// Create inserts a restaurant for ownerID and links it to the owner's profile.
// The two writes are not atomic. If the link fails the created restaurant is returned
// along with an OrphanedWrite error carrying its id; LinkOrphan retries the link.
func (s *RestaurantService) Create(ctx context.Context, ownerID string, in RestaurantInput) (*models.Restaurant, error) {
	const op = "restaurants.Create"

	if err := requireCaller(op, ownerID); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(op, in); err != nil {
		return nil, err
	}

	profile, err := s.profiles.GetProfile(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if profile.OwnedRestaurantID != nil {
		return nil, &types.Error{
			Kind:         types.KindConflict,
			Op:           op,
			Message:      "owner already has a restaurant",
			RestaurantID: *profile.OwnedRestaurantID,
		}
	}

	restaurant := models.Restaurant{CreatedBy: ownerID}
	applyRestaurantInput(&restaurant, in)
	if err := s.db.WithContext(ctx).Create(&restaurant).Error; err != nil {
		return nil, types.Backend(op, err)
	}

	linked, linkErr := s.profiles.SetOwnedRestaurant(ctx, ownerID, restaurant.ID)
	if linkErr != nil || !linked {
		metrics.OrphanedRestaurants.Inc()
		s.log.WithError(linkErr).WithFields(logrus.Fields{
			"owner":      ownerID,
			"restaurant": restaurant.ID,
		}).Error("Restaurant created but not linked to owner")
		if linkErr == nil {
			linkErr = errors.New("profile link was refused")
		}
		return &restaurant, types.Orphaned(op, restaurant.ID, linkErr)
	}

	s.log.WithFields(logrus.Fields{
		"owner":      ownerID,
		"restaurant": restaurant.ID,
	}).Info("Restaurant created")
	return &restaurant, nil
}

// LinkOrphan retries only the profile link for a restaurant ownerID created.
func (s *RestaurantService) LinkOrphan(ctx context.Context, ownerID string, restaurantID uint64) (*models.Restaurant, error) {
	const op = "restaurants.LinkOrphan"

	if err := requireCaller(op, ownerID); err != nil {
		return nil, err
	}

	restaurant, err := s.GetByID(ctx, restaurantID)
	if err != nil {
		return nil, err
	}
	if restaurant.CreatedBy != ownerID {
		return nil, types.NewError(types.KindNotAuthorized, op, "restaurant was created by another principal")
	}

	profile, err := s.profiles.GetProfile(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if profile.OwnedRestaurantID != nil {
		if *profile.OwnedRestaurantID == restaurantID {
			return restaurant, nil
		}
		return nil, types.NewError(types.KindConflict, op, "owner already has a restaurant")
	}

	linked, err := s.profiles.SetOwnedRestaurant(ctx, ownerID, restaurantID)
	if err != nil {
		return nil, err
	}
	if !linked {
		return nil, types.NewError(types.KindConflict, op, "restaurant is linked to another owner")
	}

	s.log.WithFields(logrus.Fields{
		"owner":      ownerID,
		"restaurant": restaurantID,
	}).Info("Orphaned restaurant linked")
	return restaurant, nil
}

// Update replaces the restaurant's fields. Only the owning principal may update, and a
// refused update changes nothing.
func (s *RestaurantService) Update(ctx context.Context, restaurantID uint64, in RestaurantInput, callerID string) (*models.Restaurant, error) {
	const op = "restaurants.Update"

	if err := requireCaller(op, callerID); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(op, in); err != nil {
		return nil, err
	}

	var updated models.Restaurant
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		restaurant, err := authorizeRestaurant(tx, op, callerID, restaurantID)
		if err != nil {
			return err
		}

		applyRestaurantInput(restaurant, in)
		if err := tx.Model(&models.Restaurant{}).Where("id = ?", restaurantID).Updates(map[string]interface{}{
			"name":        restaurant.Name,
			"description": restaurant.Description,
			"address":     restaurant.Address,
			"phone":       restaurant.Phone,
			"cuisine":     restaurant.Cuisine,
			"email":       restaurant.Email,
			"website":     restaurant.Website,
			"logo":        restaurant.Logo,
			"cover_image": restaurant.CoverImage,
		}).Error; err != nil {
			return err
		}

		return tx.Where("id = ?", restaurantID).First(&updated).Error
	})
	if err != nil {
		return nil, types.Backend(op, err)
	}
	return &updated, nil
}

// GetByID returns a restaurant without any ownership check.
func (s *RestaurantService) GetByID(ctx context.Context, restaurantID uint64) (*models.Restaurant, error) {
	const op = "restaurants.Get"

	var restaurant models.Restaurant
	err := s.db.WithContext(ctx).Where("id = ?", restaurantID).First(&restaurant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NotFound(op, "restaurant", restaurantID)
	}
	if err != nil {
		return nil, types.Backend(op, err)
	}
	return &restaurant, nil
}

// GetAll lists restaurants by id. A zero limit returns the full set.
func (s *RestaurantService) GetAll(ctx context.Context, opts ListOptions) ([]models.Restaurant, error) {
	const op = "restaurants.GetAll"

	query := s.db.WithContext(ctx).Order("id ASC")
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}

	restaurants := []models.Restaurant{}
	if err := query.Find(&restaurants).Error; err != nil {
		return nil, types.Backend(op, err)
	}
	return restaurants, nil
}

// GetOwned returns the caller's restaurant.
func (s *RestaurantService) GetOwned(ctx context.Context, callerID string) (*models.Restaurant, error) {
	const op = "restaurants.GetOwned"

	if err := requireCaller(op, callerID); err != nil {
		return nil, err
	}
	profile, err := s.profiles.GetProfile(ctx, callerID)
	if err != nil {
		return nil, err
	}
	if profile.OwnedRestaurantID == nil {
		return nil, types.NewError(types.KindNotFound, op, "owner has no restaurant")
	}
	return s.GetByID(ctx, *profile.OwnedRestaurantID)
}

func applyRestaurantInput(r *models.Restaurant, in RestaurantInput) {
	r.Name = strings.TrimSpace(in.Name)
	r.Description = strings.TrimSpace(in.Description)
	r.Address = strings.TrimSpace(in.Address)
	r.Phone = strings.TrimSpace(in.Phone)
	r.Cuisine = strings.TrimSpace(in.Cuisine)
	r.Email = strings.TrimSpace(in.Email)
	r.Website = trimmed(in.Website)
	r.Logo = trimmed(in.Logo)
	r.CoverImage = trimmed(in.CoverImage)
}
