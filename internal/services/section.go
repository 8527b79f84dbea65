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

// SectionService manages the menu sections of a restaurant.
type SectionService struct {
	db       *gorm.DB
	validate *validation.Validator
	log      *logrus.Logger
}

// NewSectionService creates a SectionService.
func NewSectionService(db *gorm.DB, validate *validation.Validator, log *logrus.Logger) *SectionService {
	return &SectionService{db: db, validate: validate, log: log}
}

// ListByRestaurant returns the restaurant's sections by display order, ties in insertion order.
func (s *SectionService) ListByRestaurant(ctx context.Context, restaurantID uint64) ([]models.MenuSection, error) {
	sections := []models.MenuSection{}
	err := s.db.WithContext(ctx).
		Where("restaurant_id = ?", restaurantID).
		Order("display_order ASC").Order("id ASC").
		Find(&sections).Error
	if err != nil {
		return nil, types.Backend("sections.List", err)
	}
	return sections, nil
}

// Create adds a section. Without an order it goes after the last section.
func (s *SectionService) Create(ctx context.Context, callerID string, restaurantID uint64, in SectionInput) (*models.MenuSection, error) {
	const op = "sections.Create"

	if err := requireCaller(op, callerID); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(op, in); err != nil {
		return nil, err
	}

	var section models.MenuSection
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := authorizeRestaurant(tx, op, callerID, restaurantID); err != nil {
			return err
		}

		section = models.MenuSection{
			RestaurantID: restaurantID,
			Name:         strings.TrimSpace(in.Name),
			Description:  trimmed(in.Description),
			CoverImage:   trimmed(in.CoverImage),
		}
		if in.Order != nil {
			section.DisplayOrder = in.Order.Int()
		} else {
			order, err := nextOrder(tx, &models.MenuSection{}, "restaurant_id", restaurantID)
			if err != nil {
				return err
			}
			section.DisplayOrder = order
		}

		return tx.Create(&section).Error
	})
	if err != nil {
		return nil, types.Backend(op, err)
	}
	return &section, nil
}

// Update changes a section's fields. A nil order keeps the current position.
func (s *SectionService) Update(ctx context.Context, callerID string, sectionID uint64, in SectionInput) (*models.MenuSection, error) {
	const op = "sections.Update"

	if err := requireCaller(op, callerID); err != nil {
		return nil, err
	}
	if err := s.validate.Struct(op, in); err != nil {
		return nil, err
	}

	var updated models.MenuSection
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		section, err := authorizeSection(tx, op, callerID, sectionID)
		if err != nil {
			return err
		}

		changes := map[string]interface{}{
			"name":        strings.TrimSpace(in.Name),
			"description": trimmed(in.Description),
			"cover_image": trimmed(in.CoverImage),
		}
		if in.Order != nil {
			changes["display_order"] = in.Order.Int()
		}
		if err := tx.Model(&models.MenuSection{}).Where("id = ?", section.ID).Updates(changes).Error; err != nil {
			return err
		}

		return tx.Where("id = ?", section.ID).First(&updated).Error
	})
	if err != nil {
		return nil, types.Backend(op, err)
	}
	return &updated, nil
}

// Delete removes a section and every item in it, in one transaction.
func (s *SectionService) Delete(ctx context.Context, callerID string, sectionID uint64) error {
	const op = "sections.Delete"

	if err := requireCaller(op, callerID); err != nil {
		return err
	}

	var removedItems int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		section, err := authorizeSection(tx, op, callerID, sectionID)
		if err != nil {
			return err
		}

		result := tx.Where("section_id = ?", section.ID).Delete(&models.MenuItem{})
		if result.Error != nil {
			return result.Error
		}
		removedItems = result.RowsAffected

		return tx.Where("id = ?", section.ID).Delete(&models.MenuSection{}).Error
	})
	if err != nil {
		return types.Backend(op, err)
	}

	s.log.WithFields(logrus.Fields{
		"section": sectionID,
		"items":   removedItems,
	}).Info("Section deleted")
	return nil
}
