// db.go
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

package helpers

import (
	"testing"
	"time"

	"github.com/localnerve/sharmers-menus/internal/config"
	"github.com/localnerve/sharmers-menus/internal/database"
	"github.com/localnerve/sharmers-menus/internal/logger"
	"github.com/localnerve/sharmers-menus/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TestConfig returns a valid configuration for an in-memory SQLite database and local auth.
func TestConfig() *config.Config {
	return &config.Config{
		Port:                 "3000",
		PublicBaseURL:        "https://menus.test",
		CORSOrigins:          "*",
		DBType:               "sqlite",
		DBAppDatabase:        ":memory:",
		DBAppConnectionLimit: 1,
		DBConnectionLimit:    1,
		DBLogLevel:           "silent",
		AuthProvider:         "local",
		JWTSecret:            "test-secret-0123456789",
		JWTTTL:               24 * time.Hour,
		SessionCookie:        "cookie_session",
		LogLevel:             "error",
		LogFormat:            "text",
	}
}

// NewMemoryDB opens a migrated in-memory SQLite database.
// The pool is a single connection so every query sees the same database.
func NewMemoryDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Connect(TestConfig(), logger.Discard())
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	t.Cleanup(func() {
		_ = database.Close(db)
	})

	return db
}

// CreateTestProfile creates a profile for a principal id.
func CreateTestProfile(t *testing.T, db *gorm.DB, principalID, email string) *models.Profile {
	t.Helper()
	profile := &models.Profile{PrincipalID: principalID, Email: email}
	if err := db.Create(profile).Error; err != nil {
		t.Fatalf("Failed to create profile: %v", err)
	}
	return profile
}

// CreateTestRestaurant creates a restaurant and, when ownerID is not empty, links it to that owner's profile.
func CreateTestRestaurant(t *testing.T, db *gorm.DB, ownerID, name string) *models.Restaurant {
	t.Helper()
	restaurant := &models.Restaurant{
		Name:      name,
		Address:   "1 Main St",
		Phone:     "555-0100",
		Cuisine:   "Bistro",
		Email:     "hello@example.com",
		CreatedBy: ownerID,
	}
	if err := db.Create(restaurant).Error; err != nil {
		t.Fatalf("Failed to create restaurant: %v", err)
	}
	if ownerID != "" {
		err := db.Model(&models.Profile{}).
			Where("principal_id = ?", ownerID).
			Update("owned_restaurant_id", restaurant.ID).Error
		if err != nil {
			t.Fatalf("Failed to link restaurant: %v", err)
		}
	}
	return restaurant
}

// CreateTestSection creates a section with an explicit display order.
func CreateTestSection(t *testing.T, db *gorm.DB, restaurantID uint64, name string, order int) *models.MenuSection {
	t.Helper()
	section := &models.MenuSection{RestaurantID: restaurantID, Name: name, DisplayOrder: order}
	if err := db.Create(section).Error; err != nil {
		t.Fatalf("Failed to create section: %v", err)
	}
	return section
}

// CreateTestItem creates an item with an explicit display order and availability.
func CreateTestItem(t *testing.T, db *gorm.DB, sectionID uint64, name, price string, order int, available bool) *models.MenuItem {
	t.Helper()
	item := &models.MenuItem{
		SectionID:    sectionID,
		Name:         name,
		Price:        decimal.RequireFromString(price),
		DisplayOrder: order,
		IsAvailable:  available,
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("Failed to create item: %v", err)
	}
	return item
}
