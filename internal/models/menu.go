// menu.go
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

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Profile is the per-principal record linking a user to the restaurant they own.
// The principal id is issued by the auth provider.
type Profile struct {
	PrincipalID       string    `gorm:"type:char(36);primaryKey" json:"id"`
	Email             string    `gorm:"size:255;not null" json:"email"`
	DisplayName       string    `gorm:"size:255" json:"name"`
	OwnedRestaurantID *uint64   `gorm:"index" json:"restaurantId"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

// Restaurant is the public facing business record.
// CreatedBy records the issuing principal; ownership lives on Profile.
type Restaurant struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"size:255;not null;index" json:"name"`
	Description string    `gorm:"type:text" json:"description"`
	Address     string    `gorm:"size:512;not null" json:"address"`
	Phone       string    `gorm:"size:64;not null" json:"phone"`
	Cuisine     string    `gorm:"size:128;not null" json:"cuisine"`
	Email       string    `gorm:"size:255;not null" json:"email"`
	Website     *string   `gorm:"size:512" json:"website,omitempty"`
	Logo        *string   `gorm:"size:1024" json:"logo,omitempty"`
	CoverImage  *string   `gorm:"size:1024" json:"coverImage,omitempty"`
	CreatedBy   string    `gorm:"type:char(36);index" json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// MenuSection groups items within a restaurant's menu.
type MenuSection struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	RestaurantID uint64    `gorm:"not null;index:idx_section_restaurant" json:"restaurantId"`
	Name         string    `gorm:"size:255;not null" json:"name"`
	Description  *string   `gorm:"type:text" json:"description,omitempty"`
	DisplayOrder int       `gorm:"not null;default:0" json:"order"`
	CoverImage   *string   `gorm:"size:1024" json:"coverImage,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// MenuItem is a single dish or product within a section.
type MenuItem struct {
	ID           uint64          `gorm:"primaryKey;autoIncrement" json:"id"`
	SectionID    uint64          `gorm:"not null;index:idx_item_section" json:"sectionId"`
	Name         string          `gorm:"size:255;not null" json:"name"`
	Description  string          `gorm:"type:text" json:"description"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Image        *string         `gorm:"size:1024" json:"image,omitempty"`
	IsAvailable  bool            `gorm:"not null" json:"isAvailable"`
	Dietary      DietaryTags     `json:"dietary"`
	DisplayOrder int             `gorm:"not null;default:0" json:"order"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// TableName overrides the table name for Profile
func (Profile) TableName() string {
	return "profiles"
}

// TableName overrides the table name for Restaurant
func (Restaurant) TableName() string {
	return "restaurants"
}

// TableName overrides the table name for MenuSection
func (MenuSection) TableName() string {
	return "menu_sections"
}

// TableName overrides the table name for MenuItem
func (MenuItem) TableName() string {
	return "menu_items"
}
