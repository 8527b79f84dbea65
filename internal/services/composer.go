// composer.go
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
	"fmt"
	"strings"

	"github.com/localnerve/sharmers-menus/internal/models"
	"github.com/localnerve/sharmers-menus/internal/types"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/hints"
)

// PublicSection is a section and its available items.
type PublicSection struct {
	Section models.MenuSection `json:"section"`
	Items   []models.MenuItem  `json:"items"`
}

// PublicMenu is the unauthenticated view of a restaurant's menu.
type PublicMenu struct {
	Restaurant models.Restaurant `json:"restaurant"`
	Sections   []PublicSection   `json:"sections"`
	ShareURL   string            `json:"shareUrl"`
}

// PublicMenuComposer assembles public menus. Every call reads current state; nothing is cached.
type PublicMenuComposer struct {
	db      *gorm.DB
	baseURL string
	log     *logrus.Logger
}

// NewPublicMenuComposer creates a composer. baseURL prefixes share links.
func NewPublicMenuComposer(db *gorm.DB, baseURL string, log *logrus.Logger) *PublicMenuComposer {
	return &PublicMenuComposer{db: db, baseURL: strings.TrimRight(baseURL, "/"), log: log}
}

// ShareURL returns the public link for a restaurant's menu.
func (c *PublicMenuComposer) ShareURL(restaurantID uint64) string {
	return fmt.Sprintf("%s/m/%d", c.baseURL, restaurantID)
}

// Compose returns the restaurant with its sections in display order, each holding only its
// available items in display order. Sections left without items are dropped.
func (c *PublicMenuComposer) Compose(ctx context.Context, restaurantID uint64) (*PublicMenu, error) {
	const op = "public.Compose"

	db := c.db.WithContext(ctx)

	var restaurant models.Restaurant
	err := db.Clauses(hints.Comment("select", "public_menu:restaurant")).
		Where("id = ?", restaurantID).
		First(&restaurant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, types.NotFound(op, "restaurant", restaurantID)
	}
	if err != nil {
		return nil, types.Backend(op, err)
	}

	var sections []models.MenuSection
	err = db.Clauses(hints.Comment("select", "public_menu:sections")).
		Where("restaurant_id = ?", restaurantID).
		Order("display_order ASC").Order("id ASC").
		Find(&sections).Error
	if err != nil {
		return nil, types.Backend(op, err)
	}

	menu := &PublicMenu{
		Restaurant: restaurant,
		Sections:   []PublicSection{},
		ShareURL:   c.ShareURL(restaurantID),
	}
	if len(sections) == 0 {
		return menu, nil
	}

	sectionIDs := make([]uint64, len(sections))
	for i, s := range sections {
		sectionIDs[i] = s.ID
	}

	var items []models.MenuItem
	err = db.Clauses(hints.Comment("select", "public_menu:items")).
		Where("section_id IN ?", sectionIDs).
		Where("is_available = ?", true).
		Order("display_order ASC").Order("id ASC").
		Find(&items).Error
	if err != nil {
		return nil, types.Backend(op, err)
	}

	bySection := make(map[uint64][]models.MenuItem, len(sections))
	for _, item := range items {
		if !item.IsAvailable {
			continue
		}
		bySection[item.SectionID] = append(bySection[item.SectionID], item)
	}

	for _, section := range sections {
		available := bySection[section.ID]
		if len(available) == 0 {
			continue
		}
		menu.Sections = append(menu.Sections, PublicSection{Section: section, Items: available})
	}

	c.log.WithFields(logrus.Fields{
		"restaurant": restaurantID,
		"sections":   len(menu.Sections),
		"items":      len(items),
	}).Debug("Composed public menu")

	return menu, nil
}
