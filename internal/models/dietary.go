// dietary.go
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
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Dietary is one tag from the closed dietary enumeration.
type Dietary string

const (
	Vegetarian  Dietary = "Vegetarian"
	Vegan       Dietary = "Vegan"
	GlutenFree  Dietary = "Gluten-Free"
	DairyFree   Dietary = "Dairy-Free"
	NutFree     Dietary = "Nut-Free"
	SeafoodFree Dietary = "Seafood-Free"
)

// DietaryOptions lists every tag in canonical order.
var DietaryOptions = []Dietary{Vegetarian, Vegan, GlutenFree, DairyFree, NutFree, SeafoodFree}

// ParseDietary matches a tag case-insensitively.
func ParseDietary(s string) (Dietary, bool) {
	s = strings.TrimSpace(s)
	for _, d := range DietaryOptions {
		if strings.EqualFold(string(d), s) {
			return d, true
		}
	}
	return "", false
}

// DietaryTags is a set of dietary tags persisted as a JSON array.
type DietaryTags []Dietary

// NewDietaryTags parses, de-duplicates and orders raw tags canonically.
// Unknown tags are returned as an error.
func NewDietaryTags(raw []string) (DietaryTags, error) {
	seen := make(map[Dietary]bool, len(raw))
	for _, r := range raw {
		d, ok := ParseDietary(r)
		if !ok {
			return nil, fmt.Errorf("unknown dietary tag %q", r)
		}
		seen[d] = true
	}
	tags := make(DietaryTags, 0, len(seen))
	for _, d := range DietaryOptions {
		if seen[d] {
			tags = append(tags, d)
		}
	}
	return tags, nil
}

// Has reports whether the set contains d.
func (t DietaryTags) Has(d Dietary) bool {
	for _, v := range t {
		if v == d {
			return true
		}
	}
	return false
}

// Strings returns the tags as plain strings.
func (t DietaryTags) Strings() []string {
	out := make([]string, len(t))
	for i, d := range t {
		out[i] = string(d)
	}
	return out
}

// Value stores the set through datatypes.JSON.
func (t DietaryTags) Value() (driver.Value, error) {
	if t == nil {
		t = DietaryTags{}
	}
	b, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(b).Value()
}

// Scan reads the set back through datatypes.JSON.
func (t *DietaryTags) Scan(value interface{}) error {
	var raw datatypes.JSON
	if err := raw.Scan(value); err != nil {
		return err
	}
	if len(raw) == 0 || string(raw) == "null" {
		*t = DietaryTags{}
		return nil
	}
	var tags DietaryTags
	if err := json.Unmarshal(raw, &tags); err != nil {
		return fmt.Errorf("dietary tags: %w", err)
	}
	*t = tags
	return nil
}

// GormDBDataType picks a JSON column type per driver. MSSQL has no json type.
func (DietaryTags) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	switch db.Dialector.Name() {
	case "mysql":
		return "JSON"
	case "postgres":
		return "JSONB"
	case "sqlserver", "mssql":
		return "NVARCHAR(MAX)"
	case "sqlite":
		return "JSON"
	}
	return "TEXT"
}
