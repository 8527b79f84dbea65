// inputs.go
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
	"strings"

	"github.com/localnerve/sharmers-menus/internal/types"
	"github.com/shopspring/decimal"
)

// RestaurantInput is the restaurant form. An update replaces every field,
// so omitted optional fields are cleared.
type RestaurantInput struct {
	Name        string  `json:"name" validate:"nonblank,max=255"`
	Description string  `json:"description" validate:"max=5000"`
	Address     string  `json:"address" validate:"nonblank,max=512"`
	Phone       string  `json:"phone" validate:"nonblank,max=64"`
	Cuisine     string  `json:"cuisine" validate:"nonblank,max=128"`
	Email       string  `json:"email" validate:"nonblank,email_shape,max=255"`
	Website     *string `json:"website,omitempty" validate:"omitempty,max=512"`
	Logo        *string `json:"logo,omitempty" validate:"omitempty,max=1024"`
	CoverImage  *string `json:"coverImage,omitempty" validate:"omitempty,max=1024"`
}

// SectionInput is the menu section form. A nil Order means "append" on create
// and "keep" on update.
type SectionInput struct {
	Name        string         `json:"name" validate:"nonblank,max=255"`
	Description *string        `json:"description,omitempty" validate:"omitempty,max=5000"`
	Order       *types.FlexInt `json:"order,omitempty" validate:"omitempty,gte=1"`
	CoverImage  *string        `json:"coverImage,omitempty" validate:"omitempty,max=1024"`
}

// ItemInput is the menu item form. A nil IsAvailable means available on create
// and unchanged on update. Price must fit the decimal(10,2) column.
type ItemInput struct {
	Name        string                 `json:"name" validate:"nonblank,max=255"`
	Description string                 `json:"description" validate:"max=5000"`
	Price       decimal.Decimal        `json:"price" validate:"decimal_gte0,decimal_max=99999999.99"`
	Image       *string                `json:"image,omitempty" validate:"omitempty,max=1024"`
	IsAvailable *bool                  `json:"isAvailable,omitempty"`
	Dietary     types.FlexList[string] `json:"dietary,omitempty" validate:"dive,dietary"`
	Order       *types.FlexInt         `json:"order,omitempty" validate:"omitempty,gte=1"`
}

// RegisterInput is the owner registration form.
type RegisterInput struct {
	Name            string `json:"name" validate:"nonblank,max=255"`
	Email           string `json:"email" validate:"nonblank,email_shape,max=255"`
	Password        string `json:"password" validate:"min=6,max=128"`
	ConfirmPassword string `json:"confirmPassword" validate:"eqfield=Password"`
	AgreeToTerms    bool   `json:"agreeToTerms" validate:"accepted"`
}

// LoginInput is the sign in form.
type LoginInput struct {
	Email    string `json:"email" validate:"nonblank,email_shape"`
	Password string `json:"password" validate:"nonblank"`
}

// ListOptions pages a listing. Limit 0 returns everything.
type ListOptions struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// trimmed returns a trimmed copy of an optional string, nil when blank.
func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
