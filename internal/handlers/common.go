// common.go
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

package handlers

import (
	"encoding/json"
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/sharmers-menus/internal/middleware"
	"github.com/localnerve/sharmers-menus/internal/types"
	"github.com/localnerve/sharmers-menus/internal/utils"
	"github.com/sirupsen/logrus"
)

// parseID reads a positive numeric path parameter.
func parseID(c *fiber.Ctx, name string) (uint64, error) {
	raw := c.Params(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, types.Validation("params", map[string]string{name: "must be a positive integer"})
	}
	return id, nil
}

// bindJSON decodes the request body into v. Malformed bodies are validation failures.
func bindJSON(c *fiber.Ctx, op string, v interface{}) error {
	if len(c.Body()) == 0 {
		return types.Validation(op, map[string]string{"body": "is required"})
	}
	if err := json.Unmarshal(c.Body(), v); err != nil {
		field := "body"
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			field = typeErr.Field
		}
		return &types.Error{
			Kind:    types.KindValidationFailed,
			Op:      op,
			Message: "malformed request body",
			Fields:  map[string]string{field: "has an invalid value"},
			Err:     err,
		}
	}
	return nil
}

// ErrorHandler renders every error returned by a handler in the standard envelope.
func ErrorHandler(log *logrus.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var domainErr *types.Error
		if errors.As(err, &domainErr) {
			entry := log.WithFields(logrus.Fields{
				"op":     domainErr.Op,
				"kind":   domainErr.Kind.String(),
				"url":    c.OriginalURL(),
				"method": c.Method(),
				"api":    middleware.APIVersion(c),
			})
			switch domainErr.Kind {
			case types.KindBackendUnavailable, types.KindOrphanedWrite, types.KindUnknown:
				entry.WithError(err).Error("Request failed")
			default:
				entry.Debug(domainErr.Error())
			}
			return utils.DomainErrorResponse(c, err)
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return utils.ErrorResponse(c, fiberErr.Message, fiberErr.Code, "http")
		}

		log.WithError(err).WithField("url", c.OriginalURL()).Error("Unhandled error")
		return utils.ErrorResponse(c, "Internal Server Error", fiber.StatusInternalServerError, types.KindUnknown.String())
	}
}

// NotFound handles unmatched routes.
func NotFound(c *fiber.Ctx) error {
	return utils.NotFoundResponse(c, "[404] Resource Not Found")
}

func missingField(op, field string) error {
	return types.Validation(op, map[string]string{field: "is required"})
}
