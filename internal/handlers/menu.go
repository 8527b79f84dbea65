package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/sharmers-menus/internal/middleware"
	"github.com/localnerve/sharmers-menus/internal/services"
	"github.com/localnerve/sharmers-menus/internal/utils"
)

// MenuHandler handles menu section and item routes
type MenuHandler struct {
	Sections *services.SectionService
	Items    *services.ItemService
}

// AvailabilityInput is the body of the availability toggle.
type AvailabilityInput struct {
	IsAvailable *bool `json:"isAvailable"`
}

// ListSections handles GET /api/restaurants/:id/sections
// @Summary List a restaurant's sections
// @Description Sections in display order, ties in creation order
// @Tags Menu
// @Produce json
// @Param id path int true "Restaurant ID"
// @Success 200 {array} models.MenuSection
// @Router /restaurants/{id}/sections [get]
func (h *MenuHandler) ListSections(c *fiber.Ctx) error {
	restaurantID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	sections, err := h.Sections.ListByRestaurant(c.UserContext(), restaurantID)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, sections, fiber.StatusOK)
}

// CreateSection handles POST /api/restaurants/:id/sections
// @Summary Add a section
// @Description Without an order the section is appended
// @Tags Menu
// @Accept json
// @Produce json
// @Param id path int true "Restaurant ID"
// @Param body body services.SectionInput true "Section form"
// @Success 201 {object} models.MenuSection
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /restaurants/{id}/sections [post]
func (h *MenuHandler) CreateSection(c *fiber.Ctx) error {
	restaurantID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var in services.SectionInput
	if err := bindJSON(c, "sections.Create", &in); err != nil {
		return err
	}

	section, err := h.Sections.Create(c.UserContext(), middleware.CurrentPrincipalID(c), restaurantID, in)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, section, fiber.StatusCreated)
}

// UpdateSection handles PUT /api/sections/:id
// @Summary Update a section
// @Tags Menu
// @Accept json
// @Produce json
// @Param id path int true "Section ID"
// @Param body body services.SectionInput true "Section form"
// @Success 200 {object} models.MenuSection
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /sections/{id} [put]
func (h *MenuHandler) UpdateSection(c *fiber.Ctx) error {
	sectionID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var in services.SectionInput
	if err := bindJSON(c, "sections.Update", &in); err != nil {
		return err
	}

	section, err := h.Sections.Update(c.UserContext(), middleware.CurrentPrincipalID(c), sectionID, in)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, section, fiber.StatusOK)
}

// DeleteSection handles DELETE /api/sections/:id
// @Summary Delete a section and its items
// @Tags Menu
// @Produce json
// @Param id path int true "Section ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /sections/{id} [delete]
func (h *MenuHandler) DeleteSection(c *fiber.Ctx) error {
	sectionID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.Sections.Delete(c.UserContext(), middleware.CurrentPrincipalID(c), sectionID); err != nil {
		return err
	}
	return utils.MutationSuccessResponse(c, "Section deleted")
}

// ListItems handles GET /api/sections/:id/items
// @Summary List a section's items
// @Description Items in display order, including unavailable ones
// @Tags Menu
// @Produce json
// @Param id path int true "Section ID"
// @Success 200 {array} models.MenuItem
// @Router /sections/{id}/items [get]
func (h *MenuHandler) ListItems(c *fiber.Ctx) error {
	sectionID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	items, err := h.Items.ListBySection(c.UserContext(), sectionID)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, items, fiber.StatusOK)
}

// CreateItem handles POST /api/sections/:id/items
// @Summary Add an item
// @Description Items are available by default and appended without an order
// @Tags Menu
// @Accept json
// @Produce json
// @Param id path int true "Section ID"
// @Param body body services.ItemInput true "Item form"
// @Success 201 {object} models.MenuItem
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /sections/{id}/items [post]
func (h *MenuHandler) CreateItem(c *fiber.Ctx) error {
	sectionID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var in services.ItemInput
	if err := bindJSON(c, "items.Create", &in); err != nil {
		return err
	}

	item, err := h.Items.Create(c.UserContext(), middleware.CurrentPrincipalID(c), sectionID, in)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, item, fiber.StatusCreated)
}

// UpdateItem handles PUT /api/items/:id
// @Summary Update an item
// @Tags Menu
// @Accept json
// @Produce json
// @Param id path int true "Item ID"
// @Param body body services.ItemInput true "Item form"
// @Success 200 {object} models.MenuItem
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /items/{id} [put]
func (h *MenuHandler) UpdateItem(c *fiber.Ctx) error {
	itemID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var in services.ItemInput
	if err := bindJSON(c, "items.Update", &in); err != nil {
		return err
	}

	item, err := h.Items.Update(c.UserContext(), middleware.CurrentPrincipalID(c), itemID, in)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, item, fiber.StatusOK)
}

// SetAvailability handles PATCH /api/items/:id/availability
// @Summary Toggle item availability
// @Tags Menu
// @Accept json
// @Produce json
// @Param id path int true "Item ID"
// @Param body body AvailabilityInput true "Availability"
// @Success 200 {object} models.MenuItem
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /items/{id}/availability [patch]
func (h *MenuHandler) SetAvailability(c *fiber.Ctx) error {
	itemID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var in AvailabilityInput
	if err := bindJSON(c, "items.SetAvailability", &in); err != nil {
		return err
	}
	if in.IsAvailable == nil {
		return missingField("items.SetAvailability", "isAvailable")
	}

	item, err := h.Items.SetAvailability(c.UserContext(), middleware.CurrentPrincipalID(c), itemID, *in.IsAvailable)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, item, fiber.StatusOK)
}

// DeleteItem handles DELETE /api/items/:id
// @Summary Delete an item
// @Tags Menu
// @Produce json
// @Param id path int true "Item ID"
// @Success 200 {object} utils.SuccessResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /items/{id} [delete]
func (h *MenuHandler) DeleteItem(c *fiber.Ctx) error {
	itemID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	if err := h.Items.Delete(c.UserContext(), middleware.CurrentPrincipalID(c), itemID); err != nil {
		return err
	}
	return utils.MutationSuccessResponse(c, "Item deleted")
}
