package handlers

import (
	"bytes"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/sharmers-menus/internal/services"
	"github.com/localnerve/sharmers-menus/internal/utils"
)

// PublicHandler serves menus to unauthenticated visitors
type PublicHandler struct {
	Composer *services.PublicMenuComposer
}

// Menu handles GET /api/public/menus/:id
// @Summary Public menu
// @Description The restaurant with its non-empty sections and available items, in display order
// @Tags Public
// @Produce json
// @Param id path int true "Restaurant ID"
// @Success 200 {object} services.PublicMenu
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /public/menus/{id} [get]
func (h *PublicHandler) Menu(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	menu, err := h.Composer.Compose(c.UserContext(), id)
	if err != nil {
		return err
	}

	c.Set(fiber.HeaderCacheControl, "no-store")
	return utils.SuccessResponse(c, menu, fiber.StatusOK)
}

// MenuPDF handles GET /api/public/menus/:id/pdf
// @Summary Printable public menu
// @Tags Public
// @Produce application/pdf
// @Param id path int true "Restaurant ID"
// @Success 200 {file} file
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /public/menus/{id}/pdf [get]
func (h *PublicHandler) MenuPDF(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := h.Composer.RenderPDF(c.UserContext(), id, &buf); err != nil {
		return err
	}

	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=menu-%d.pdf", id))
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Status(fiber.StatusOK).Send(buf.Bytes())
}
