package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/sharmers-menus/internal/middleware"
	"github.com/localnerve/sharmers-menus/internal/services"
	"github.com/localnerve/sharmers-menus/internal/types"
	"github.com/localnerve/sharmers-menus/internal/utils"
)

// RestaurantHandler handles restaurant routes
type RestaurantHandler struct {
	Restaurants *services.RestaurantService
}

// List handles GET /api/restaurants
// @Summary List restaurants
// @Description Lists every restaurant by id. Without a limit the full set is returned.
// @Tags Restaurants
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Rows to skip"
// @Success 200 {array} models.Restaurant
// @Failure 503 {object} utils.ErrorResponseStruct
// @Router /restaurants [get]
func (h *RestaurantHandler) List(c *fiber.Ctx) error {
	var opts services.ListOptions
	if err := c.QueryParser(&opts); err != nil || opts.Limit < 0 || opts.Offset < 0 {
		return types.Validation("restaurants.List", map[string]string{"limit": "limit and offset must be non-negative integers"})
	}

	restaurants, err := h.Restaurants.GetAll(c.UserContext(), opts)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, restaurants, fiber.StatusOK)
}

// Mine handles GET /api/restaurants/mine
// @Summary The caller's restaurant
// @Tags Restaurants
// @Produce json
// @Success 200 {object} models.Restaurant
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /restaurants/mine [get]
func (h *RestaurantHandler) Mine(c *fiber.Ctx) error {
	restaurant, err := h.Restaurants.GetOwned(c.UserContext(), middleware.CurrentPrincipalID(c))
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, restaurant, fiber.StatusOK)
}

// Get handles GET /api/restaurants/:id
// @Summary Get a restaurant
// @Tags Restaurants
// @Produce json
// @Param id path int true "Restaurant ID"
// @Success 200 {object} models.Restaurant
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /restaurants/{id} [get]
func (h *RestaurantHandler) Get(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	restaurant, err := h.Restaurants.GetByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, restaurant, fiber.StatusOK)
}

// Create handles POST /api/restaurants
// @Summary Create the caller's restaurant
// @Description One restaurant per owner. A 409 of type orphaned_write carries the restaurantId to pass to the link route.
// @Tags Restaurants
// @Accept json
// @Produce json
// @Param body body services.RestaurantInput true "Restaurant form"
// @Success 201 {object} models.Restaurant
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /restaurants [post]
func (h *RestaurantHandler) Create(c *fiber.Ctx) error {
	var in services.RestaurantInput
	if err := bindJSON(c, "restaurants.Create", &in); err != nil {
		return err
	}

	restaurant, err := h.Restaurants.Create(c.UserContext(), middleware.CurrentPrincipalID(c), in)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, restaurant, fiber.StatusCreated)
}

// Update handles PUT /api/restaurants/:id
// @Summary Update the caller's restaurant
// @Tags Restaurants
// @Accept json
// @Produce json
// @Param id path int true "Restaurant ID"
// @Param body body services.RestaurantInput true "Restaurant form"
// @Success 200 {object} models.Restaurant
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /restaurants/{id} [put]
func (h *RestaurantHandler) Update(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	var in services.RestaurantInput
	if err := bindJSON(c, "restaurants.Update", &in); err != nil {
		return err
	}

	restaurant, err := h.Restaurants.Update(c.UserContext(), id, in, middleware.CurrentPrincipalID(c))
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, restaurant, fiber.StatusOK)
}

// Link handles POST /api/restaurants/:id/link
// @Summary Link an orphaned restaurant to its creator
// @Description Retries only the owner link after a create answered orphaned_write
// @Tags Restaurants
// @Produce json
// @Param id path int true "Restaurant ID"
// @Success 200 {object} models.Restaurant
// @Failure 403 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /restaurants/{id}/link [post]
func (h *RestaurantHandler) Link(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	restaurant, err := h.Restaurants.LinkOrphan(c.UserContext(), middleware.CurrentPrincipalID(c), id)
	if err != nil {
		return err
	}
	return utils.SuccessResponse(c, restaurant, fiber.StatusOK)
}
