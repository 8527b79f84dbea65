package services_test

import (
	"testing"

	"github.com/localnerve/sharmers-menus/internal/logger"
	"github.com/localnerve/sharmers-menus/internal/models"
	"github.com/localnerve/sharmers-menus/internal/services"
	"github.com/localnerve/sharmers-menus/internal/types"
	"github.com/localnerve/sharmers-menus/internal/validation"
	"github.com/localnerve/sharmers-menus/tests/helpers"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db          *gorm.DB
	profiles    *services.ProfileStore
	restaurants *services.RestaurantService
	sections    *services.SectionService
	items       *services.ItemService
	composer    *services.PublicMenuComposer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := helpers.NewMemoryDB(t)
	log := logger.Discard()
	validate := validation.New()
	profiles := services.NewProfileStore(db, log)

	return &fixture{
		db:          db,
		profiles:    profiles,
		restaurants: services.NewRestaurantService(db, profiles, validate, log),
		sections:    services.NewSectionService(db, validate, log),
		items:       services.NewItemService(db, validate, log),
		composer:    services.NewPublicMenuComposer(db, "https://menus.test/", log),
	}
}

// owner creates a profile for id that owns a new restaurant.
func (f *fixture) owner(t *testing.T, id string) *models.Restaurant {
	t.Helper()
	helpers.CreateTestProfile(t, f.db, id, id+"@example.com")
	return helpers.CreateTestRestaurant(t, f.db, id, "Bistro "+id)
}

func restaurantInput(name string) services.RestaurantInput {
	return services.RestaurantInput{
		Name:    name,
		Address: "12 Harbour Rd",
		Phone:   "555-0199",
		Cuisine: "Seafood",
		Email:   "owner@example.com",
	}
}

func itemInput(name, price string) services.ItemInput {
	return services.ItemInput{Name: name, Price: decimal.RequireFromString(price)}
}

func order(n int) *types.FlexInt {
	v := types.FlexInt(n)
	return &v
}

func kindOf(t *testing.T, err error) types.Kind {
	t.Helper()
	require.Error(t, err)
	return types.KindOf(err)
}

func ptr[T any](v T) *T {
	return &v
}
