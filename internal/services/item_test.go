package services_test

import (
	"context"
	"testing"

	"github.com/localnerve/sharmers-menus/internal/models"
	"github.com/localnerve/sharmers-menus/internal/types"
	"github.com/localnerve/sharmers-menus/tests/helpers"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateItemDefaults(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	restaurant := f.owner(t, "alice")
	section := helpers.CreateTestSection(t, f.db, restaurant.ID, "Mains", 1)

	in := itemInput(" Fish Pie ", "14.499")
	in.Dietary = types.FlexList[string]{"nut-free", "Seafood-Free", "NUT-FREE"}

	item, err := f.items.Create(ctx, "alice", section.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Fish Pie", item.Name)
	assert.True(t, item.IsAvailable)
	assert.Equal(t, 1, item.DisplayOrder)
	assert.True(t, decimal.RequireFromString("14.50").Equal(item.Price))
	assert.Equal(t, models.DietaryTags{models.NutFree, models.SeafoodFree}, item.Dietary)

	hidden := false
	in = itemInput("Lobster", "42")
	in.IsAvailable = &hidden
	lobster, err := f.items.Create(ctx, "alice", section.ID, in)
	require.NoError(t, err)
	assert.Equal(t, 2, lobster.DisplayOrder)

	items, err := f.items.ListBySection(ctx, section.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.False(t, items[1].IsAvailable)
	assert.Equal(t, models.DietaryTags{models.NutFree, models.SeafoodFree}, items[0].Dietary)
}

func TestCreateItemValidation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	restaurant := f.owner(t, "alice")
	section := helpers.CreateTestSection(t, f.db, restaurant.ID, "Mains", 1)

	_, err := f.items.Create(ctx, "alice", section.ID, itemInput("Refund", "-1"))
	assert.Equal(t, types.KindValidationFailed, kindOf(t, err))

	in := itemInput("Mystery", "5")
	in.Dietary = types.FlexList[string]{"Carnivore"}
	_, err = f.items.Create(ctx, "alice", section.ID, in)
	assert.Equal(t, types.KindValidationFailed, kindOf(t, err))

	items, err := f.items.ListBySection(ctx, section.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestItemOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	restaurant := f.owner(t, "alice")
	f.owner(t, "bob")
	section := helpers.CreateTestSection(t, f.db, restaurant.ID, "Mains", 1)
	item := helpers.CreateTestItem(t, f.db, section.ID, "Steak", "24.00", 1, true)

	_, err := f.items.Create(ctx, "bob", section.ID, itemInput("Intrusion", "1"))
	assert.Equal(t, types.KindNotAuthorized, kindOf(t, err))

	_, err = f.items.Update(ctx, "bob", item.ID, itemInput("Cheap Steak", "1"))
	assert.Equal(t, types.KindNotAuthorized, kindOf(t, err))

	_, err = f.items.SetAvailability(ctx, "bob", item.ID, false)
	assert.Equal(t, types.KindNotAuthorized, kindOf(t, err))

	err = f.items.Delete(ctx, "bob", item.ID)
	assert.Equal(t, types.KindNotAuthorized, kindOf(t, err))

	_, err = f.items.Update(ctx, "alice", 9999, itemInput("Ghost", "1"))
	assert.Equal(t, types.KindNotFound, kindOf(t, err))

	_, err = f.items.Create(ctx, "alice", 9999, itemInput("Ghost", "1"))
	assert.Equal(t, types.KindNotFound, kindOf(t, err))

	unchanged, err := f.items.ListBySection(ctx, section.ID)
	require.NoError(t, err)
	require.Len(t, unchanged, 1)
	assert.Equal(t, "Steak", unchanged[0].Name)
	assert.True(t, unchanged[0].IsAvailable)
}

func TestUpdateItemAndAvailability(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	restaurant := f.owner(t, "alice")
	section := helpers.CreateTestSection(t, f.db, restaurant.ID, "Mains", 1)
	item := helpers.CreateTestItem(t, f.db, section.ID, "Steak", "24.00", 4, true)

	in := itemInput("Ribeye", "27.5")
	in.Dietary = types.FlexList[string]{"Gluten-Free"}
	updated, err := f.items.Update(ctx, "alice", item.ID, in)
	require.NoError(t, err)
	assert.Equal(t, "Ribeye", updated.Name)
	assert.Equal(t, "27.50", updated.Price.StringFixed(2))
	assert.Equal(t, 4, updated.DisplayOrder)
	assert.True(t, updated.IsAvailable)
	assert.Equal(t, models.DietaryTags{models.GlutenFree}, updated.Dietary)

	off, err := f.items.SetAvailability(ctx, "alice", item.ID, false)
	require.NoError(t, err)
	assert.False(t, off.IsAvailable)
	assert.Equal(t, "Ribeye", off.Name)

	on, err := f.items.SetAvailability(ctx, "alice", item.ID, true)
	require.NoError(t, err)
	assert.True(t, on.IsAvailable)

	require.NoError(t, f.items.Delete(ctx, "alice", item.ID))
	items, err := f.items.ListBySection(ctx, section.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestListItemsIncludesUnavailable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	restaurant := f.owner(t, "alice")
	section := helpers.CreateTestSection(t, f.db, restaurant.ID, "Mains", 1)
	helpers.CreateTestItem(t, f.db, section.ID, "B", "1", 2, true)
	helpers.CreateTestItem(t, f.db, section.ID, "A", "1", 1, false)
	helpers.CreateTestItem(t, f.db, section.ID, "C", "1", 2, true)

	items, err := f.items.ListBySection(ctx, section.ID)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, []string{"A", "B", "C"}, []string{items[0].Name, items[1].Name, items[2].Name})
}

func TestItemRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	restaurant := f.owner(t, "alice")
	section := helpers.CreateTestSection(t, f.db, restaurant.ID, "Mains", 1)

	in := itemInput("Grilled Bream", "18.75")
	in.Description = "Whole fish, lemon, capers"
	in.Image = ptr("https://cdn.example/bream.jpg")
	in.IsAvailable = ptr(false)
	in.Dietary = types.FlexList[string]{"Gluten-Free", "Dairy-Free"}
	in.Order = order(3)

	created, err := f.items.Create(ctx, "alice", section.ID, in)
	require.NoError(t, err)

	items, err := f.items.ListBySection(ctx, section.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	got := items[0]
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, section.ID, got.SectionID)
	assert.Equal(t, in.Name, got.Name)
	assert.Equal(t, in.Description, got.Description)
	assert.True(t, decimal.RequireFromString("18.75").Equal(got.Price), got.Price.String())
	assert.Equal(t, in.Image, got.Image)
	assert.False(t, got.IsAvailable)
	assert.Equal(t, models.DietaryTags{models.GlutenFree, models.DairyFree}, got.Dietary)
	assert.Equal(t, 3, got.DisplayOrder)
}

func TestCreateItemRejectsOversizedPrice(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	restaurant := f.owner(t, "alice")
	section := helpers.CreateTestSection(t, f.db, restaurant.ID, "Mains", 1)

	_, err := f.items.Create(ctx, "alice", section.ID, itemInput("Gold Leaf Steak", "123456789012.5"))
	var e *types.Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, types.KindValidationFailed, e.Kind)
	assert.Contains(t, e.Fields, "price")

	items, err := f.items.ListBySection(ctx, section.ID)
	require.NoError(t, err)
	assert.Empty(t, items)
}
