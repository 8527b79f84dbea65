package services_test

import (
	"context"
	"testing"

	"github.com/localnerve/sharmers-menus/internal/models"
	"github.com/localnerve/sharmers-menus/internal/services"
	"github.com/localnerve/sharmers-menus/internal/types"
	"github.com/localnerve/sharmers-menus/tests/helpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sectionNames(sections []models.MenuSection) []string {
	names := make([]string, len(sections))
	for i, s := range sections {
		names[i] = s.Name
	}
	return names
}

func TestCreateSectionDefaultOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	restaurant := f.owner(t, "alice")

	first, err := f.sections.Create(ctx, "alice", restaurant.ID, services.SectionInput{Name: "Starters"})
	require.NoError(t, err)
	assert.Equal(t, 1, first.DisplayOrder)

	_, err = f.sections.Create(ctx, "alice", restaurant.ID, services.SectionInput{Name: "Specials", Order: order(5)})
	require.NoError(t, err)

	next, err := f.sections.Create(ctx, "alice", restaurant.ID, services.SectionInput{Name: "Desserts"})
	require.NoError(t, err)
	assert.Equal(t, 6, next.DisplayOrder)
}

func TestListSectionsOrderIsStable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	restaurant := f.owner(t, "alice")

	helpers.CreateTestSection(t, f.db, restaurant.ID, "Mains", 2)
	helpers.CreateTestSection(t, f.db, restaurant.ID, "Starters", 1)
	helpers.CreateTestSection(t, f.db, restaurant.ID, "Sides", 2)

	for i := 0; i < 3; i++ {
		sections, err := f.sections.ListByRestaurant(ctx, restaurant.ID)
		require.NoError(t, err)
		assert.Equal(t, []string{"Starters", "Mains", "Sides"}, sectionNames(sections))
	}

	empty, err := f.sections.ListByRestaurant(ctx, 9999)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestSectionOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	restaurant := f.owner(t, "alice")
	f.owner(t, "bob")
	section := helpers.CreateTestSection(t, f.db, restaurant.ID, "Mains", 1)

	_, err := f.sections.Create(ctx, "bob", restaurant.ID, services.SectionInput{Name: "Intrusion"})
	assert.Equal(t, types.KindNotAuthorized, kindOf(t, err))

	_, err = f.sections.Create(ctx, "", restaurant.ID, services.SectionInput{Name: "Anonymous"})
	assert.Equal(t, types.KindNotAuthenticated, kindOf(t, err))

	_, err = f.sections.Create(ctx, "alice", 9999, services.SectionInput{Name: "Nowhere"})
	assert.Equal(t, types.KindNotFound, kindOf(t, err))

	_, err = f.sections.Update(ctx, "bob", section.ID, services.SectionInput{Name: "Renamed"})
	assert.Equal(t, types.KindNotAuthorized, kindOf(t, err))

	// Missing targets are NotFound even for a caller who owns nothing
	_, err = f.sections.Update(ctx, "bob", 9999, services.SectionInput{Name: "Renamed"})
	assert.Equal(t, types.KindNotFound, kindOf(t, err))

	err = f.sections.Delete(ctx, "bob", section.ID)
	assert.Equal(t, types.KindNotAuthorized, kindOf(t, err))

	sections, err := f.sections.ListByRestaurant(ctx, restaurant.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Mains"}, sectionNames(sections))
}

func TestUpdateSectionKeepsOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	restaurant := f.owner(t, "alice")
	section := helpers.CreateTestSection(t, f.db, restaurant.ID, "Mains", 3)

	description := "Hearty plates"
	updated, err := f.sections.Update(ctx, "alice", section.ID, services.SectionInput{Name: "Main Courses", Description: &description})
	require.NoError(t, err)
	assert.Equal(t, "Main Courses", updated.Name)
	assert.Equal(t, 3, updated.DisplayOrder)
	require.NotNil(t, updated.Description)
	assert.Equal(t, description, *updated.Description)

	moved, err := f.sections.Update(ctx, "alice", section.ID, services.SectionInput{Name: "Main Courses", Order: order(1)})
	require.NoError(t, err)
	assert.Equal(t, 1, moved.DisplayOrder)
	assert.Nil(t, moved.Description)
}

func TestDeleteSectionCascadesToItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	restaurant := f.owner(t, "alice")
	doomed := helpers.CreateTestSection(t, f.db, restaurant.ID, "Specials", 1)
	kept := helpers.CreateTestSection(t, f.db, restaurant.ID, "Mains", 2)
	helpers.CreateTestItem(t, f.db, doomed.ID, "Soup of the day", "6.50", 1, true)
	helpers.CreateTestItem(t, f.db, doomed.ID, "Catch of the day", "18.00", 2, false)
	helpers.CreateTestItem(t, f.db, kept.ID, "Steak", "24.00", 1, true)

	require.NoError(t, f.sections.Delete(ctx, "alice", doomed.ID))

	items, err := f.items.ListBySection(ctx, doomed.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	var orphans int64
	require.NoError(t, f.db.Model(&models.MenuItem{}).Where("section_id = ?", doomed.ID).Count(&orphans).Error)
	assert.Zero(t, orphans)

	remaining, err := f.items.ListBySection(ctx, kept.ID)
	require.NoError(t, err)
	assert.Len(t, remaining, 1)

	err = f.sections.Delete(ctx, "alice", doomed.ID)
	assert.Equal(t, types.KindNotFound, kindOf(t, err))
}

func TestSectionRoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	restaurant := f.owner(t, "alice")

	in := services.SectionInput{
		Name:        "Raw Bar",
		Description: ptr("Oysters and crudo"),
		Order:       order(4),
		CoverImage:  ptr("https://cdn.example/raw-bar.jpg"),
	}
	created, err := f.sections.Create(ctx, "alice", restaurant.ID, in)
	require.NoError(t, err)

	sections, err := f.sections.ListByRestaurant(ctx, restaurant.ID)
	require.NoError(t, err)
	require.Len(t, sections, 1)
	got := sections[0]
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, restaurant.ID, got.RestaurantID)
	assert.Equal(t, in.Name, got.Name)
	assert.Equal(t, in.Description, got.Description)
	assert.Equal(t, 4, got.DisplayOrder)
	assert.Equal(t, in.CoverImage, got.CoverImage)
}
