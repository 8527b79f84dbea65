package models_test

import (
	"testing"

	"github.com/localnerve/sharmers-menus/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDietary(t *testing.T) {
	d, ok := models.ParseDietary(" gluten-free ")
	assert.True(t, ok)
	assert.Equal(t, models.GlutenFree, d)

	_, ok = models.ParseDietary("Keto")
	assert.False(t, ok)
}

func TestNewDietaryTagsCanonicalSet(t *testing.T) {
	tags, err := models.NewDietaryTags([]string{"nut-free", "Vegan", "VEGAN", "Vegetarian"})
	require.NoError(t, err)

	assert.Equal(t, models.DietaryTags{models.Vegetarian, models.Vegan, models.NutFree}, tags)
	assert.True(t, tags.Has(models.Vegan))
	assert.False(t, tags.Has(models.DairyFree))

	_, err = models.NewDietaryTags([]string{"Vegan", "Paleo"})
	assert.Error(t, err)
}

func TestDietaryTagsValueScan(t *testing.T) {
	tags := models.DietaryTags{models.Vegan, models.SeafoodFree}
	v, err := tags.Value()
	require.NoError(t, err)

	var back models.DietaryTags
	require.NoError(t, back.Scan(v))
	assert.Equal(t, tags, back)

	var empty models.DietaryTags
	v, err = empty.Value()
	require.NoError(t, err)
	assert.NotNil(t, v)
	require.NoError(t, back.Scan(v))
	assert.Empty(t, back)

	require.NoError(t, back.Scan(nil))
	assert.Empty(t, back)
}
