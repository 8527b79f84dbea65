package types_test

import (
	"encoding/json"
	"testing"

	"github.com/localnerve/sharmers-menus/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexListForms(t *testing.T) {
	cases := []struct {
		name string
		json string
		want []string
	}{
		{"array", `["Vegan","Nut-Free"]`, []string{"Vegan", "Nut-Free"}},
		{"single", `"Vegan"`, []string{"Vegan"}},
		{"comma separated", `"Vegan, Gluten-Free ,"`, []string{"Vegan", "Gluten-Free"}},
		{"null", `null`, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var got types.FlexList[string]
			require.NoError(t, json.Unmarshal([]byte(tc.json), &got))
			assert.Equal(t, tc.want, got.Slice())
		})
	}
}

func TestFlexIntForms(t *testing.T) {
	var in struct {
		Order *types.FlexInt `json:"order"`
	}

	require.NoError(t, json.Unmarshal([]byte(`{"order":3}`), &in))
	assert.Equal(t, 3, in.Order.Int())

	require.NoError(t, json.Unmarshal([]byte(`{"order":" 12 "}`), &in))
	assert.Equal(t, 12, *in.Order.IntPtr())

	assert.Error(t, json.Unmarshal([]byte(`{"order":"first"}`), &in))

	var missing struct {
		Order *types.FlexInt `json:"order"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{}`), &missing))
	assert.Nil(t, missing.Order.IntPtr())
}
