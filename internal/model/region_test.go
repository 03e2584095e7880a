package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegionByAbbr(t *testing.T) {
	r, err := RegionByAbbr("NL")
	require.NoError(t, err)
	assert.Equal(t, "19", r.Code)
	assert.Equal(t, "Nuevo León", r.Name)
	assert.Equal(t, "NL", r.GeoJSONSuffix)
}

func TestRegionByAbbrCaseInsensitive(t *testing.T) {
	upper, err := RegionByAbbr("JAL")
	require.NoError(t, err)

	lower, err := RegionByAbbr(" jal ")
	require.NoError(t, err)
	assert.Equal(t, upper, lower)
}

func TestRegionByAbbrUnknown(t *testing.T) {
	_, err := RegionByAbbr("XX")
	assert.Error(t, err)
}

func TestRegionsSorted(t *testing.T) {
	regions := Regions()
	require.Len(t, regions, 5)
	for i := 1; i < len(regions); i++ {
		assert.Less(t, regions[i-1].Abbr, regions[i].Abbr)
	}
}

func TestGeoJSONSuffixes(t *testing.T) {
	cases := map[string]string{
		"NL":   "NL",
		"JAL":  "Jal",
		"CDMX": "Cdmx",
		"VER":  "Ver",
		"OAX":  "Oax",
	}
	for abbr, suffix := range cases {
		r, err := RegionByAbbr(abbr)
		require.NoError(t, err)
		assert.Equal(t, suffix, r.GeoJSONSuffix, abbr)
	}
}

func TestFoldedName(t *testing.T) {
	r, err := RegionByAbbr("NL")
	require.NoError(t, err)
	assert.Equal(t, "Nuevo Leon", r.FoldedName())
}
