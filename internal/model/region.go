package model

import (
	_ "embed"
	"sort"
	"strings"
	"unicode"

	"github.com/rotisserie/eris"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"gopkg.in/yaml.v3"
)

//go:embed regions.yaml
var regionsYAML []byte

// Region identifies one administrative region the grid can cover.
type Region struct {
	Abbr string `yaml:"abbr" json:"abbr"`
	Code string `yaml:"code" json:"code"`
	Name string `yaml:"name" json:"name"`

	// GeoJSONSuffix is the filename suffix used by the boundary repository.
	// Two-letter abbreviations stay upper-case, the rest are capitalized.
	GeoJSONSuffix string `yaml:"geojson_suffix" json:"-"`
}

type regionFile struct {
	Regions []Region `yaml:"regions"`
}

var regionsByAbbr = mustLoadRegions()

func mustLoadRegions() map[string]Region {
	var f regionFile
	if err := yaml.Unmarshal(regionsYAML, &f); err != nil {
		panic(eris.Wrap(err, "model: parse embedded region registry"))
	}
	byAbbr := make(map[string]Region, len(f.Regions))
	for _, r := range f.Regions {
		byAbbr[r.Abbr] = r
	}
	return byAbbr
}

// RegionByAbbr resolves a region by its abbreviation (case-insensitive).
// Unknown regions fail explicitly; no partial grid is ever produced for them.
func RegionByAbbr(abbr string) (Region, error) {
	r, ok := regionsByAbbr[strings.ToUpper(strings.TrimSpace(abbr))]
	if !ok {
		return Region{}, eris.Errorf("model: unknown region %q", abbr)
	}
	return r, nil
}

// Regions returns all known regions ordered by abbreviation.
func Regions() []Region {
	out := make([]Region, 0, len(regionsByAbbr))
	for _, r := range regionsByAbbr {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Abbr < out[j].Abbr })
	return out
}

// FoldedName returns the region name with diacritics stripped and spaces
// collapsed, a plain-ASCII form for export artifact names and other places
// accented text does not survive.
func (r Region) FoldedName() string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, r.Name)
	if err != nil {
		folded = r.Name
	}
	return strings.Join(strings.Fields(folded), " ")
}
