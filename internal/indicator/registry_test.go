package indicator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hexatlas/hexatlas/internal/model"
)

func fetcherNames(fetchers []Fetcher) []string {
	out := make([]string, 0, len(fetchers))
	for _, f := range fetchers {
		out = append(out, f.Name())
	}
	return out
}

func TestRegistryCoversEveryIndicator(t *testing.T) {
	r := NewRegistry(&Deps{})

	for _, key := range model.IndicatorKeys() {
		f, ok := r.ForKey(key)
		require.True(t, ok, key)
		assert.Contains(t, f.Keys(), key)
	}
}

func TestRegistryKeysAreDisjoint(t *testing.T) {
	r := NewRegistry(&Deps{})

	seen := make(map[string]string)
	for _, f := range r.Fetchers() {
		for _, k := range f.Keys() {
			owner, dup := seen[k]
			require.False(t, dup, "key %s owned by both %s and %s", k, owner, f.Name())
			seen[k] = f.Name()
		}
	}
}

func TestSelectMinimalSet(t *testing.T) {
	r := NewRegistry(&Deps{})

	got := r.Select([]string{model.IndTempMax, model.IndWindMean})
	assert.Equal(t, []string{"temperature", "wind_historical"}, fetcherNames(got))

	// One key is enough to trigger a multi-key fetcher, once.
	got = r.Select([]string{model.IndWindMeanOff, model.IndWindMaxOff})
	assert.Equal(t, []string{"wind_forecast"}, fetcherNames(got))
}

func TestSelectAll(t *testing.T) {
	r := NewRegistry(&Deps{})

	got := r.Select(model.IndicatorKeys())
	assert.Len(t, got, len(r.Fetchers()))
}

func TestSelectIgnoresUnknownKeys(t *testing.T) {
	r := NewRegistry(&Deps{})

	assert.Empty(t, r.Select([]string{"bogus"}))
	assert.Empty(t, r.Select(nil))
}
