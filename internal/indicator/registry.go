package indicator

// Registry is the declarative table of every fetcher, keyed by the indicator
// keys it produces. The aggregation engine iterates it to decide which
// fetchers a selection needs; adding an indicator is a data change here, not
// a code change in the engine.
type Registry struct {
	fetchers []Fetcher
	byKey    map[string]Fetcher
}

// NewRegistry builds the full fetcher registry from the shared dependencies.
func NewRegistry(deps *Deps) *Registry {
	fetchers := []Fetcher{
		NewTemperature(deps),
		NewWindHistorical(deps),
		NewWindForecast(deps),
		NewPrecipHistorical(deps),
		NewPrecipForecast(deps),
		NewInfrastructure(deps),
		NewPopulation(deps),
		NewFloodRisk(deps),
		NewLandslideRisk(deps),
	}

	byKey := make(map[string]Fetcher)
	for _, f := range fetchers {
		for _, k := range f.Keys() {
			byKey[k] = f
		}
	}
	return &Registry{fetchers: fetchers, byKey: byKey}
}

// Fetchers returns every registered fetcher.
func (r *Registry) Fetchers() []Fetcher {
	out := make([]Fetcher, len(r.fetchers))
	copy(out, r.fetchers)
	return out
}

// ForKey returns the fetcher owning the given indicator key.
func (r *Registry) ForKey(key string) (Fetcher, bool) {
	f, ok := r.byKey[key]
	return f, ok
}

// Select returns the minimal fetcher set covering the selected indicator
// keys, in registration order. An indicator with no selected key does not
// trigger its fetcher; unknown keys are ignored.
func (r *Registry) Select(selected []string) []Fetcher {
	want := make(map[string]bool, len(selected))
	for _, k := range selected {
		want[k] = true
	}

	var out []Fetcher
	for _, f := range r.fetchers {
		for _, k := range f.Keys() {
			if want[k] {
				out = append(out, f)
				break
			}
		}
	}
	return out
}
