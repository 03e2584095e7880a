package model

// Indicator keys. These are the column names of the aggregated table and the
// selection vocabulary of the UI layer.
const (
	IndTempMax     = "T2M_MAX"
	IndTempMin     = "T2M_MIN"
	IndPrecip      = "precip_mm"
	IndPrecipHist  = "precip_mm_hist"
	IndWindMean    = "W_MED"
	IndWindMax     = "W_MAX"
	IndWindMin     = "W_MIN"
	IndWindMeanOff = "W_MED_OFF"
	IndWindMaxOff  = "W_MAX_OFF"
	IndWindMinOff  = "W_MIN_OFF"
	IndFloodRisk   = "flood_risk_100y"
	IndPopulation  = "pop_total"
	IndHospitals   = "hospitals"
	IndClinics     = "clinics"
	IndSchools     = "schools"
	IndBusStops    = "bus_stops"
	IndSubstations = "substations"
	IndLanduse     = "landuse"
	IndLandslide   = "lhasa_norm"
)

// indicatorLabels maps indicator key to its human-readable label.
// Static configuration consumed by the UI for selection and display.
var indicatorLabels = map[string]string{
	IndTempMax:     "Maximum temperature (°C)",
	IndTempMin:     "Minimum temperature (°C)",
	IndPrecip:      "Forecast rainfall (mm)",
	IndPrecipHist:  "Historical rainfall (mm)",
	IndWindMean:    "Mean wind (m/s)",
	IndWindMax:     "Maximum wind (m/s)",
	IndWindMin:     "Minimum wind (m/s)",
	IndWindMeanOff: "Forecast mean wind (m/s)",
	IndWindMaxOff:  "Forecast maximum wind (m/s)",
	IndWindMinOff:  "Forecast minimum wind (m/s)",
	IndFloodRisk:   "Flood risk (0-1)",
	IndPopulation:  "Total population",
	IndHospitals:   "Hospitals",
	IndClinics:     "Clinics",
	IndSchools:     "Schools",
	IndBusStops:    "Bus stops",
	IndSubstations: "Electrical substations",
	IndLanduse:     "Land-use parcels",
	IndLandslide:   "Landslide risk (0-1)",
}

// indicatorOrder fixes the column order of the aggregated table.
var indicatorOrder = []string{
	IndTempMax, IndTempMin,
	IndPrecip, IndPrecipHist,
	IndWindMean, IndWindMax, IndWindMin,
	IndWindMeanOff, IndWindMaxOff, IndWindMinOff,
	IndFloodRisk, IndPopulation,
	IndHospitals, IndClinics, IndSchools, IndBusStops, IndSubstations, IndLanduse,
	IndLandslide,
}

// InfrastructureKeys lists the indicators whose values are point-feature
// counts and therefore coerced to non-negative integers in the table.
func InfrastructureKeys() []string {
	return []string{IndHospitals, IndClinics, IndSchools, IndBusStops, IndSubstations, IndLanduse}
}

// IndicatorKeys returns every indicator key in table-column order.
func IndicatorKeys() []string {
	out := make([]string, len(indicatorOrder))
	copy(out, indicatorOrder)
	return out
}

// IndicatorLabel returns the display label for a key, or the key itself when
// unknown.
func IndicatorLabel(key string) string {
	if l, ok := indicatorLabels[key]; ok {
		return l
	}
	return key
}

// ValidIndicator reports whether key names a known indicator.
func ValidIndicator(key string) bool {
	_, ok := indicatorLabels[key]
	return ok
}

// IsInfrastructure reports whether key is an infrastructure count column.
func IsInfrastructure(key string) bool {
	for _, k := range InfrastructureKeys() {
		if k == key {
			return true
		}
	}
	return false
}
