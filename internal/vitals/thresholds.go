package vitals

import "math"

// ThresholdBand is a metric's normal range. Either bound may be absent.
type ThresholdBand struct {
	Min *float64
	Max *float64
}

func band(min, max float64) ThresholdBand {
	return ThresholdBand{Min: &min, Max: &max}
}

func minOnly(min float64) ThresholdBand {
	return ThresholdBand{Min: &min}
}

// vitalThresholds is the static normal-range table. Metrics not listed here
// never trigger an emergency, so softer signals stay on the AI alert path.
var vitalThresholds = map[string]ThresholdBand{
	"heart_rate":                       band(40, 130),
	"respiratory_rate":                 band(8, 30),
	"blood_oxygen_saturation":          band(90, 100),
	"apple_sleeping_wrist_temperature": band(35, 38.5),
	"heart_rate_variability":           minOnly(20),
	"resting_heart_rate":               band(40, 130),
}

// IsAbnormal reports whether value falls strictly outside the metric's
// configured band. Boundary values are normal. Unknown metrics and NaN are
// never abnormal: an unrecognized reading or a garbage upload must not page
// a doctor.
func IsAbnormal(metricName string, value float64) bool {
	thresholds, ok := vitalThresholds[metricName]
	if !ok {
		return false
	}

	if math.IsNaN(value) {
		return false
	}

	if thresholds.Min != nil && value < *thresholds.Min {
		return true
	}
	if thresholds.Max != nil && value > *thresholds.Max {
		return true
	}

	return false
}

// NormalRangesText renders the threshold table for the analyzer prompt.
const NormalRangesText = "HR 60-100, RR 12-20, HRV 20-200ms, SpO2 95-100%, RHR 60-100"
