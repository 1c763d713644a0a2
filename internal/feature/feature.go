// Package feature defines the per-tick environmental feature vector fed to
// the beast engine by the sensing collaborator.
package feature

import "time"

// #region field-set

// Field identifies one sensor-derived field of a FeatureSample.
type Field uint32

const (
	FieldLux Field = 1 << iota
	FieldCCT
	FieldTemp
	FieldHumidity
	FieldPressure
	FieldPressureTrend
	FieldMotion
	FieldShake
	FieldHeading
	FieldOrientation
	FieldBattery
	FieldCharging
	FieldFingerprint
)

// FieldSet is a bitmask of the fields a sample actually carries.
// A field absent from the set contributes to no rule (it is never read
// as zero).
type FieldSet uint32

// Has reports whether every field in f is present.
func (s FieldSet) Has(f Field) bool {
	return s&FieldSet(f) == FieldSet(f)
}

// With returns the set with f added.
func (s FieldSet) With(f Field) FieldSet {
	return s | FieldSet(f)
}

// AllFields marks every field as available.
const AllFields = FieldSet(FieldLux | FieldCCT | FieldTemp | FieldHumidity |
	FieldPressure | FieldPressureTrend | FieldMotion | FieldShake |
	FieldHeading | FieldOrientation | FieldBattery | FieldCharging |
	FieldFingerprint)

// #endregion field-set

// #region sample

// Sample is one immutable environmental feature vector. One sample drives
// one engine tick. Timestamps across the sequence fed to a single engine
// instance must be non-decreasing.
type Sample struct {
	Lux           float64 `json:"lux"`
	CCTKelvin     float64 `json:"cct_k"`
	TempC         float64 `json:"temp_c"`
	Humidity      float64 `json:"rh"`
	PressureHPa   float64 `json:"pressure_hpa"`
	PressureTrend float64 `json:"pressure_trend"` // dP/dt, smoothed
	MotionRMSG    float64 `json:"motion_rms_g"`
	ShakeEvents   int     `json:"shake_events"` // events per minute
	HeadingDeg    float64 `json:"heading_deg"`
	Roll          float64 `json:"roll"`
	Pitch         float64 `json:"pitch"`
	Yaw           float64 `json:"yaw"`
	VBat          float64 `json:"vbat"`
	IBat          float64 `json:"ibat"`
	PowerW        float64 `json:"pwr_w"`
	Charging      bool    `json:"charging"`

	// Fingerprint is an opaque hashed environment identifier used only for
	// novelty and equality comparison, never decoded.
	Fingerprint string `json:"ssid_fingerprint"`

	Timestamp time.Time `json:"timestamp"`
	Available FieldSet  `json:"available"`
}

// #endregion sample

// #region gap

// Gap synthesizes a sample carrying no sensor fields at the given time.
// The caller uses it when no real sample arrived within the expected
// interval, so needs and accumulators keep decaying instead of freezing.
func Gap(ts time.Time) Sample {
	return Sample{Timestamp: ts, Available: 0}
}

// #endregion gap

// #region battery

// BatteryFraction maps battery voltage onto [0,1] between vmin and vmax.
// The second return is false when the sample carries no battery fields.
func (s Sample) BatteryFraction(vmin, vmax float64) (float64, bool) {
	if !s.Available.Has(FieldBattery) || vmax <= vmin {
		return 0, false
	}
	frac := (s.VBat - vmin) / (vmax - vmin)
	if frac < 0 {
		frac = 0
	}
	if frac > 1 {
		frac = 1
	}
	return frac, true
}

// #endregion battery
