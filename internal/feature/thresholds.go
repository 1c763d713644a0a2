package feature

// #region thresholds

// Thresholds classifies raw sample values into the coarse conditions the
// rule layers reason about. One immutable value is threaded through every
// stage; nothing reads thresholds from ambient state.
type Thresholds struct {
	TempHotC  float64 `mapstructure:"temp_hot_c"`
	TempColdC float64 `mapstructure:"temp_cold_c"`
	// ComfortMarginC insets the comfort band from the hot/cold bounds.
	ComfortMarginC float64 `mapstructure:"comfort_margin_c"`

	LuxBright float64 `mapstructure:"lux_bright"`
	LuxDark   float64 `mapstructure:"lux_dark"`

	MotionActiveG    float64 `mapstructure:"motion_active_g"`
	ShakeBurstPerMin int     `mapstructure:"shake_burst_per_min"`

	HumidityHigh float64 `mapstructure:"humidity_high"`
	HumidityLow  float64 `mapstructure:"humidity_low"`

	PressureUnstable float64 `mapstructure:"pressure_unstable"`

	BatteryVMin     float64 `mapstructure:"battery_vmin"`
	BatteryVMax     float64 `mapstructure:"battery_vmax"`
	SickBatteryFrac float64 `mapstructure:"sick_battery_frac"`
}

// DefaultThresholds returns the stock device calibration.
func DefaultThresholds() Thresholds {
	return Thresholds{
		TempHotC:         30,
		TempColdC:        10,
		ComfortMarginC:   5,
		LuxBright:        5000,
		LuxDark:          100,
		MotionActiveG:    0.2,
		ShakeBurstPerMin: 1,
		HumidityHigh:     90,
		HumidityLow:      10,
		PressureUnstable: 2.0,
		BatteryVMin:      3.3,
		BatteryVMax:      4.2,
		SickBatteryFrac:  0.15,
	}
}

// #endregion thresholds

// #region classification

// Hot reports temperature at or above the hot bound. False when the sample
// carries no temperature.
func (t Thresholds) Hot(s Sample) bool {
	return s.Available.Has(FieldTemp) && s.TempC >= t.TempHotC
}

// Cold reports temperature at or below the cold bound.
func (t Thresholds) Cold(s Sample) bool {
	return s.Available.Has(FieldTemp) && s.TempC <= t.TempColdC
}

// Comfortable reports temperature inside the comfort band. False when the
// sample carries no temperature.
func (t Thresholds) Comfortable(s Sample) bool {
	if !s.Available.Has(FieldTemp) {
		return false
	}
	return s.TempC >= t.TempColdC+t.ComfortMarginC && s.TempC <= t.TempHotC-t.ComfortMarginC
}

// Bright reports illuminance at or above the bright bound.
func (t Thresholds) Bright(s Sample) bool {
	return s.Available.Has(FieldLux) && s.Lux >= t.LuxBright
}

// Dark reports illuminance at or below the dark bound.
func (t Thresholds) Dark(s Sample) bool {
	return s.Available.Has(FieldLux) && s.Lux <= t.LuxDark
}

// Active reports motion at or above the active bound.
func (t Thresholds) Active(s Sample) bool {
	return s.Available.Has(FieldMotion) && s.MotionRMSG >= t.MotionActiveG
}

// Still reports motion below a quarter of the active bound. False when the
// sample carries no motion, so "dark and still" can never be inferred from
// a dead IMU.
func (t Thresholds) Still(s Sample) bool {
	return s.Available.Has(FieldMotion) && s.MotionRMSG < t.MotionActiveG/4
}

// ShakeBurst reports a shake-event rate at or above the burst bound.
func (t Thresholds) ShakeBurst(s Sample) bool {
	return s.Available.Has(FieldShake) && s.ShakeEvents >= t.ShakeBurstPerMin
}

// HumidityExtreme reports relative humidity outside the survivable band.
func (t Thresholds) HumidityExtreme(s Sample) bool {
	return s.Available.Has(FieldHumidity) && (s.Humidity > t.HumidityHigh || s.Humidity < t.HumidityLow)
}

// BatterySick reports a battery fraction under the sick bound.
func (t Thresholds) BatterySick(s Sample) bool {
	frac, ok := s.BatteryFraction(t.BatteryVMin, t.BatteryVMax)
	return ok && frac < t.SickBatteryFrac
}

// PressureVolatile reports a pressure trend outside the stable band.
func (t Thresholds) PressureVolatile(s Sample) bool {
	return s.Available.Has(FieldPressureTrend) && abs(s.PressureTrend) >= t.PressureUnstable
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// #endregion classification
