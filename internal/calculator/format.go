package calculator

import (
	"math"
	"strconv"
)

// Display labels for distances that cannot be shown as a number.
const (
	NoDistanceLabel      = "거리 정보 없음"
	InvalidDistanceLabel = "유효하지 않은 거리"
	UncomputableLabel    = "거리 계산 불가"
)

const (
	shortMeterUnit     = "M"
	shortKilometerUnit = "KM"
	longMeterUnit      = "미터"
	longKilometerUnit  = "킬로미터"
)

// FormatOptions controls how FormatDistance renders a distance.
type FormatOptions struct {
	Precision     int     `json:"precision" form:"precision"`
	UseKilometers bool    `json:"useKilometers" form:"useKilometers"`
	KmThreshold   float64 `json:"kmThreshold" form:"kmThreshold"`
	ShowUnit      bool    `json:"showUnit" form:"showUnit"`
	ShortUnit     bool    `json:"shortUnit" form:"shortUnit"`
}

func DefaultFormatOptions() FormatOptions {
	return FormatOptions{
		Precision:     0,
		UseKilometers: true,
		KmThreshold:   1000,
		ShowUnit:      true,
		ShortUnit:     true,
	}
}

// FormatOption adjusts the default FormatOptions.
type FormatOption func(*FormatOptions)

func WithPrecision(p int) FormatOption {
	return func(o *FormatOptions) { o.Precision = p }
}

// WithKilometers toggles switching to kilometers at the threshold.
func WithKilometers(use bool) FormatOption {
	return func(o *FormatOptions) { o.UseKilometers = use }
}

func WithKmThreshold(meters float64) FormatOption {
	return func(o *FormatOptions) { o.KmThreshold = meters }
}

func WithUnit(show bool) FormatOption {
	return func(o *FormatOptions) { o.ShowUnit = show }
}

// WithShortUnit selects "M"/"KM" (true) or "미터"/"킬로미터" (false).
func WithShortUnit(short bool) FormatOption {
	return func(o *FormatOptions) { o.ShortUnit = short }
}

// FormatDistance renders meters for display, e.g. "500M" or "1.5KM".
func FormatDistance(meters float64, opts ...FormatOption) string {
	o := DefaultFormatOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o.Format(meters)
}

// FormatOptionalDistance is FormatDistance for a distance that may be absent.
func FormatOptionalDistance(meters *float64, opts ...FormatOption) string {
	if meters == nil {
		return NoDistanceLabel
	}
	return FormatDistance(*meters, opts...)
}

// Format renders meters with the receiver's options. NaN and +Inf count as a
// missing distance.
func (o FormatOptions) Format(meters float64) string {
	switch {
	case math.IsNaN(meters) || math.IsInf(meters, 1):
		return NoDistanceLabel
	case meters < 0:
		return InvalidDistanceLabel
	case meters < 1:
		// never render "0"
		return o.withUnit("1", false)
	}

	if o.UseKilometers && meters >= o.KmThreshold {
		return o.withUnit(formatNumber(meters/1000, o.Precision), true)
	}
	return o.withUnit(formatNumber(meters, o.Precision), false)
}

func (o FormatOptions) withUnit(value string, km bool) string {
	if !o.ShowUnit {
		return value
	}
	switch {
	case km && o.ShortUnit:
		return value + shortKilometerUnit
	case km:
		return value + longKilometerUnit
	case o.ShortUnit:
		return value + shortMeterUnit
	default:
		return value + longMeterUnit
	}
}

func formatNumber(v float64, precision int) string {
	if precision > 0 {
		return strconv.FormatFloat(v, 'f', precision, 64)
	}
	return strconv.FormatFloat(math.Round(v), 'f', 0, 64)
}
