// Package usage computes the fill level and color of quota meters.
package usage

import "math"

// Variant is the meter's severity color.
type Variant string

const (
	VariantDefault Variant = "default"
	VariantWarning Variant = "warning"
	VariantDanger  Variant = "danger"
)

const (
	dangerThreshold  = 90.0
	warningThreshold = 75.0
)

// Reading is a classified meter value.
type Reading struct {
	Percentage float64 `json:"percentage"`
	Variant    Variant `json:"variant"`
	// OverQuota is set when usage exists but no limit is configured.
	OverQuota bool `json:"overQuota"`
}

// Classify computes the percentage and variant for usage against limit.
//
// A limit of zero or less means no limit is configured: any positive usage
// reads as a full, danger-colored meter and zero usage as an empty one.
// Negative usage counts as no usage and non-finite inputs count as zero.
// Every input has a defined result.
func Classify(usage, limit float64) Reading {
	return ClassifyWith(usage, limit, nil)
}

// ClassifyWith is Classify with an optional manual variant override.
func ClassifyWith(usage, limit float64, override *Variant) Reading {
	usage, limit = finite(usage), finite(limit)
	var r Reading
	switch {
	case limit > 0:
		r.Percentage = math.Max(0, math.Min(usage/limit*100, 100))
	case usage > 0:
		r.Percentage = 100
		r.OverQuota = true
	}

	switch {
	case override != nil:
		r.Variant = *override
	case r.OverQuota:
		r.Variant = VariantDanger
	default:
		r.Variant = variantFor(r.Percentage)
	}
	return r
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func variantFor(percentage float64) Variant {
	switch {
	case percentage >= dangerThreshold:
		return VariantDanger
	case percentage >= warningThreshold:
		return VariantWarning
	default:
		return VariantDefault
	}
}

// Meter is a labeled quota meter.
type Meter struct {
	Label   string  `json:"label"`
	Usage   float64 `json:"usage"`
	Limit   float64 `json:"limit"`
	Reading Reading `json:"reading"`
}

// NewMeter classifies usage against limit under a label.
func NewMeter(label string, usage, limit float64) Meter {
	return NewMeterWith(label, usage, limit, nil)
}

// NewMeterWith is NewMeter with an optional variant override.
func NewMeterWith(label string, usage, limit float64, override *Variant) Meter {
	return Meter{
		Label:   label,
		Usage:   finite(usage),
		Limit:   finite(limit),
		Reading: ClassifyWith(usage, limit, override),
	}
}
