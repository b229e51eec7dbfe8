package usage

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name       string
		usage      float64
		limit      float64
		percentage float64
		variant    Variant
		overQuota  bool
	}{
		{name: "no usage no limit", usage: 0, limit: 0, percentage: 0, variant: VariantDefault},
		{name: "usage without limit", usage: 5, limit: 0, percentage: 100, variant: VariantDanger, overQuota: true},
		{name: "ninety percent is danger", usage: 90, limit: 100, percentage: 90, variant: VariantDanger},
		{name: "seventy six percent is warning", usage: 76, limit: 100, percentage: 76, variant: VariantWarning},
		{name: "seventy five percent is warning", usage: 75, limit: 100, percentage: 75, variant: VariantWarning},
		{name: "half is default", usage: 50, limit: 100, percentage: 50, variant: VariantDefault},
		{name: "over limit caps at one hundred", usage: 250, limit: 100, percentage: 100, variant: VariantDanger},
		{name: "negative usage with no limit", usage: -3, limit: 0, percentage: 0, variant: VariantDefault},
		{name: "negative usage with limit", usage: -3, limit: 10, percentage: 0, variant: VariantDefault},
		{name: "negative limit treated as unset", usage: 1, limit: -1, percentage: 100, variant: VariantDanger, overQuota: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Classify(tt.usage, tt.limit)
			assert.InDelta(t, tt.percentage, r.Percentage, 1e-9)
			assert.Equal(t, tt.variant, r.Variant)
			assert.Equal(t, tt.overQuota, r.OverQuota)
		})
	}
}

func TestClassifyWithOverride(t *testing.T) {
	warning := VariantWarning

	t.Run("override wins over thresholds", func(t *testing.T) {
		r := ClassifyWith(95, 100, &warning)
		assert.Equal(t, VariantWarning, r.Variant)
		assert.InDelta(t, 95, r.Percentage, 1e-9)
	})

	t.Run("override wins over missing limit", func(t *testing.T) {
		r := ClassifyWith(5, 0, &warning)
		assert.Equal(t, VariantWarning, r.Variant)
		assert.True(t, r.OverQuota)
	})
}

func TestClassifyIsTotal(t *testing.T) {
	inputs := []float64{0, 1, -1, 1e12, math.SmallestNonzeroFloat64}
	for _, u := range inputs {
		for _, l := range inputs {
			r := Classify(u, l)
			assert.GreaterOrEqual(t, r.Percentage, 0.0)
			assert.LessOrEqual(t, r.Percentage, 100.0)
			assert.NotEmpty(t, r.Variant)
		}
	}
}

func TestClassifyNonFinite(t *testing.T) {
	tests := []struct {
		name         string
		usage, limit float64
		want         Reading
	}{
		{"nan usage", math.NaN(), 100, Reading{Percentage: 0, Variant: VariantDefault}},
		{"nan limit with usage", 5, math.NaN(), Reading{Percentage: 100, Variant: VariantDanger, OverQuota: true}},
		{"infinite usage", math.Inf(1), 100, Reading{Percentage: 0, Variant: VariantDefault}},
		{"infinite limit", 50, math.Inf(1), Reading{Percentage: 100, Variant: VariantDanger, OverQuota: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Classify(tt.usage, tt.limit)
			assert.Equal(t, tt.want, r)

			_, err := json.Marshal(NewMeter("Requests", tt.usage, tt.limit))
			assert.NoError(t, err)
		})
	}
}

func TestNewMeter(t *testing.T) {
	m := NewMeter("Monthly requests", 800, 1000)
	assert.Equal(t, "Monthly requests", m.Label)
	assert.Equal(t, VariantWarning, m.Reading.Variant)
	assert.InDelta(t, 80, m.Reading.Percentage, 1e-9)
}
