package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWeightString(t *testing.T) {
	tests := []struct {
		name     string
		raw      Weight
		expected string
	}{
		{"one", 65536, "1.000"},
		{"half", 32768, "0.500"},
		{"zero", 0, "0.000"},
		{"host of three", 3 * 65536, "3.000"},
		{"fraction rounds", 1, "0.000"},
		{"typical osd", 119275, "1.820"},
		{"negative", -65536, "-1.000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.raw.String())
		})
	}
}

func TestWeightFloat(t *testing.T) {
	assert.InDelta(t, 1.0, Weight(65536).Float(), 1e-12)
	assert.InDelta(t, 0.25, Weight(16384).Float(), 1e-12)
}
