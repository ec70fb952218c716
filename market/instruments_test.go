package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTableMultiplier(t *testing.T) {
	t.Parallel()

	tests := []struct {
		symbol string
		want   float64
		ok     bool
	}{
		{"MESZ4", 5, true},
		{"ESZ4", 50, true},
		{"MES", 5, true},
		{"ES", 50, true},
		{"MNQH5", 2, true},
		{"NQH5", 20, true},
		{"mes 12-24", 5, true},
		{"MYMZ4", 0.5, true},
		{"YMZ4", 5, true},
		{"MCLF5", 100, true},
		{"CLF5", 1000, true},
		{"ZB 03-25", 1, false},
		{"", 1, false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.symbol, func(t *testing.T) {
			t.Parallel()
			got, ok := DefaultTable.Multiplier(tt.symbol)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMicroPrecedence(t *testing.T) {
	t.Parallel()

	r, ok := DefaultTable.Lookup("MESZ4")
	require.True(t, ok)
	assert.Equal(t, "MES", r.Pattern)

	// Reversed order lets the full-size root shadow the micro.
	bad := Table{{Pattern: "ES", Multiplier: 50}, {Pattern: "MES", Multiplier: 5}}
	m, _ := bad.Multiplier("MESZ4")
	assert.Equal(t, 50.0, m)
	assert.Error(t, bad.Validate())
}

func TestTableValidate(t *testing.T) {
	t.Parallel()

	assert.NoError(t, DefaultTable.Validate())

	tests := []struct {
		name   string
		table  Table
		errMsg string
	}{
		{"empty pattern", Table{{Pattern: " ", Multiplier: 1}}, "empty pattern"},
		{"zero multiplier", Table{{Pattern: "ES", Multiplier: 0}}, "multiplier must be positive"},
		{"shadowed", Table{{Pattern: "NQ", Multiplier: 20}, {Pattern: "MNQ", Multiplier: 2}}, "shadowed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.table.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}
