package phaseest

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoveIdentity(t *testing.T) {
	sum := PauliSum{Coeff: 2, Terms: []PauliTerm{
		{Label: "II", Coeff: 0.5},
		{Label: "ZZ", Coeff: 1},
		{Label: "IX", Coeff: -0.25},
		{Label: "II", Coeff: 0.25},
	}}

	id, rest := RemoveIdentity(sum)
	assert.InDelta(t, 1.5, id, 1e-12)
	assert.Equal(t, 2.0, rest.Coeff)
	assert.Equal(t, []PauliTerm{{Label: "ZZ", Coeff: 1}, {Label: "IX", Coeff: -0.25}}, rest.Terms)
}

func TestPauliSum_Validate(t *testing.T) {
	tests := []struct {
		name    string
		sum     PauliSum
		wantErr string
	}{
		{name: "empty", sum: NewPauliSum()},
		{name: "valid", sum: NewPauliSum(PauliTerm{Label: "XY", Coeff: 1}, PauliTerm{Label: "ZI", Coeff: 2})},
		{name: "mixed widths", sum: NewPauliSum(PauliTerm{Label: "X"}, PauliTerm{Label: "XX"}), wantErr: "want 1"},
		{name: "bad factor", sum: NewPauliSum(PauliTerm{Label: "XA"}), wantErr: "non-Pauli"},
		{name: "empty label", sum: NewPauliSum(PauliTerm{Label: ""}), wantErr: "empty label"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.sum.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestScale(t *testing.T) {
	s, err := FromPauliSum(PauliSum{Coeff: -2, Terms: []PauliTerm{{Label: "Z", Coeff: 1}, {Label: "X", Coeff: -0.25}}})
	require.NoError(t, err)
	assert.InDelta(t, 2.5, s.Bound, 1e-12)
	assert.InDelta(t, math.Pi/2.5, s.Factor(), 1e-12)

	_, err = FromPauliSum(NewPauliSum())
	assert.ErrorIs(t, err, ErrNoBound)

	_, err = NewScale(0)
	assert.Error(t, err)
	_, err = NewScale(math.Inf(1))
	assert.Error(t, err)
}

func TestScalePhase(t *testing.T) {
	s := Scale{Bound: 1}

	assert.InDelta(t, 0.5, s.ScalePhase(0.25, 0), 1e-12)
	assert.InDelta(t, 1.0, s.ScalePhase(0.5, 0), 1e-12, "one half is still positive")
	assert.InDelta(t, -0.5, s.ScalePhase(0.75, 0), 1e-12)
	assert.InDelta(t, 2.5, s.ScalePhase(0.75, 3), 1e-12)
}

func TestScalePhases(t *testing.T) {
	s := Scale{Bound: 1}

	got, err := s.ScalePhases(map[string]float64{"01": 0.25, "11": 0.75}, 1)
	require.NoError(t, err)
	assert.Equal(t, map[float64]float64{1.5: 0.25, 0.5: 0.75}, got)

	_, err = s.ScalePhases(map[string]float64{"0x": 1}, 0)
	assert.Error(t, err)
}

func TestPhaseFromBitstring(t *testing.T) {
	got, err := PhaseFromBitstring("011")
	require.NoError(t, err)
	assert.Equal(t, 0.375, got)

	_, err = PhaseFromBitstring("")
	assert.Error(t, err)
}
