package mortality

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFillStrategy(t *testing.T) {
	tests := []struct {
		name, scope string
		want        FillStrategy
		wantErr     bool
	}{
		{name: "", want: ForwardFill{Scope: ScopeState}},
		{name: "forward", scope: "global", want: ForwardFill{Scope: ScopeGlobal}},
		{name: "FFILL", scope: "Cause", want: ForwardFill{Scope: ScopeCause}},
		{name: "zero", want: ZeroFill{}},
		{name: "reject", want: RejectMissing{}},
		{name: "none", want: LeaveMissing{}},
		{name: "forward", scope: "county", wantErr: true},
		{name: "mean", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseFillStrategy(tt.name, tt.scope)
		if tt.wantErr {
			assert.Error(t, err, "%s/%s", tt.name, tt.scope)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestZeroFill(t *testing.T) {
	recs := []Record{{HasRate: true, AgeAdjustedRate: 3}, {}, {}}
	n, err := ZeroFill{}.Fill("x", recs, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	for _, r := range recs {
		assert.True(t, r.HasRate)
	}
	assert.Equal(t, 3.0, recs[0].AgeAdjustedRate)
	assert.Equal(t, 0.0, recs[2].AgeAdjustedRate)
}

func TestLeaveMissing(t *testing.T) {
	recs := []Record{{}, {HasRate: true, AgeAdjustedRate: 1}}
	n, err := LeaveMissing{}.Fill("x", recs, nil)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.False(t, recs[0].HasRate)
}

func TestIsTotalCause(t *testing.T) {
	assert.True(t, IsTotalCause("All causes"))
	assert.True(t, IsTotalCause("  ALL   Causes "))
	assert.False(t, IsTotalCause("Alzheimer's disease"))
	assert.False(t, IsTotalCause("Unintentional injuries"))
}
