package healthmonitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func snapshotWith(load1 float64, usedMiB, totalMiB int64, states map[string]string) *MetricsSnapshot {
	snap := &MetricsSnapshot{
		Load1:         load1,
		MemUsedMiB:    usedMiB,
		MemTotalMiB:   totalMiB,
		ServiceStates: make(map[string]ServiceState),
	}
	for unit, state := range states {
		snap.ServiceOrder = append(snap.ServiceOrder, unit)
		snap.ServiceStates[unit] = ServiceState{
			Identifier: unit,
			Active:     state == "active",
			State:      state,
		}
	}
	return snap
}

func TestDiagnoseDeterministic(t *testing.T) {
	snap := snapshotWith(2.0, 950, 1000, map[string]string{"plex": "inactive"})

	first := Diagnose(snap)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Diagnose(snap))
	}
}

func TestDiagnoseCPUBoundary(t *testing.T) {
	tests := []struct {
		load1 float64
		want  bool
	}{
		{0.0, false},
		{1.0, false},
		{1.5, false},
		{1.50001, true},
		{2.0, true},
	}

	for _, tc := range tests {
		issues := Diagnose(snapshotWith(tc.load1, 0, 1000, nil))
		if tc.want {
			require.Len(t, issues, 1, "load1=%v", tc.load1)
			assert.Equal(t, "high CPU load", issues[0].Message)
		} else {
			assert.Empty(t, issues, "load1=%v", tc.load1)
		}
	}
}

func TestDiagnoseMemoryBoundary(t *testing.T) {
	// 90/100 is 89.1% after the +1 guard: no issue.
	assert.Empty(t, Diagnose(snapshotWith(0, 90, 100, nil)))

	// 91/100 is 90.1% after the +1 guard: issue.
	issues := Diagnose(snapshotWith(0, 91, 100, nil))
	require.Len(t, issues, 1)
	assert.Equal(t, "high memory usage", issues[0].Message)
}

func TestDiagnoseZeroTotalMemory(t *testing.T) {
	// Total unavailable must never divide by zero.
	assert.NotPanics(t, func() {
		Diagnose(snapshotWith(0, 0, 0, nil))
	})
	assert.Empty(t, Diagnose(snapshotWith(0, 0, 0, nil)))
}

func TestDiagnoseServiceStates(t *testing.T) {
	tests := []struct {
		state string
		want  bool
	}{
		{"active", false},
		{"unknown", false},
		{"inactive", true},
	}

	for _, tc := range tests {
		issues := Diagnose(snapshotWith(0, 0, 1000, map[string]string{"plex": tc.state}))
		if tc.want {
			require.Len(t, issues, 1, "state=%s", tc.state)
			assert.Equal(t, "service", issues[0].Category)
			assert.Contains(t, issues[0].Message, "plex")
		} else {
			assert.Empty(t, issues, "state=%s", tc.state)
		}
	}
}

func TestDiagnoseHighLoadAndMemory(t *testing.T) {
	snap := snapshotWith(2.0, 950, 1000, map[string]string{"A": "active"})

	issues := Diagnose(snap)
	require.Len(t, issues, 2)
	assert.Equal(t, "high CPU load", issues[0].Message)
	assert.Equal(t, "high memory usage", issues[1].Message)
}

func TestDiagnoseOrderFollowsRoster(t *testing.T) {
	snap := snapshotWith(2.0, 950, 1000, nil)
	for _, unit := range []string{"zeta", "alpha", "mid"} {
		snap.ServiceOrder = append(snap.ServiceOrder, unit)
		snap.ServiceStates[unit] = ServiceState{Identifier: unit, State: "inactive"}
	}

	issues := Diagnose(snap)
	require.Len(t, issues, 5)
	assert.Equal(t, "cpu", issues[0].Category)
	assert.Equal(t, "memory", issues[1].Category)
	assert.Contains(t, issues[2].Message, "zeta")
	assert.Contains(t, issues[3].Message, "alpha")
	assert.Contains(t, issues[4].Message, "mid")
}
