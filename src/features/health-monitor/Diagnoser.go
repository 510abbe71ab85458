/**
 * Diagnoser - rule-based interpretation of a metrics snapshot
 */

package healthmonitor

import "fmt"

const (
	// 1-minute load above this is considered high on the target host class.
	cpuLoadThreshold = 1.5
	// Memory usage above this percentage raises an issue.
	memUsedPercentThreshold = 90
)

// Diagnose maps a snapshot to an ordered issue list: CPU, memory, then
// services in roster order. Deterministic given the same snapshot; an empty
// list means all systems green.
func Diagnose(snap *MetricsSnapshot) []Issue {
	var issues []Issue

	if snap.Load1 > cpuLoadThreshold {
		issues = append(issues, Issue{Category: "cpu", Message: "high CPU load"})
	}

	// The +1 denominator keeps the division defined when total is unavailable.
	if float64(snap.MemUsedMiB*100)/float64(snap.MemTotalMiB+1) > memUsedPercentThreshold {
		issues = append(issues, Issue{Category: "memory", Message: "high memory usage"})
	}

	for _, unit := range snap.ServiceOrder {
		state, ok := snap.ServiceStates[unit]
		if !ok {
			continue
		}
		// "unknown" means the state could not be determined; treating it as a
		// failure would raise false alarms on hosts without that unit.
		if state.State != "active" && state.State != "unknown" {
			issues = append(issues, Issue{
				Category: "service",
				Message:  fmt.Sprintf("service %s degraded (%s)", unit, state.State),
			})
		}
	}

	return issues
}
