package healthmonitor

import "time"

// ServiceState is the observed run state of one monitored service.
// State "unknown" means the supervisor could not determine it.
type ServiceState struct {
	Identifier string `json:"identifier"`
	Installed  bool   `json:"installed"`
	Active     bool   `json:"active"`
	State      string `json:"state"`
}

// MetricsSnapshot is one immutable point-in-time reading of system metrics
// and monitored-service states. Created fresh on each check, never mutated.
type MetricsSnapshot struct {
	Load1         float64                 `json:"load1"`
	Load5         float64                 `json:"load5"`
	Load15        float64                 `json:"load15"`
	MemTotalMiB   int64                   `json:"memTotalMiB"`
	MemUsedMiB    int64                   `json:"memUsedMiB"`
	MemFreeMiB    int64                   `json:"memFreeMiB"`
	ServiceStates map[string]ServiceState `json:"serviceStates"`
	RecentLogTail string                  `json:"recentLogTail"`
	CollectedAt   time.Time               `json:"collectedAt"`
	Anomalies     []string                `json:"anomalies,omitempty"`

	// ServiceOrder preserves the monitored roster order for deterministic
	// diagnosis; the map above is keyed for consumers.
	ServiceOrder []string `json:"-"`
}

// Issue is one human-readable finding produced by the diagnoser.
type Issue struct {
	Category string `json:"category"`
	Message  string `json:"message"`
}

// AdvisoryResult carries the optional external verdict. Present=false is the
// designed no-op path, not an error state.
type AdvisoryResult struct {
	Text    string
	Present bool
}

// CheckRecord is one persisted health-check outcome.
type CheckRecord struct {
	ID          string
	CheckedAt   time.Time
	Load1       float64
	MemUsedMiB  int64
	MemTotalMiB int64
	IssueCount  int
	Verdict     string
	Advisory    bool
}
