package modeswitch

// Mode is the host-wide operating posture, derived from service state.
type Mode string

const (
	ModeDesktop Mode = "desktop"
	ModeServer  Mode = "server"
)

// UnitState is the observed state of a systemd unit. Unknown means the
// supervisor could not determine it, which is distinct from inactive.
type UnitState string

const (
	UnitActive   UnitState = "active"
	UnitInactive UnitState = "inactive"
	UnitUnknown  UnitState = "unknown"
)

// ServiceStatus is a point-in-time reading of one unit. It is re-derived on
// every query and never cached.
type ServiceStatus struct {
	Identifier string
	Installed  bool
	Active     bool
}

// Status is the derived mode plus the per-unit readings it was derived from.
type Status struct {
	Mode            Mode
	GraphicalActive bool
	SessionManagers []ServiceStatus
	AlwaysOn        []ServiceStatus
}
