/**
 * Systemd supervisor client - narrow capability over systemctl
 */

package modeswitch

import (
	"context"
	"fmt"
	"time"

	"github.com/tveit-dev/guardian/src/utility"
	"go.uber.org/zap"
)

// Supervisor is the capability the mode switcher and health monitor use to
// talk to the service manager. Queries return UnitUnknown when the manager
// itself cannot be reached; actions are best-effort and the caller decides
// whether a failure aborts the larger operation.
type Supervisor interface {
	IsActive(ctx context.Context, unit string) UnitState
	IsEnabled(ctx context.Context, unit string) UnitState
	IsKnown(ctx context.Context, unit string) bool
	Start(ctx context.Context, unit string) error
	Stop(ctx context.Context, unit string) error
	Enable(ctx context.Context, unit string) error
}

// SystemdClient implements Supervisor by invoking systemctl.
type SystemdClient struct {
	logger *zap.SugaredLogger
	shell  *utility.Shell
}

// Compile-time interface guard.
var _ Supervisor = (*SystemdClient)(nil)

// NewSystemdClient creates a systemctl-backed supervisor client.
func NewSystemdClient(logger *zap.SugaredLogger, shell *utility.Shell) *SystemdClient {
	return &SystemdClient{logger: logger, shell: shell}
}

const queryTimeout = 5 * time.Second
const actionTimeout = 30 * time.Second

// IsActive reports whether a unit is currently active.
func (c *SystemdClient) IsActive(ctx context.Context, unit string) UnitState {
	result, err := c.shell.Execute(ctx, fmt.Sprintf("systemctl is-active %s", unit), &utility.ExecOptions{
		Timeout: queryTimeout,
	})
	if err != nil {
		c.logger.Warnf("is-active %s: %v", unit, err)
		return UnitUnknown
	}
	if result.ExitCode == 0 {
		return UnitActive
	}
	// Non-zero exit with output means systemctl answered (inactive, failed,
	// unknown unit); no output means the query itself broke.
	if result.Stdout == "" {
		return UnitUnknown
	}
	return UnitInactive
}

// IsEnabled reports whether a unit is enabled on boot.
func (c *SystemdClient) IsEnabled(ctx context.Context, unit string) UnitState {
	result, err := c.shell.Execute(ctx, fmt.Sprintf("systemctl is-enabled %s", unit), &utility.ExecOptions{
		Timeout: queryTimeout,
	})
	if err != nil {
		c.logger.Warnf("is-enabled %s: %v", unit, err)
		return UnitUnknown
	}
	if result.ExitCode == 0 {
		return UnitActive
	}
	if result.Stdout == "" {
		return UnitUnknown
	}
	return UnitInactive
}

// IsKnown reports whether the unit exists in systemd's registry at all.
func (c *SystemdClient) IsKnown(ctx context.Context, unit string) bool {
	result, err := c.shell.Execute(ctx, fmt.Sprintf("systemctl cat %s", unit), &utility.ExecOptions{
		Timeout: queryTimeout,
	})
	if err != nil {
		return false
	}
	return result.ExitCode == 0
}

// Start starts a unit.
func (c *SystemdClient) Start(ctx context.Context, unit string) error {
	return c.action(ctx, "start", unit)
}

// Stop stops a unit.
func (c *SystemdClient) Stop(ctx context.Context, unit string) error {
	return c.action(ctx, "stop", unit)
}

// Enable enables a unit on boot.
func (c *SystemdClient) Enable(ctx context.Context, unit string) error {
	return c.action(ctx, "enable", unit)
}

func (c *SystemdClient) action(ctx context.Context, verb, unit string) error {
	result, err := c.shell.Execute(ctx, fmt.Sprintf("systemctl %s %s", verb, unit), &utility.ExecOptions{
		Timeout: actionTimeout,
	})
	if err != nil {
		return fmt.Errorf("systemctl %s %s: %w", verb, unit, err)
	}
	if result.ExitCode != 0 {
		return fmt.Errorf("systemctl %s %s: exit %d: %s", verb, unit, result.ExitCode, result.Stderr)
	}
	return nil
}
