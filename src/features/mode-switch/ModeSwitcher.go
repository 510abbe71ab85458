/**
 * Mode switcher - transitions the host between desktop and server profiles
 *
 * The mode is never stored; it is an observable property of current service
 * state, derived on every query.
 */

package modeswitch

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// ModeSwitcher composes the display session controller with the always-on
// service roster. It holds no mutable state between calls.
type ModeSwitcher struct {
	logger      *zap.SugaredLogger
	sup         Supervisor
	display     *DisplaySession
	alwaysOn    []string
	desktopOnly []string
	candidates  []string
	target      string
}

// NewModeSwitcher creates a mode switcher over the given supervisor and
// display session controller.
func NewModeSwitcher(logger *zap.SugaredLogger, sup Supervisor, display *DisplaySession, alwaysOn, desktopOnly, candidates []string, target string) *ModeSwitcher {
	return &ModeSwitcher{
		logger:      logger,
		sup:         sup,
		display:     display,
		alwaysOn:    alwaysOn,
		desktopOnly: desktopOnly,
		candidates:  candidates,
		target:      target,
	}
}

// SwitchToServer stops the graphical stack and re-asserts the always-on
// roster. Safe to invoke from either starting mode.
func (ms *ModeSwitcher) SwitchToServer(ctx context.Context) error {
	// Always-on services are reconciled before touching the graphical layer,
	// so a partial failure never leaves the host without background services.
	if err := ms.ensureAlwaysOn(ctx); err != nil {
		return err
	}

	for _, unit := range ms.desktopOnly {
		if err := ms.sup.Stop(ctx, unit); err != nil {
			ms.logger.Warnf("stop desktop-only service %s: %v", unit, err)
		}
	}

	if err := ms.display.Stop(ctx); err != nil {
		return fmt.Errorf("stop graphical stack: %w", err)
	}

	ms.logger.Infof("host is now in server mode")
	return nil
}

// SwitchToDesktop re-asserts the always-on roster and starts the graphical
// stack. A desktop switch without a graphical stack is a contradiction, so
// a display start failure fails the transition as a whole.
func (ms *ModeSwitcher) SwitchToDesktop(ctx context.Context) error {
	if err := ms.ensureAlwaysOn(ctx); err != nil {
		return err
	}

	for _, unit := range ms.desktopOnly {
		if err := ms.sup.Start(ctx, unit); err != nil {
			ms.logger.Warnf("start desktop-only service %s: %v", unit, err)
		}
	}

	if err := ms.display.Start(ctx); err != nil {
		return fmt.Errorf("switch to desktop: %w", err)
	}

	ms.logger.Infof("host is now in desktop mode")
	return nil
}

// ensureAlwaysOn starts and enables every always-on service. Individual
// failures are collected; these units are critical to correctness, so any
// failure surfaces as a partial-failure error after the full pass.
func (ms *ModeSwitcher) ensureAlwaysOn(ctx context.Context) error {
	var failed []string
	for _, unit := range ms.alwaysOn {
		if err := ms.sup.Start(ctx, unit); err != nil {
			ms.logger.Warnf("start always-on service %s: %v", unit, err)
			failed = append(failed, unit)
			continue
		}
		if err := ms.sup.Enable(ctx, unit); err != nil {
			ms.logger.Warnf("enable always-on service %s: %v", unit, err)
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("always-on services failed to start: %s", strings.Join(failed, ", "))
	}
	return nil
}

// Status derives the current mode and per-unit states. Read-only; nothing
// is cached across calls since external state can change between them.
func (ms *ModeSwitcher) Status(ctx context.Context) *Status {
	graphical := ms.sup.IsActive(ctx, ms.target) == UnitActive

	mode := ModeServer
	if graphical {
		mode = ModeDesktop
	}

	status := &Status{
		Mode:            mode,
		GraphicalActive: graphical,
	}
	for _, candidate := range ms.candidates {
		status.SessionManagers = append(status.SessionManagers, ms.serviceStatus(ctx, candidate))
	}
	for _, unit := range ms.alwaysOn {
		status.AlwaysOn = append(status.AlwaysOn, ms.serviceStatus(ctx, unit))
	}
	return status
}

func (ms *ModeSwitcher) serviceStatus(ctx context.Context, unit string) ServiceStatus {
	return ServiceStatus{
		Identifier: unit,
		Installed:  ms.sup.IsKnown(ctx, unit),
		Active:     ms.sup.IsActive(ctx, unit) == UnitActive,
	}
}

// FormatStatus formats a status for terminal display.
func (ms *ModeSwitcher) FormatStatus(status *Status) string {
	output := "=== Host Mode Status ===\n\n"
	output += fmt.Sprintf("Mode: %s\n", status.Mode)
	output += fmt.Sprintf("Graphical target: %s\n\n", activeLabel(status.GraphicalActive))

	output += "Session managers:\n"
	for _, sm := range status.SessionManagers {
		output += fmt.Sprintf("  %s %s (installed: %s)\n", statusIcon(sm.Active), sm.Identifier, yesNo(sm.Installed))
	}

	output += "\nAlways-on services:\n"
	for _, svc := range status.AlwaysOn {
		output += fmt.Sprintf("  %s %s\n", statusIcon(svc.Active), svc.Identifier)
	}

	return output
}

func statusIcon(active bool) string {
	if active {
		return "✓"
	}
	return "✗"
}

func activeLabel(active bool) string {
	if active {
		return "active"
	}
	return "inactive"
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
