/**
 * Display session controller - detects the host's session manager and
 * starts/stops the graphical stack atomically with it
 */

package modeswitch

import (
	"context"
	"fmt"
	"time"

	"github.com/tveit-dev/guardian/src/utility"
	"go.uber.org/zap"
)

// Processes that keep a graphical server alive after the session manager
// and graphical target are down.
var graphicalServerProcesses = []string{"Xorg", "Xwayland", "gnome-shell", "Hyprland", "sway"}

// DisplaySession starts and stops the graphical stack. Session managers are
// interchangeable and host-specific, so every action detects the registered
// one first instead of hard-coding an implementation.
type DisplaySession struct {
	logger      *zap.SugaredLogger
	sup         Supervisor
	shell       *utility.Shell
	candidates  []string
	defaultSM   string
	target      string
	graceWindow time.Duration

	// Injectable for tests; defaults terminate via pkill and time.Sleep.
	terminateProcs func(ctx context.Context)
	sleep          func(d time.Duration)
}

// NewDisplaySession creates a display session controller.
func NewDisplaySession(logger *zap.SugaredLogger, sup Supervisor, shell *utility.Shell, candidates []string, defaultSM, target string) *DisplaySession {
	ds := &DisplaySession{
		logger:      logger,
		sup:         sup,
		shell:       shell,
		candidates:  candidates,
		defaultSM:   defaultSM,
		target:      target,
		graceWindow: 2 * time.Second,
		sleep:       time.Sleep,
	}
	ds.terminateProcs = ds.killGraphicalProcs
	return ds
}

// DetectSessionManager scans the candidate roster in fixed order and returns
// the first one that is active or enabled. Returns "" when none match; that
// is an explicit state, not an error, until an action requires one.
func (ds *DisplaySession) DetectSessionManager(ctx context.Context) string {
	for _, candidate := range ds.candidates {
		if ds.sup.IsActive(ctx, candidate) == UnitActive || ds.sup.IsEnabled(ctx, candidate) == UnitActive {
			return candidate
		}
	}
	return ""
}

// Stop brings the graphical stack down. Idempotent: stopping an already
// stopped stack is a no-op success.
func (ds *DisplaySession) Stop(ctx context.Context) error {
	if err := ds.sup.Stop(ctx, ds.target); err != nil {
		ds.logger.Warnf("stop %s: %v", ds.target, err)
	}

	manager := ds.DetectSessionManager(ctx)
	if manager == "" {
		ds.logger.Warnf("no session manager detected, skipping manager stop")
	} else if err := ds.sup.Stop(ctx, manager); err != nil {
		ds.logger.Warnf("stop session manager %s: %v", manager, err)
	}

	ds.terminateProcs(ctx)
	return nil
}

// Start brings the graphical stack up. Fails hard only when no session
// manager can be found or provisioned, since a graphical session without
// one is a contradiction.
func (ds *DisplaySession) Start(ctx context.Context) error {
	manager := ds.DetectSessionManager(ctx)
	if manager == "" {
		// Keep the switch usable on a freshly provisioned host: fall back to
		// the configured default candidate if it is at least installed.
		if ds.defaultSM != "" && ds.sup.IsKnown(ctx, ds.defaultSM) {
			ds.logger.Infof("no session manager detected, enabling default %s", ds.defaultSM)
			if err := ds.sup.Enable(ctx, ds.defaultSM); err != nil {
				ds.logger.Warnf("enable %s: %v", ds.defaultSM, err)
			}
			if err := ds.sup.Start(ctx, ds.defaultSM); err != nil {
				return fmt.Errorf("start default session manager %s: %w", ds.defaultSM, err)
			}
			manager = ds.defaultSM
		} else {
			return fmt.Errorf("no session manager available (candidates: %v)", ds.candidates)
		}
	} else {
		if err := ds.sup.Start(ctx, manager); err != nil {
			return fmt.Errorf("start session manager %s: %w", manager, err)
		}
	}

	if err := ds.sup.Start(ctx, ds.target); err != nil {
		return fmt.Errorf("start %s: %w", ds.target, err)
	}

	ds.logger.Infof("graphical stack started via %s", manager)
	return nil
}

// killGraphicalProcs sends TERM to leftover graphical server processes,
// waits out the grace window, then escalates to KILL.
func (ds *DisplaySession) killGraphicalProcs(ctx context.Context) {
	terminated := false
	for _, proc := range graphicalServerProcesses {
		result, err := ds.shell.Execute(ctx, fmt.Sprintf("pkill -TERM -x %s", proc), &utility.ExecOptions{
			Timeout: queryTimeout,
		})
		if err == nil && result.ExitCode == 0 {
			ds.logger.Infof("sent TERM to %s", proc)
			terminated = true
		}
	}
	if !terminated {
		return
	}

	ds.sleep(ds.graceWindow)

	for _, proc := range graphicalServerProcesses {
		result, err := ds.shell.Execute(ctx, fmt.Sprintf("pkill -KILL -x %s", proc), &utility.ExecOptions{
			Timeout: queryTimeout,
		})
		if err == nil && result.ExitCode == 0 {
			ds.logger.Warnf("escalated to KILL for %s", proc)
		}
	}
}
