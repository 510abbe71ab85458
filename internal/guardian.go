/**
 * Guardian - single-host mode controller and health monitor
 *
 * Orchestrates:
 * - Desktop/Server mode switching
 * - Periodic health monitoring with rule-based and advisory verdicts
 */

package guardian

import (
	"context"
	"time"

	"github.com/tveit-dev/guardian/src/config"
	healthmonitor "github.com/tveit-dev/guardian/src/features/health-monitor"
	modeswitch "github.com/tveit-dev/guardian/src/features/mode-switch"
	"github.com/tveit-dev/guardian/src/utility"
	"go.uber.org/zap"
)

// Guardian composes the mode switcher and health monitor behind the CLI.
// It holds no mutable state between calls.
type Guardian struct {
	logger   *zap.SugaredLogger
	config   *config.Config
	switcher *modeswitch.ModeSwitcher
	monitor  *healthmonitor.Monitor
	history  *healthmonitor.History
}

// NewGuardian wires up all components. withHistory controls whether the
// check-history database is opened; one-shot read commands skip it so they
// work without write access to the state directory.
func NewGuardian(logger *zap.SugaredLogger, cfg *config.Config, withHistory bool) *Guardian {
	if cfg == nil {
		cfg = config.Default()
	}

	shell := utility.NewShell(logger)
	sup := modeswitch.NewSystemdClient(logger, shell)

	display := modeswitch.NewDisplaySession(logger, sup, shell,
		cfg.SessionManagers, cfg.DefaultSessionManager, cfg.GraphicalTarget)
	switcher := modeswitch.NewModeSwitcher(logger, sup, display,
		cfg.AlwaysOnServices, cfg.DesktopOnlyServices, cfg.SessionManagers, cfg.GraphicalTarget)

	var history *healthmonitor.History
	if withHistory {
		var err error
		history, err = healthmonitor.OpenHistory(cfg.HistoryDBPath, logger)
		if err != nil {
			logger.Warnf("history unavailable: %v", err)
		}
	}

	collector := healthmonitor.NewCollector(logger, sup, shell, cfg.MonitoredServices)
	advisor := healthmonitor.NewAdvisor(healthmonitor.AdvisorConfig{
		Enabled: cfg.AdvisorEnabled,
		URL:     cfg.AdvisorURL,
		Model:   cfg.AdvisorModel,
		Timeout: cfg.AdvisorTimeout,
	}, logger)
	monitor := healthmonitor.NewMonitor(logger, collector, advisor, history)

	return &Guardian{
		logger:   logger,
		config:   cfg,
		switcher: switcher,
		monitor:  monitor,
		history:  history,
	}
}

// Close releases held resources.
func (g *Guardian) Close() {
	if g.history != nil {
		g.history.Close()
	}
}

// ==================== Mode Switching Methods ====================

// SwitchToDesktop transitions the host to the desktop profile.
func (g *Guardian) SwitchToDesktop(ctx context.Context) (string, error) {
	if err := g.switcher.SwitchToDesktop(ctx); err != nil {
		return "", err
	}
	return "Switched to desktop mode.", nil
}

// SwitchToServer transitions the host to the server profile.
func (g *Guardian) SwitchToServer(ctx context.Context) (string, error) {
	if err := g.switcher.SwitchToServer(ctx); err != nil {
		return "", err
	}
	return "Switched to server mode.", nil
}

// ModeStatus reports the derived mode and per-service states.
func (g *Guardian) ModeStatus(ctx context.Context) string {
	return g.switcher.FormatStatus(g.switcher.Status(ctx))
}

// ==================== Health Monitoring Methods ====================

// HealthCheck runs one check formatted for a terminal.
func (g *Guardian) HealthCheck(ctx context.Context) string {
	return g.monitor.CheckHuman(ctx)
}

// HealthJSON runs one check and emits the snapshot as JSON.
func (g *Guardian) HealthJSON(ctx context.Context) string {
	return g.monitor.CheckMachine(ctx)
}

// Watch runs the continuous monitoring loop until ctx is cancelled.
func (g *Guardian) Watch(ctx context.Context) {
	if g.config.MetricsAddr != "" {
		healthmonitor.StartMetricsServer(g.config.MetricsAddr, g.logger)
	}
	g.monitor.Watch(ctx, g.config.WatchInterval)
}

// HealthHistory lists recent recorded checks.
func (g *Guardian) HealthHistory(ctx context.Context, limit int) (string, error) {
	return g.monitor.FormatHistory(ctx, limit)
}

// WatchInterval exposes the configured interval for display.
func (g *Guardian) WatchInterval() time.Duration {
	return g.config.WatchInterval
}
