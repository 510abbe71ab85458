/**
 * Health monitor - orchestrates collector, diagnoser, and advisor
 */

package healthmonitor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Monitor runs one-shot checks and the continuous watch loop.
type Monitor struct {
	logger    *zap.SugaredLogger
	collector *Collector
	advisor   *Advisor
	history   *History

	// sleep waits out the interval between watch iterations; returns false
	// when the context was cancelled instead. Injectable for tests.
	sleep func(ctx context.Context, d time.Duration) bool
}

// NewMonitor creates a health monitor. history may be nil; checks then run
// without persistence.
func NewMonitor(logger *zap.SugaredLogger, collector *Collector, advisor *Advisor, history *History) *Monitor {
	return &Monitor{
		logger:    logger,
		collector: collector,
		advisor:   advisor,
		history:   history,
		sleep:     sleepWithContext,
	}
}

func sleepWithContext(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}

// CheckHuman runs one check and formats snapshot plus verdict for a
// terminal. It always produces some verdict, advisory or rule-based.
func (m *Monitor) CheckHuman(ctx context.Context) string {
	snap := m.collector.Collect(ctx)
	issues := Diagnose(snap)
	advisory := m.advisor.Analyze(ctx, snap)
	m.record(ctx, snap, issues, advisory)

	output := "=== Guardian Health Check ===\n\n"
	output += fmt.Sprintf("Load (1/5/15m): %.2f %.2f %.2f\n", snap.Load1, snap.Load5, snap.Load15)
	output += fmt.Sprintf("Memory: %d MiB used of %d MiB (%d MiB free)\n",
		snap.MemUsedMiB, snap.MemTotalMiB, snap.MemFreeMiB)

	output += "\nServices:\n"
	for _, unit := range snap.ServiceOrder {
		state := snap.ServiceStates[unit]
		icon := "✗"
		if state.State == "active" || state.State == "unknown" {
			icon = "✓"
		}
		output += fmt.Sprintf("  %s %s (%s)\n", icon, unit, state.State)
	}

	if len(snap.Anomalies) > 0 {
		output += fmt.Sprintf("\nAnomalies: %s\n", strings.Join(snap.Anomalies, "; "))
	}

	output += "\nVerdict:\n"
	if advisory.Present {
		output += "  " + advisory.Text + "\n"
	} else {
		output += "  " + ruleVerdict(issues) + "\n"
	}

	return output
}

// CheckMachine runs one check and emits the raw snapshot as JSON. No
// diagnosis is baked in so downstream tools can apply their own rules.
func (m *Monitor) CheckMachine(ctx context.Context) string {
	snap := m.collector.Collect(ctx)
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		// A snapshot is plain data; this only fires if the type itself is
		// broken. Report in-body, exit code stays zero.
		return fmt.Sprintf(`{"error": %q}`, err.Error())
	}
	return string(data)
}

// Watch runs the continuous loop: collect, analyze, emit one log record,
// sleep, repeat. Each iteration is independent; a failing advisory call or
// history write degrades and the loop continues. Exits only when ctx is
// cancelled.
func (m *Monitor) Watch(ctx context.Context, interval time.Duration) {
	m.logger.Infof("watch loop started (interval %s)", interval)
	for {
		snap := m.collector.Collect(ctx)
		issues := Diagnose(snap)
		advisory := m.advisor.Analyze(ctx, snap)
		m.record(ctx, snap, issues, advisory)
		updateGauges(snap, len(issues))

		verdict := ruleVerdict(issues)
		if advisory.Present {
			verdict = advisory.Text
		}

		if len(issues) == 0 {
			m.logger.Infof("health: ok | load1=%.2f mem=%d/%dMiB | %s",
				snap.Load1, snap.MemUsedMiB, snap.MemTotalMiB, verdict)
		} else {
			m.logger.Warnf("health: %d issue(s) | load1=%.2f mem=%d/%dMiB | %s",
				len(issues), snap.Load1, snap.MemUsedMiB, snap.MemTotalMiB, verdict)
		}

		if !m.sleep(ctx, interval) {
			m.logger.Infof("watch loop stopped")
			return
		}
	}
}

// FormatHistory lists the most recent recorded checks for a terminal.
func (m *Monitor) FormatHistory(ctx context.Context, limit int) (string, error) {
	if m.history == nil {
		return "No history database configured.", nil
	}

	records, err := m.history.Recent(ctx, limit)
	if err != nil {
		return "", fmt.Errorf("read history: %w", err)
	}
	if len(records) == 0 {
		return "No health checks recorded yet.", nil
	}

	output := fmt.Sprintf("=== Health Check History (last %d) ===\n\n", len(records))
	for _, r := range records {
		icon := "✓"
		if r.IssueCount > 0 {
			icon = "✗"
		}
		source := "rules"
		if r.Advisory {
			source = "advisory"
		}
		output += fmt.Sprintf("%s %s  load1=%.2f mem=%d/%dMiB issues=%d [%s] %s\n",
			icon, r.CheckedAt.Format(time.RFC3339), r.Load1,
			r.MemUsedMiB, r.MemTotalMiB, r.IssueCount, source, r.Verdict)
	}
	return output, nil
}

// record persists one check outcome; failures are warnings, never fatal.
func (m *Monitor) record(ctx context.Context, snap *MetricsSnapshot, issues []Issue, advisory AdvisoryResult) {
	if m.history == nil {
		return
	}
	verdict := ruleVerdict(issues)
	if advisory.Present {
		verdict = advisory.Text
	}
	if err := m.history.Record(ctx, snap, len(issues), verdict, advisory.Present); err != nil {
		m.logger.Warnf("record health check: %v", err)
	}
}

// ruleVerdict renders the rule-based issue list as one verdict line.
func ruleVerdict(issues []Issue) string {
	if len(issues) == 0 {
		return "All systems green."
	}
	messages := make([]string, len(issues))
	for i, issue := range issues {
		messages[i] = issue.Message
	}
	return "Issues detected: " + strings.Join(messages, "; ")
}
