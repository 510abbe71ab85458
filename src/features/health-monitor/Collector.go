/**
 * Metrics collector - samples load, memory, and monitored-service state
 * into one immutable snapshot
 */

package healthmonitor

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/load"
	"github.com/shirou/gopsutil/mem"
	modeswitch "github.com/tveit-dev/guardian/src/features/mode-switch"
	"github.com/tveit-dev/guardian/src/utility"
	"go.uber.org/zap"
)

const logTailLines = 20
const logTailPlaceholder = "(no log source available)"

// Collector samples system metrics. The entire collection is a single pass
// with no retries; a missing individual field degrades to a sentinel rather
// than aborting.
type Collector struct {
	logger    *zap.SugaredLogger
	sup       modeswitch.Supervisor
	monitored []string

	// Readers are injectable so tests run without a live host.
	loadAvg       func() (*load.AvgStat, error)
	virtualMemory func() (*mem.VirtualMemoryStat, error)
	logTail       func(ctx context.Context) (string, error)
}

// NewCollector creates a collector over the given supervisor and roster.
func NewCollector(logger *zap.SugaredLogger, sup modeswitch.Supervisor, shell *utility.Shell, monitored []string) *Collector {
	return &Collector{
		logger:        logger,
		sup:           sup,
		monitored:     monitored,
		loadAvg:       load.Avg,
		virtualMemory: mem.VirtualMemory,
		logTail: func(ctx context.Context) (string, error) {
			result, err := shell.Execute(ctx, "journalctl -n 20 --no-pager -p warning", &utility.ExecOptions{
				Timeout: 5 * time.Second,
			})
			if err != nil {
				return "", err
			}
			return result.Stdout, nil
		},
	}
}

// Collect produces a fresh snapshot.
func (c *Collector) Collect(ctx context.Context) *MetricsSnapshot {
	snap := &MetricsSnapshot{
		ServiceStates: make(map[string]ServiceState, len(c.monitored)),
		ServiceOrder:  append([]string(nil), c.monitored...),
		CollectedAt:   time.Now().UTC(),
	}

	if avg, err := c.loadAvg(); err != nil {
		c.logger.Warnf("read load averages: %v", err)
		snap.Anomalies = append(snap.Anomalies, "load averages unavailable")
	} else {
		snap.Load1 = avg.Load1
		snap.Load5 = avg.Load5
		snap.Load15 = avg.Load15
	}

	if vm, err := c.virtualMemory(); err != nil {
		c.logger.Warnf("read memory: %v", err)
		snap.Anomalies = append(snap.Anomalies, "memory stats unavailable")
	} else {
		snap.MemTotalMiB = int64(vm.Total / 1024 / 1024)
		snap.MemFreeMiB = int64(vm.Available / 1024 / 1024)
		snap.MemUsedMiB = snap.MemTotalMiB - snap.MemFreeMiB
		if snap.MemUsedMiB < 0 {
			// Total and available come from separate kernel counters and can
			// race; clamp instead of emitting an invalid snapshot.
			snap.MemUsedMiB = 0
			snap.Anomalies = append(snap.Anomalies, "memUsedMiB clamped to zero")
		}
	}

	for _, unit := range c.monitored {
		snap.ServiceStates[unit] = c.serviceState(ctx, unit)
	}

	if tail, err := c.logTail(ctx); err != nil || tail == "" {
		if err != nil {
			c.logger.Debugf("read log tail: %v", err)
		}
		snap.RecentLogTail = logTailPlaceholder
	} else {
		snap.RecentLogTail = tail
	}

	return snap
}

func (c *Collector) serviceState(ctx context.Context, unit string) ServiceState {
	state := c.sup.IsActive(ctx, unit)
	return ServiceState{
		Identifier: unit,
		Installed:  c.sup.IsKnown(ctx, unit),
		Active:     state == modeswitch.UnitActive,
		State:      string(state),
	}
}
