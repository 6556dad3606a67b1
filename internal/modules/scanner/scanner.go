// Package scanner implements the network scan worker: a periodic TCP
// connect scan of the local range that raises an alert when a flagged
// service is found exposed.
package scanner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"cyfox/internal/core/model"
	"cyfox/internal/core/state"
	"cyfox/internal/log"

	"github.com/rs/zerolog"
)

// Summary is the renderer-facing view of the latest scan.
type Summary struct {
	Hosts    int
	Open     int
	Flagged  int
	LastScan time.Time
}

// Module is the scanner worker.
type Module struct {
	config  model.ScannerConfig
	store   *state.Store
	backend Backend
	logger  zerolog.Logger
	now     func() time.Time

	mu       sync.Mutex
	findings []Finding
	lastScan time.Time
}

// New creates the scanner worker around a Backend.
func New(config model.ScannerConfig, store *state.Store, backend Backend) *Module {
	return &Module{
		config:  config,
		store:   store,
		backend: backend,
		logger:  log.WithComponent("scanner"),
		now:     time.Now,
	}
}

// Name implements worker.Module.
func (module *Module) Name() string { return "scanner" }

// Interval implements worker.Module.
func (module *Module) Interval() time.Duration { return module.config.Interval }

// Tick runs one scan cycle. It only produces visible effects while the
// companion is in scanner mode; in any other mode the cycle is skipped. A
// backend failure aborts this cycle back to idle and is reported as a fault;
// the next cadence tick starts fresh.
func (module *Module) Tick(ctx context.Context) error {
	if _, mode := module.store.Current(); mode != state.ModeScanner {
		return nil
	}

	if _, err := module.store.Commit(state.Transition{To: state.StateScanning, Cause: state.CauseWorker}); err != nil {
		// An alert or reminder is on screen; leave it alone.
		module.logger.Debug().Err(err).Msg("scan cycle skipped")
		return nil
	}

	findings, err := module.backend.Scan(ctx, module.config.Network, module.config.Ports)
	if err != nil {
		_, _ = module.store.Commit(state.Transition{To: state.StateIdle, Cause: state.CauseWorker})
		return fmt.Errorf("scan %s: %w", module.config.Network, err)
	}

	module.mu.Lock()
	module.findings = findings
	module.lastScan = module.now()
	module.mu.Unlock()

	flagged := countFlagged(findings)
	module.logger.Info().Int("open", len(findings)).Int("flagged", flagged).Msg("scan complete")

	target := state.StateIdle
	if flagged > 0 {
		target = state.StateAlert
	}
	if _, err := module.store.Commit(state.Transition{To: target, Cause: state.CauseWorker}); err != nil {
		return fmt.Errorf("publish scan result: %w", err)
	}
	return nil
}

// Findings returns a copy of the latest scan results.
func (module *Module) Findings() []Finding {
	module.mu.Lock()
	defer module.mu.Unlock()
	return append([]Finding(nil), module.findings...)
}

// Summarize returns the latest scan summary for the renderer.
func (module *Module) Summarize() Summary {
	module.mu.Lock()
	defer module.mu.Unlock()

	hosts := make(map[string]struct{}, len(module.findings))
	for _, finding := range module.findings {
		hosts[finding.Host] = struct{}{}
	}
	return Summary{
		Hosts:    len(hosts),
		Open:     len(module.findings),
		Flagged:  countFlagged(module.findings),
		LastScan: module.lastScan,
	}
}

func countFlagged(findings []Finding) int {
	count := 0
	for _, finding := range findings {
		if finding.Flagged {
			count++
		}
	}
	return count
}
