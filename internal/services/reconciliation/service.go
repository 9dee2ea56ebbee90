package reconciliation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"bank-reconciliation-backend/internal/models"
	"bank-reconciliation-backend/internal/repository"
	"bank-reconciliation-backend/internal/services/matching"
)

// ErrRunNotFound is returned for an unknown run id.
var ErrRunNotFound = errors.New("reconciliation run not found")

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

// Options tunes the service. Zero values fall back to sane defaults.
type Options struct {
	Timeout            time.Duration
	Locale             matching.Locale
	Profile            string
	ManualMatchRetries int
}

// ReconcileRequest carries two decoded ledgers. Mappings default to
// matching.DefaultColumnMapping.
type ReconcileRequest struct {
	Bank            []map[string]string     `json:"bank"`
	Internal        []map[string]string     `json:"internal"`
	BankMapping     *matching.ColumnMapping `json:"bank_mapping,omitempty"`
	InternalMapping *matching.ColumnMapping `json:"internal_mapping,omitempty"`
	Locale          string                  `json:"locale,omitempty"`
	Profile         string                  `json:"profile,omitempty"`
	Tolerances      *ToleranceOverride      `json:"tolerances,omitempty"`
}

// RunOverview is one history entry.
type RunOverview struct {
	RunID     string                   `json:"run_id"`
	Profile   string                   `json:"profile"`
	Version   int64                    `json:"version"`
	CreatedAt time.Time                `json:"created_at"`
	Config    matching.ToleranceConfig `json:"config"`
	Summary   matching.Summary         `json:"summary"`
}

// HistoryPage is one page of runs, newest first.
type HistoryPage struct {
	Runs   []RunOverview `json:"runs"`
	Total  int64         `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
}

type trackedRun struct {
	run     *matching.Run
	profile string
}

// ReconciliationService owns the runs of the process. Runs live in an
// in-memory registry and, when a RunStore is configured, in the database.
type ReconciliationService struct {
	engine   *matching.Engine
	runs     RunStore
	settings *SettingsService
	logger   *slog.Logger
	opts     Options

	registry sync.Map // runID -> *trackedRun

	now   func() time.Time
	newID func() string
}

func NewReconciliationService(
	engine *matching.Engine,
	runs RunStore,
	settings *SettingsService,
	logger *slog.Logger,
	opts Options,
) *ReconciliationService {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Profile == "" {
		opts.Profile = "default"
	}
	if opts.Locale == "" {
		opts.Locale = matching.LocaleDot
	}
	if opts.ManualMatchRetries < 0 {
		opts.ManualMatchRetries = 0
	}
	return &ReconciliationService{
		engine:   engine,
		runs:     runs,
		settings: settings,
		logger:   logger,
		opts:     opts,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

func (s *ReconciliationService) profile(p string) string {
	if p == "" {
		return s.opts.Profile
	}
	return p
}

// Reconcile normalizes both ledgers, runs the automatic pass and registers
// the run. When ctx expires first nothing is registered or stored.
func (s *ReconciliationService) Reconcile(ctx context.Context, req ReconcileRequest) (*matching.Result, error) {
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	profile := s.profile(req.Profile)
	cfg, err := s.settings.Resolve(ctx, profile, req.Tolerances)
	if err != nil {
		return nil, err
	}

	locale := s.opts.Locale
	if req.Locale != "" {
		locale = matching.ParseLocale(req.Locale)
	}
	n := matching.NewNormalizer(locale)

	bank, bankRejected, err := n.BuildLedger(matching.SideBank, req.Bank, mappingOrDefault(req.BankMapping))
	if err != nil {
		return nil, err
	}
	internal, internalRejected, err := n.BuildLedger(matching.SideInternal, req.Internal, mappingOrDefault(req.InternalMapping))
	if err != nil {
		return nil, err
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("reconcile: %w", err)
	}

	type outcome struct {
		result *matching.Result
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		res, err := s.engine.Reconcile(bank, internal, cfg)
		done <- outcome{result: res, err: err}
	}()

	var res *matching.Result
	select {
	case <-ctx.Done():
		s.logger.Warn("reconciliation abandoned",
			"bank", len(bank),
			"internal", len(internal),
			"error", ctx.Err(),
		)
		return nil, fmt.Errorf("reconcile: %w", ctx.Err())
	case out := <-done:
		if out.err != nil {
			return nil, out.err
		}
		res = out.result
	}

	res.Rejected = append(append(bankRejected, internalRejected...), res.Rejected...)

	run := matching.NewRun(s.newID(), res, s.now().UTC())
	if s.runs != nil {
		if err := s.runs.SaveRun(ctx, run, profile, locale); err != nil {
			return nil, fmt.Errorf("save run: %w", err)
		}
	}
	s.registry.Store(run.ID, &trackedRun{run: run, profile: profile})

	result := run.Result()
	s.logger.Info("reconciliation completed",
		"run_id", run.ID,
		"profile", profile,
		"matched", result.Summary.MatchedCount,
		"bank_only", result.Summary.BankOnlyCount,
		"internal_only", result.Summary.InternalOnlyCount,
		"rejected", len(result.Rejected),
		"match_rate", result.Summary.MatchRate,
	)
	return result, nil
}

func mappingOrDefault(m *matching.ColumnMapping) matching.ColumnMapping {
	if m == nil {
		return matching.DefaultColumnMapping()
	}
	return *m
}

// GetResult returns the current partition of a run.
func (s *ReconciliationService) GetResult(ctx context.Context, runID string) (*matching.Result, error) {
	run, err := s.lookup(ctx, runID)
	if err != nil {
		return nil, err
	}
	return run.Result(), nil
}

// Summary returns the aggregate counters of a run, including manual matches.
func (s *ReconciliationService) Summary(ctx context.Context, runID string) (matching.Summary, error) {
	run, err := s.lookup(ctx, runID)
	if err != nil {
		return matching.Summary{}, err
	}
	return run.Summary(), nil
}

// Pending returns the unmatched transactions of a run.
func (s *ReconciliationService) Pending(ctx context.Context, runID string) (matching.PendingSet, error) {
	run, err := s.lookup(ctx, runID)
	if err != nil {
		return matching.PendingSet{}, err
	}
	return run.Pending(), nil
}

// ApplyManualMatch pairs two pending transactions of a run.
//
// With a RunStore the match is stored against the version it was validated
// on. A lost version race reloads the run and validates again; after
// ManualMatchRetries lost races the caller gets ConcurrentModificationError.
func (s *ReconciliationService) ApplyManualMatch(ctx context.Context, runID, bankID, internalID, performedBy string) (matching.Match, error) {
	run, err := s.lookup(ctx, runID)
	if err != nil {
		return matching.Match{}, err
	}

	if s.runs == nil {
		m, err := run.ApplyManualMatch(bankID, internalID)
		if err != nil {
			return matching.Match{}, err
		}
		s.logManualMatch(runID, m, performedBy, run.Version())
		return m, nil
	}

	for attempt := 0; attempt <= s.opts.ManualMatchRetries; attempt++ {
		p, err := run.ProposeManualMatch(bankID, internalID)
		if err != nil {
			return matching.Match{}, err
		}

		err = s.runs.RecordManualMatch(ctx, runID, p.BaseVersion(), p.Match, performedBy)
		var cme *matching.ConcurrentModificationError
		switch {
		case errors.As(err, &cme):
			s.logger.Debug("manual match lost version race", "run_id", runID, "attempt", attempt+1)
			if run, err = s.reload(ctx, runID); err != nil {
				return matching.Match{}, err
			}
			continue
		case errors.Is(err, repository.ErrNotFound):
			return matching.Match{}, ErrRunNotFound
		case err != nil:
			return matching.Match{}, fmt.Errorf("record manual match: %w", err)
		}

		if err := run.Commit(p); err != nil {
			// stored state moved past the in-memory copy
			if _, err := s.reload(ctx, runID); err != nil {
				return matching.Match{}, err
			}
		}
		s.logManualMatch(runID, p.Match, performedBy, p.BaseVersion()+1)
		return p.Match, nil
	}
	return matching.Match{}, &matching.ConcurrentModificationError{RunID: runID}
}

func (s *ReconciliationService) logManualMatch(runID string, m matching.Match, performedBy string, version int64) {
	s.logger.Info("manual match applied",
		"run_id", runID,
		"bank_id", m.Bank.ID,
		"internal_id", m.Internal.ID,
		"performed_by", performedBy,
		"version", version,
	)
}

// History lists the runs of profile, newest first.
func (s *ReconciliationService) History(ctx context.Context, profile string, limit, offset int) (HistoryPage, error) {
	profile = s.profile(profile)
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	if offset < 0 {
		offset = 0
	}
	page := HistoryPage{Runs: []RunOverview{}, Limit: limit, Offset: offset}

	if s.runs != nil {
		rows, total, err := s.runs.ListRuns(ctx, profile, limit, offset)
		if err != nil {
			return page, fmt.Errorf("list runs: %w", err)
		}
		for _, row := range rows {
			page.Runs = append(page.Runs, overviewFromModel(row))
		}
		page.Total = total
		return page, nil
	}

	all := s.trackedRuns(profile)
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].RunID < all[j].RunID
	})
	page.Total = int64(len(all))
	if offset < len(all) {
		page.Runs = all[offset:min(offset+limit, len(all))]
	}
	return page, nil
}

// Statistics aggregates every run of profile.
func (s *ReconciliationService) Statistics(ctx context.Context, profile string) (models.RunStatistics, error) {
	profile = s.profile(profile)
	if s.runs != nil {
		stats, err := s.runs.GetStatistics(ctx, profile)
		if err != nil {
			return stats, fmt.Errorf("statistics: %w", err)
		}
		return stats, nil
	}

	var stats models.RunStatistics
	var rateSum float64
	for _, o := range s.trackedRuns(profile) {
		stats.TotalRuns++
		stats.TotalTransactions += int64(o.Summary.TotalBank + o.Summary.TotalInternal)
		stats.TotalMatched += int64(o.Summary.MatchedCount)
		stats.TotalPending += int64(o.Summary.BankOnlyCount + o.Summary.InternalOnlyCount)
		rateSum += o.Summary.MatchRate
	}
	if stats.TotalRuns > 0 {
		stats.AverageMatchRate = roundRate(rateSum / float64(stats.TotalRuns))
	}
	return stats, nil
}

func (s *ReconciliationService) trackedRuns(profile string) []RunOverview {
	var out []RunOverview
	s.registry.Range(func(_, v any) bool {
		t := v.(*trackedRun)
		if t.profile != profile {
			return true
		}
		res := t.run.Result()
		out = append(out, RunOverview{
			RunID:     t.run.ID,
			Profile:   t.profile,
			Version:   t.run.Version(),
			CreatedAt: t.run.CreatedAt,
			Config:    res.Config,
			Summary:   res.Summary,
		})
		return true
	})
	return out
}

func (s *ReconciliationService) lookup(ctx context.Context, runID string) (*matching.Run, error) {
	if v, ok := s.registry.Load(runID); ok {
		return v.(*trackedRun).run, nil
	}
	if s.runs == nil {
		return nil, ErrRunNotFound
	}

	run, err := s.runs.LoadRun(ctx, runID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("load run %s: %w", runID, err)
	}
	v, _ := s.registry.LoadOrStore(runID, &trackedRun{run: run})
	return v.(*trackedRun).run, nil
}

// reload replaces the registered copy of a run with the stored one.
func (s *ReconciliationService) reload(ctx context.Context, runID string) (*matching.Run, error) {
	run, err := s.runs.LoadRun(ctx, runID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, fmt.Errorf("reload run %s: %w", runID, err)
	}
	var profile string
	if v, ok := s.registry.Load(runID); ok {
		profile = v.(*trackedRun).profile
	}
	s.registry.Store(runID, &trackedRun{run: run, profile: profile})
	return run, nil
}

func overviewFromModel(row models.ReconciliationRun) RunOverview {
	return RunOverview{
		RunID:     row.ID.String(),
		Profile:   row.Profile,
		Version:   row.Version,
		CreatedAt: row.CreatedAt,
		Config: matching.ToleranceConfig{
			DateToleranceDays:   row.DateToleranceDays,
			ValueTolerance:      row.ValueTolerance,
			SimilarityThreshold: row.SimilarityThreshold,
		},
		Summary: matching.Summary{
			TotalBank:         row.TotalBank,
			TotalInternal:     row.TotalInternal,
			MatchedCount:      row.MatchedCount,
			AutomaticCount:    row.MatchedCount - row.ManualCount,
			ManualCount:       row.ManualCount,
			BankOnlyCount:     row.BankOnlyCount,
			InternalOnlyCount: row.InternalOnlyCount,
			MatchRate:         row.MatchRate,
			MatchRateBasis:    matching.MatchRateBasisBank,
		},
	}
}

func roundRate(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
