package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"bank-reconciliation-backend/internal/models"
	"bank-reconciliation-backend/internal/services/matching"
)

// ErrNotFound is returned when a run does not exist.
var ErrNotFound = errors.New("record not found")

const insertBatchSize = 200

type RunRepository struct {
	db *gorm.DB
}

func NewRunRepository(db *gorm.DB) *RunRepository {
	return &RunRepository{db: db}
}

// SaveRun stores the header and every ledger row of run in one transaction.
func (r *RunRepository) SaveRun(ctx context.Context, run *matching.Run, profile string, locale matching.Locale) error {
	id, err := uuid.Parse(run.ID)
	if err != nil {
		return fmt.Errorf("run id %q: %w", run.ID, err)
	}

	res := run.Result()
	rejected, err := json.Marshal(res.Rejected)
	if err != nil {
		return fmt.Errorf("encode rejected rows: %w", err)
	}

	header := models.ReconciliationRun{
		ID:                  id,
		Profile:             profile,
		Status:              models.RunStatusCompleted,
		Version:             run.Version(),
		Locale:              string(locale),
		DateToleranceDays:   res.Config.DateToleranceDays,
		ValueTolerance:      res.Config.ValueTolerance,
		SimilarityThreshold: res.Config.SimilarityThreshold,
		TotalBank:           res.Summary.TotalBank,
		TotalInternal:       res.Summary.TotalInternal,
		MatchedCount:        res.Summary.MatchedCount,
		ManualCount:         res.Summary.ManualCount,
		BankOnlyCount:       res.Summary.BankOnlyCount,
		InternalOnlyCount:   res.Summary.InternalOnlyCount,
		MatchRate:           res.Summary.MatchRate,
		Rejected:            datatypes.JSON(rejected),
		CreatedAt:           run.CreatedAt,
	}

	rows := make([]models.RunTransaction, 0, res.Summary.TotalBank+res.Summary.TotalInternal)
	for seq, m := range res.Matched {
		seq := seq
		var details datatypes.JSON
		if m.Scores != nil {
			if details, err = json.Marshal(m.Scores); err != nil {
				return fmt.Errorf("encode scores: %w", err)
			}
		}
		for _, pair := range [][2]matching.Transaction{{m.Bank, m.Internal}, {m.Internal, m.Bank}} {
			row, err := newRunTransaction(id, pair[0])
			if err != nil {
				return err
			}
			row.Status = models.TxStatusMatched
			row.MatchSeq = &seq
			row.MatchedWith = pair[1].ID
			row.MatchOrigin = string(m.Origin)
			row.ConfidenceScore = m.Confidence
			row.MatchDetails = details
			row.MatchedAt = m.MatchedAt
			rows = append(rows, row)
		}
	}
	for _, t := range append(append([]matching.Transaction{}, res.BankOnly...), res.InternalOnly...) {
		row, err := newRunTransaction(id, t)
		if err != nil {
			return err
		}
		rows = append(rows, row)
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&header).Error; err != nil {
			return fmt.Errorf("insert run: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rows, insertBatchSize).Error; err != nil {
			return fmt.Errorf("insert run transactions: %w", err)
		}
		return nil
	})
}

func newRunTransaction(runID uuid.UUID, t matching.Transaction) (models.RunTransaction, error) {
	var raw datatypes.JSON
	if t.RawRow != nil {
		b, err := json.Marshal(t.RawRow)
		if err != nil {
			return models.RunTransaction{}, fmt.Errorf("encode raw row of %s: %w", t.ID, err)
		}
		raw = b
	}
	return models.RunTransaction{
		ID:              uuid.New(),
		RunID:           runID,
		Side:            string(t.Side),
		ExternalID:      t.ID,
		Position:        t.Index,
		TransactionDate: t.Date,
		Description:     t.Description,
		Amount:          t.Amount,
		RawRow:          raw,
		Status:          models.TxStatusPending,
	}, nil
}

// LoadRun rebuilds a run from its stored rows.
func (r *RunRepository) LoadRun(ctx context.Context, runID string) (*matching.Run, error) {
	id, err := uuid.Parse(runID)
	if err != nil {
		return nil, ErrNotFound
	}

	db := r.db.WithContext(ctx)
	var header models.ReconciliationRun
	if err := db.First(&header, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load run %s: %w", runID, err)
	}

	var rows []models.RunTransaction
	if err := db.Where("run_id = ?", id).Order("side ASC, position ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("load run %s transactions: %w", runID, err)
	}

	result, err := restoreResult(header, rows)
	if err != nil {
		return nil, fmt.Errorf("restore run %s: %w", runID, err)
	}
	return matching.RestoreRun(header.ID.String(), result, header.Version, header.CreatedAt), nil
}

func restoreResult(header models.ReconciliationRun, rows []models.RunTransaction) (*matching.Result, error) {
	n := matching.NewNormalizer(matching.ParseLocale(header.Locale))

	result := &matching.Result{
		RunID: header.ID.String(),
		Config: matching.ToleranceConfig{
			DateToleranceDays:   header.DateToleranceDays,
			ValueTolerance:      header.ValueTolerance,
			SimilarityThreshold: header.SimilarityThreshold,
		},
		BankOnly:     []matching.Transaction{},
		InternalOnly: []matching.Transaction{},
	}
	if len(header.Rejected) > 0 {
		if err := json.Unmarshal(header.Rejected, &result.Rejected); err != nil {
			return nil, fmt.Errorf("decode rejected rows: %w", err)
		}
	}

	internalByID := make(map[string]matching.Transaction)
	var matchedBank []models.RunTransaction
	bankByID := make(map[string]matching.Transaction)

	for _, row := range rows {
		t, err := toTransaction(n, row)
		if err != nil {
			return nil, err
		}
		switch {
		case row.Status == models.TxStatusPending && t.Side == matching.SideBank:
			result.BankOnly = append(result.BankOnly, t)
		case row.Status == models.TxStatusPending:
			result.InternalOnly = append(result.InternalOnly, t)
		case t.Side == matching.SideBank:
			matchedBank = append(matchedBank, row)
			bankByID[t.ID] = t
		default:
			internalByID[t.ID] = t
		}
	}

	sort.Slice(matchedBank, func(i, j int) bool {
		return seqOf(matchedBank[i]) < seqOf(matchedBank[j])
	})

	result.Matched = make([]matching.Match, 0, len(matchedBank))
	for _, row := range matchedBank {
		internal, ok := internalByID[row.MatchedWith]
		if !ok {
			return nil, fmt.Errorf("bank transaction %s is matched with unknown internal %s", row.ExternalID, row.MatchedWith)
		}
		bank := bankByID[row.ExternalID]
		m := matching.Match{
			Bank:       bank,
			Internal:   internal,
			Confidence: row.ConfidenceScore,
			Origin:     matching.Origin(row.MatchOrigin),
		}
		if row.MatchedAt != nil {
			at := row.MatchedAt.UTC()
			m.MatchedAt = &at
		}
		if len(row.MatchDetails) > 0 {
			var c matching.MatchCandidate
			if err := json.Unmarshal(row.MatchDetails, &c); err != nil {
				return nil, fmt.Errorf("decode scores of %s: %w", row.ExternalID, err)
			}
			c.BankIndex = bank.Index
			c.InternalIndex = internal.Index
			m.Scores = &c
		}
		result.Matched = append(result.Matched, m)
	}

	result.Summary = matching.Summarize(result)
	return result, nil
}

func toTransaction(n matching.Normalizer, row models.RunTransaction) (matching.Transaction, error) {
	t := matching.Transaction{
		ID:                    row.ExternalID,
		Side:                  matching.Side(row.Side),
		Index:                 row.Position,
		Date:                  utcDay(row.TransactionDate),
		Amount:                row.Amount,
		Description:           row.Description,
		NormalizedDescription: n.Description(row.Description),
	}
	if len(row.RawRow) > 0 {
		if err := json.Unmarshal(row.RawRow, &t.RawRow); err != nil {
			return t, fmt.Errorf("decode raw row of %s: %w", row.ExternalID, err)
		}
	}
	return t, nil
}

func utcDay(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

func seqOf(row models.RunTransaction) int {
	if row.MatchSeq == nil {
		return math.MaxInt
	}
	return *row.MatchSeq
}

// RecordManualMatch persists a manual match made against expectedVersion.
// It fails with ConcurrentModificationError when the stored version moved.
func (r *RunRepository) RecordManualMatch(ctx context.Context, runID string, expectedVersion int64, m matching.Match, performedBy string) error {
	id, err := uuid.Parse(runID)
	if err != nil {
		return ErrNotFound
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var header models.ReconciliationRun
		if err := tx.First(&header, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}
		if header.Version != expectedVersion {
			return &matching.ConcurrentModificationError{RunID: runID}
		}

		nextVersion := expectedVersion + 1
		matched := header.MatchedCount + 1
		res := tx.Model(&models.ReconciliationRun{}).
			Where("id = ? AND version = ?", id, expectedVersion).
			Updates(map[string]interface{}{
				"version":             nextVersion,
				"matched_count":       matched,
				"manual_count":        header.ManualCount + 1,
				"bank_only_count":     header.BankOnlyCount - 1,
				"internal_only_count": header.InternalOnlyCount - 1,
				"match_rate":          matching.MatchRate(matched, header.TotalBank),
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &matching.ConcurrentModificationError{RunID: runID}
		}

		matchedAt := time.Now().UTC()
		if m.MatchedAt != nil {
			matchedAt = *m.MatchedAt
		}
		seq := header.MatchedCount
		for _, pair := range [][2]matching.Transaction{{m.Bank, m.Internal}, {m.Internal, m.Bank}} {
			upd := tx.Model(&models.RunTransaction{}).
				Where("run_id = ? AND side = ? AND external_id = ? AND status = ?", id, string(pair[0].Side), pair[0].ID, models.TxStatusPending).
				Updates(map[string]interface{}{
					"status":           models.TxStatusMatched,
					"match_seq":        seq,
					"matched_with":     pair[1].ID,
					"match_origin":     string(matching.OriginManual),
					"confidence_score": m.Confidence,
					"matched_at":       matchedAt,
				})
			if upd.Error != nil {
				return upd.Error
			}
			if upd.RowsAffected == 0 {
				return &matching.NotPendingError{Side: pair[0].Side, ID: pair[0].ID, Reason: "already matched"}
			}
		}

		audit := models.MatchAuditLog{
			ID:                    uuid.New(),
			RunID:                 id,
			Action:                models.AuditActionManualMatch,
			BankTransactionID:     m.Bank.ID,
			InternalTransactionID: m.Internal.ID,
			PreviousVersion:       expectedVersion,
			NewVersion:            nextVersion,
			PerformedBy:           performedBy,
			Reason:                "manual match",
		}
		return tx.Create(&audit).Error
	})
}

// ListRuns returns one page of runs, newest first, and the total count.
func (r *RunRepository) ListRuns(ctx context.Context, profile string, limit, offset int) ([]models.ReconciliationRun, int64, error) {
	query := func() *gorm.DB {
		q := r.db.WithContext(ctx).Model(&models.ReconciliationRun{})
		if profile != "" {
			q = q.Where("profile = ?", profile)
		}
		return q
	}

	var total int64
	if err := query().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var runs []models.ReconciliationRun
	err := query().
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&runs).Error
	return runs, total, err
}

// GetStatistics aggregates every run of profile. An empty profile covers all.
func (r *RunRepository) GetStatistics(ctx context.Context, profile string) (models.RunStatistics, error) {
	var stats models.RunStatistics

	q := r.db.WithContext(ctx).Model(&models.ReconciliationRun{}).
		Select(`COUNT(*) AS total_runs,
			COALESCE(SUM(total_bank + total_internal), 0) AS total_transactions,
			COALESCE(AVG(match_rate), 0) AS average_match_rate,
			COALESCE(SUM(matched_count), 0) AS total_matched,
			COALESCE(SUM(bank_only_count + internal_only_count), 0) AS total_pending`)
	if profile != "" {
		q = q.Where("profile = ?", profile)
	}
	if err := q.Scan(&stats).Error; err != nil {
		return stats, err
	}

	stats.AverageMatchRate = math.Round(stats.AverageMatchRate*100) / 100
	return stats, nil
}
