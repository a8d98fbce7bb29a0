package db

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jonathan/recruit-desk/internal/matching"
	"github.com/jonathan/recruit-desk/internal/types"
)

var _ matching.Store = (*DB)(nil)

const matchColumns = `id, candidate_id, job_id, company_id, store_id, status, score, match_reasons,
	applied_date, interview_date, offer_date, accepted_date, rejected_date, start_date, end_date,
	notes, created_by, created_at, updated_at, version`

const timelineColumns = `id, match_id, status, recorded_at, event_date, description, notes, created_by`

// dateColumns maps each dated status to its column on matches.
var dateColumns = map[types.Status]string{
	types.StatusApplied:       "applied_date",
	types.StatusInterview:     "interview_date",
	types.StatusOffer:         "offer_date",
	types.StatusOfferAccepted: "accepted_date",
	types.StatusRejected:      "rejected_date",
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMatch(row rowScanner) (*types.Match, error) {
	var m types.Match
	var reasons []byte
	err := row.Scan(
		&m.ID, &m.CandidateID, &m.JobID, &m.CompanyID, &m.StoreID, &m.Status, &m.Score, &reasons,
		&m.AppliedDate, &m.InterviewDate, &m.OfferDate, &m.AcceptedDate, &m.RejectedDate,
		&m.StartDate, &m.EndDate,
		&m.Notes, &m.CreatedBy, &m.CreatedAt, &m.UpdatedAt, &m.Version,
	)
	if err != nil {
		return nil, err
	}
	if len(reasons) > 0 {
		if err := json.Unmarshal(reasons, &m.MatchReasons); err != nil {
			return nil, fmt.Errorf("failed to unmarshal match reasons: %w", err)
		}
	}
	if m.MatchReasons == nil {
		m.MatchReasons = []types.MatchReason{}
	}
	m.Timeline = []types.TimelineEntry{}
	return &m, nil
}

// GetMatch retrieves a match with its timeline. Returns (nil, nil) when the
// match does not exist.
func (db *DB) GetMatch(ctx context.Context, id string) (*types.Match, error) {
	m, err := scanMatch(db.pool.QueryRow(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE id = $1`, id))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get match: %w", err)
	}

	timelines, err := db.loadTimelines(ctx, []string{m.ID})
	if err != nil {
		return nil, err
	}
	if entries, ok := timelines[m.ID]; ok {
		m.Timeline = entries
	}
	return m, nil
}

// ListMatchesByCandidate retrieves every match of a candidate in creation order.
func (db *DB) ListMatchesByCandidate(ctx context.Context, candidateID string) ([]types.Match, error) {
	return db.queryMatches(ctx,
		`SELECT `+matchColumns+` FROM matches WHERE candidate_id = $1 ORDER BY created_at, id`, candidateID)
}

// ListMatches retrieves every match in creation order.
func (db *DB) ListMatches(ctx context.Context) ([]types.Match, error) {
	return db.queryMatches(ctx,
		`SELECT `+matchColumns+` FROM matches ORDER BY created_at, id`)
}

func (db *DB) queryMatches(ctx context.Context, query string, args ...any) ([]types.Match, error) {
	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	defer rows.Close()

	var matches []types.Match
	var ids []string
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, *m)
		ids = append(ids, m.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating matches: %w", err)
	}
	if len(matches) == 0 {
		return matches, nil
	}

	timelines, err := db.loadTimelines(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range matches {
		if entries, ok := timelines[matches[i].ID]; ok {
			matches[i].Timeline = entries
		}
	}
	return matches, nil
}

// loadTimelines fetches the timelines of several matches in insertion order.
func (db *DB) loadTimelines(ctx context.Context, matchIDs []string) (map[string][]types.TimelineEntry, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT `+timelineColumns+` FROM match_timeline WHERE match_id = ANY($1) ORDER BY match_id, seq`,
		matchIDs,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list timeline entries: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]types.TimelineEntry, len(matchIDs))
	for rows.Next() {
		var e types.TimelineEntry
		var matchID string
		if err := rows.Scan(&e.ID, &matchID, &e.Status, &e.Timestamp, &e.EventDate,
			&e.Description, &e.Notes, &e.CreatedBy); err != nil {
			return nil, fmt.Errorf("failed to scan timeline entry: %w", err)
		}
		out[matchID] = append(out[matchID], e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating timeline entries: %w", err)
	}
	return out, nil
}

// CreateMatch inserts a match and its initial timeline in one transaction.
// The store assigns the id; zero timestamps default to now.
func (db *DB) CreateMatch(ctx context.Context, m *types.Match) (*types.Match, error) {
	created := *m
	created.ID = uuid.NewString()
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}
	if created.UpdatedAt.IsZero() {
		created.UpdatedAt = created.CreatedAt
	}
	if created.Version == 0 {
		created.Version = 1
	}
	if created.MatchReasons == nil {
		created.MatchReasons = []types.MatchReason{}
	}

	reasons, err := json.Marshal(created.MatchReasons)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal match reasons: %w", err)
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if db.uniquePairs {
		if err := lockPair(ctx, tx, created.CandidateID, created.JobID); err != nil {
			return nil, err
		}
	}

	_, err = tx.Exec(ctx,
		`INSERT INTO matches (`+matchColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`,
		created.ID, created.CandidateID, created.JobID, created.CompanyID, created.StoreID,
		created.Status, created.Score, reasons,
		created.AppliedDate, created.InterviewDate, created.OfferDate, created.AcceptedDate, created.RejectedDate,
		created.StartDate, created.EndDate,
		created.Notes, created.CreatedBy, created.CreatedAt, created.UpdatedAt, created.Version,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert match: %w", err)
	}

	for i := range created.Timeline {
		if err := insertEntry(ctx, tx, created.ID, &created.Timeline[i]); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &created, nil
}

// lockPair serializes creates for one (candidate, job) pair until the
// transaction ends, then rejects the pair if a match already holds it.
func lockPair(ctx context.Context, tx pgx.Tx, candidateID, jobID string) error {
	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, pairKey(candidateID, jobID)); err != nil {
		return fmt.Errorf("failed to lock candidate/job pair: %w", err)
	}

	var existingID string
	err := tx.QueryRow(ctx,
		`SELECT id FROM matches WHERE candidate_id = $1 AND job_id = $2 LIMIT 1`, candidateID, jobID,
	).Scan(&existingID)
	switch {
	case err == pgx.ErrNoRows:
		return nil
	case err != nil:
		return fmt.Errorf("failed to check existing matches: %w", err)
	}
	return &matching.ErrDuplicateMatch{CandidateID: candidateID, JobID: jobID, ExistingID: existingID}
}

func pairKey(candidateID, jobID string) string {
	return "match-pair:" + candidateID + "\x1f" + jobID
}

func insertEntry(ctx context.Context, tx pgx.Tx, matchID string, e *types.TimelineEntry) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO match_timeline (id, match_id, status, recorded_at, event_date, description, notes, created_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, matchID, e.Status, e.Timestamp, e.EventDate, e.Description, e.Notes, e.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert timeline entry: %w", err)
	}
	return nil
}

// UpdateMatch applies a patch in one transaction. The match row is locked
// first so the version check and the write cannot interleave with another
// writer.
func (db *DB) UpdateMatch(ctx context.Context, id string, patch *matching.MatchPatch) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var version int
	err = tx.QueryRow(ctx, `SELECT version FROM matches WHERE id = $1 FOR UPDATE`, id).Scan(&version)
	if err != nil {
		if err == pgx.ErrNoRows {
			return &matching.ErrNotFound{MatchID: id}
		}
		return fmt.Errorf("failed to lock match: %w", err)
	}
	if patch.ExpectedVersion != 0 && patch.ExpectedVersion != version {
		return &matching.ErrVersionConflict{MatchID: id, Expected: patch.ExpectedVersion}
	}

	if patch.RemoveEntryID != "" {
		tag, err := tx.Exec(ctx,
			`DELETE FROM match_timeline WHERE id = $1 AND match_id = $2`, patch.RemoveEntryID, id)
		if err != nil {
			return fmt.Errorf("failed to delete timeline entry: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return &matching.ErrNotFound{MatchID: id, EntryID: patch.RemoveEntryID}
		}
	}
	if patch.AppendEntry != nil {
		if err := insertEntry(ctx, tx, id, patch.AppendEntry); err != nil {
			return err
		}
	}

	query, args := buildMatchUpdate(id, patch)
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to update match: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// buildMatchUpdate renders the UPDATE statement for the scalar part of a patch.
// The version is always bumped.
func buildMatchUpdate(id string, patch *matching.MatchPatch) (string, []any) {
	var sets []string
	var args []any
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Status != nil {
		set("status", *patch.Status)
	}
	for _, s := range types.AllStatuses {
		d, ok := patch.SetDates[s]
		if !ok {
			continue
		}
		if column, dated := dateColumns[s]; dated {
			set(column, d)
		}
	}
	if patch.StoreID != nil {
		set("store_id", *patch.StoreID)
	}
	if patch.StartDate != nil {
		set("start_date", *patch.StartDate)
	}
	if patch.EndDate != nil {
		set("end_date", *patch.EndDate)
	}
	if !patch.UpdatedAt.IsZero() {
		set("updated_at", patch.UpdatedAt)
	} else {
		sets = append(sets, "updated_at = NOW()")
	}
	sets = append(sets, "version = version + 1")

	args = append(args, id)
	query := fmt.Sprintf("UPDATE matches SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	return query, args
}

// DeleteMatch removes a match; its timeline goes with it. A non-zero
// expectedVersion must match the locked row.
func (db *DB) DeleteMatch(ctx context.Context, id string, expectedVersion int) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var version int
	err = tx.QueryRow(ctx, `SELECT version FROM matches WHERE id = $1 FOR UPDATE`, id).Scan(&version)
	if err != nil {
		if err == pgx.ErrNoRows {
			return &matching.ErrNotFound{MatchID: id}
		}
		return fmt.Errorf("failed to lock match: %w", err)
	}
	if expectedVersion != 0 && expectedVersion != version {
		return &matching.ErrVersionConflict{MatchID: id, Expected: expectedVersion}
	}

	if _, err := tx.Exec(ctx, `DELETE FROM matches WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete match: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
