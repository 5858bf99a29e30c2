package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"jobdash/alerts-service/internal/model"
)

// Postgres implements Store on a pgxpool connection. See schema.sql for the
// uniqueness constraints every upsert relies on.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres returns a configured Postgres store.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// UpsertListing inserts the listing, treating an external_id conflict as a
// benign no-op (first sighting wins, content is immutable once stored).
func (s *Postgres) UpsertListing(ctx context.Context, l model.NormalizedListing) (string, bool, error) {
	var id string
	err := s.pool.QueryRow(ctx,
		`INSERT INTO job_listings
		   (external_id, source, title, company, description, url,
		    contact_email, location, salary, tags, published_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 ON CONFLICT (external_id) DO NOTHING
		 RETURNING id`,
		l.ExternalID, string(l.Source), l.Title, l.Company, l.Description,
		l.URL, l.ContactEmail, l.Location, l.Salary, l.Tags, l.PublishedAt,
	).Scan(&id)
	if err == nil {
		return id, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", false, fmt.Errorf("upsertListing: %w", err)
	}

	// Conflict path — fetch the authoritative row's id.
	err = s.pool.QueryRow(ctx,
		`SELECT id FROM job_listings WHERE external_id = $1`, l.ExternalID,
	).Scan(&id)
	if err != nil {
		return "", false, fmt.Errorf("upsertListing lookup %q: %w", l.ExternalID, err)
	}
	return id, false, nil
}

// UpsertMatch inserts a match in 'new' status; a (user_id, job_listing_id)
// conflict means some earlier alert or run already claimed the pair.
func (s *Postgres) UpsertMatch(ctx context.Context, userID, listingID, alertID string) (bool, error) {
	tag, err := s.pool.Exec(ctx,
		`INSERT INTO alert_matches (user_id, job_listing_id, alert_id, status)
		 VALUES ($1, $2, $3, 'new')
		 ON CONFLICT (user_id, job_listing_id) DO NOTHING`,
		userID, listingID, alertID,
	)
	if err != nil {
		return false, fmt.Errorf("upsertMatch: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// ActiveAlerts returns the user's active alerts, oldest first.
func (s *Postgres) ActiveAlerts(ctx context.Context, userID string) ([]model.Alert, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, user_id, name, keywords, exclude_keywords, sources,
		        max_per_day, is_active, last_fetch_at
		 FROM alerts
		 WHERE user_id = $1 AND is_active = true
		 ORDER BY created_at`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("activeAlerts query: %w", err)
	}
	defer rows.Close()

	return scanAlerts(rows)
}

// ActiveUserIDs returns every user with at least one active alert. Used by
// the periodic sweep.
func (s *Postgres) ActiveUserIDs(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT user_id FROM alerts WHERE is_active = true`)
	if err != nil {
		return nil, fmt.Errorf("activeUserIDs query: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("activeUserIDs scan: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// TouchLastFetch stamps the alert's last_fetch_at unconditionally, so callers
// can observe staleness even after zero-match runs.
func (s *Postgres) TouchLastFetch(ctx context.Context, alertID string, at time.Time) error {
	_, err := s.pool.Exec(ctx,
		`UPDATE alerts SET last_fetch_at = $1 WHERE id = $2`, at, alertID)
	if err != nil {
		return fmt.Errorf("touchLastFetch: %w", err)
	}
	return nil
}

// ListMatches returns the user's matches, newest first, optionally filtered
// by status.
func (s *Postgres) ListMatches(ctx context.Context, userID string, statusFilter string) ([]model.AlertMatch, error) {
	if statusFilter != "" {
		if _, err := model.ParseMatchStatus(statusFilter); err != nil {
			return nil, &ValidationError{Msg: err.Error()}
		}
	}

	const base = `
		SELECT id, user_id, job_listing_id, alert_id, status, created_at
		FROM alert_matches
		WHERE user_id = $1`

	var (
		rows pgx.Rows
		err  error
	)
	if statusFilter != "" {
		rows, err = s.pool.Query(ctx, base+` AND status = $2::match_status ORDER BY created_at DESC`, userID, statusFilter)
	} else {
		rows, err = s.pool.Query(ctx, base+` ORDER BY created_at DESC`, userID)
	}
	if err != nil {
		return nil, fmt.Errorf("listMatches query: %w", err)
	}
	defer rows.Close()

	matches := make([]model.AlertMatch, 0)
	for rows.Next() {
		var m model.AlertMatch
		var status string
		if err := rows.Scan(&m.ID, &m.UserID, &m.JobListingID, &m.AlertID, &status, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("listMatches scan: %w", err)
		}
		m.Status = model.MatchStatus(status)
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// UpdateMatchStatus transitions a match to a new status on behalf of the UI.
// Returns ErrNotFound when the match is missing or not owned by the user and
// a ValidationError when the state machine rejects the transition.
func (s *Postgres) UpdateMatchStatus(ctx context.Context, userID, matchID, newStatusStr string) (*model.AlertMatch, error) {
	newStatus, err := model.ParseMatchStatus(newStatusStr)
	if err != nil {
		return nil, &ValidationError{Msg: err.Error()}
	}

	var currentStr string
	err = s.pool.QueryRow(ctx,
		`SELECT status FROM alert_matches WHERE id = $1 AND user_id = $2`,
		matchID, userID,
	).Scan(&currentStr)
	if err != nil {
		return nil, notFoundOr(err, "updateMatchStatus lookup")
	}

	current, _ := model.ParseMatchStatus(currentStr)
	if !model.IsMatchTransitionAllowed(current, newStatus) {
		return nil, &ValidationError{
			Msg: fmt.Sprintf("transition %s → %s is not allowed", current, newStatus),
		}
	}

	var m model.AlertMatch
	var status string
	err = s.pool.QueryRow(ctx,
		`UPDATE alert_matches SET status = $1::match_status
		 WHERE id = $2 AND user_id = $3
		 RETURNING id, user_id, job_listing_id, alert_id, status, created_at`,
		string(newStatus), matchID, userID,
	).Scan(&m.ID, &m.UserID, &m.JobListingID, &m.AlertID, &status, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("updateMatchStatus: %w", err)
	}
	m.Status = model.MatchStatus(status)

	slog.Info("match status updated", "matchId", matchID, "from", current, "to", newStatus)
	return &m, nil
}

// notFoundOr maps a single-row lookup error: no rows means the target does
// not exist (or belongs to someone else) and surfaces as ErrNotFound; any
// other error is a real query failure and must not masquerade as a miss.
func notFoundOr(err error, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func scanAlerts(rows pgx.Rows) ([]model.Alert, error) {
	var alerts []model.Alert
	for rows.Next() {
		var a model.Alert
		var sources []string
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.Name, &a.Keywords, &a.ExcludeKeywords,
			&sources, &a.MaxPerDay, &a.IsActive, &a.LastFetchAt,
		); err != nil {
			return nil, fmt.Errorf("alerts scan: %w", err)
		}
		for _, s := range sources {
			key, err := model.ParseSourceKey(s)
			if err != nil {
				slog.Warn("alert references unknown source", "alertId", a.ID, "source", s)
				continue
			}
			a.Sources = append(a.Sources, key)
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}
