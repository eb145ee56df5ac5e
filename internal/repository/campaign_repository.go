// Package repository persists campaign results in ClickHouse: one header row
// per campaign plus the transit-center and residual series in companion
// tables keyed by campaign ID.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"TTVPull/internal/domain/models"
	pkgch "TTVPull/pkg/clickhouse"
	phttp "TTVPull/pkg/http"
	applogger "TTVPull/pkg/logger"
	"TTVPull/pkg/uncert"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS campaigns (
		id            String,
		planet        String,
		catalog_t0    Float64,
		catalog_t0_e  Float64,
		catalog_p     Float64,
		catalog_p_e   Float64,
		refit_t0      Float64,
		refit_t0_e    Float64,
		refit_p       Float64,
		refit_p_e     Float64,
		skipped       UInt32,
		started_at    DateTime64(3, 'UTC'),
		finished_at   DateTime64(3, 'UTC')
	) ENGINE = MergeTree()
	ORDER BY (planet, started_at, id)`,

	`CREATE TABLE IF NOT EXISTS campaign_transits (
		campaign_id String,
		epoch       Int32,
		tc          Float64,
		tc_err      Float64
	) ENGINE = MergeTree()
	ORDER BY (campaign_id, epoch)`,

	`CREATE TABLE IF NOT EXISTS campaign_ttv (
		campaign_id String,
		epoch       Int32,
		residual_s  Float64,
		err_s       Float64
	) ENGINE = MergeTree()
	ORDER BY (campaign_id, epoch)`,

	`CREATE TABLE IF NOT EXISTS campaign_failures (
		campaign_id String,
		obs_index   Int32,
		reason      String
	) ENGINE = MergeTree()
	ORDER BY (campaign_id, obs_index)`,
}

// CHCampaignStore implements CampaignStore backed by ClickHouse.
type CHCampaignStore struct {
	ch *pkgch.Client
	db *sql.DB
	l  *applogger.Logger
}

func NewCHCampaignStore(ch *pkgch.Client) *CHCampaignStore {
	return &CHCampaignStore{ch: ch, db: ch.DB(), l: applogger.Nop()}
}

// SetLogger injects a structured logger.
func (s *CHCampaignStore) SetLogger(l *applogger.Logger) { s.l = l }

// Init creates the tables.
func (s *CHCampaignStore) Init(ctx context.Context) error {
	return s.ch.InitSchema(ctx, schema)
}

// Store writes one campaign result. The overwrite policy applies per planet:
// "fail" rejects when any result for the planet exists, "skip" silently keeps
// the existing one, "overwrite" appends and lets LatestForPlanet pick the
// newest run.
func (s *CHCampaignStore) Store(ctx context.Context, res *models.CampaignResult, policy models.OverwritePolicy) error {
	if policy != models.OverwriteYes {
		existing, err := s.LatestForPlanet(ctx, res.Planet)
		if err != nil {
			return err
		}
		if existing != nil {
			if policy == models.OverwriteSkip {
				s.l.Info("campaign store skipped, result exists",
					applogger.String("planet", res.Planet),
					applogger.String("existing", existing.ID))
				return nil
			}
			return phttp.ConflictErrorf("result for planet %q already exists (campaign %s)", res.Planet, existing.ID)
		}
	}

	start := time.Now()
	if err := s.insertHeader(ctx, res); err != nil {
		return err
	}
	if err := s.insertSeries(ctx, res); err != nil {
		return err
	}
	s.l.Info("campaign stored",
		applogger.String("campaign", res.ID),
		applogger.String("planet", res.Planet),
		applogger.Int("points", res.Series.Len()),
		applogger.Duration("took", time.Since(start)))
	return nil
}

func (s *CHCampaignStore) insertHeader(ctx context.Context, res *models.CampaignResult) error {
	const q = `INSERT INTO campaigns
		(id, planet, catalog_t0, catalog_t0_e, catalog_p, catalog_p_e,
		 refit_t0, refit_t0_e, refit_p, refit_p_e, skipped, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, q,
		res.ID, res.Planet,
		res.Catalog.ZeroEpoch.N, res.Catalog.ZeroEpoch.S,
		res.Catalog.Period.N, res.Catalog.Period.S,
		res.Refit.ZeroEpoch.N, res.Refit.ZeroEpoch.S,
		res.Refit.Period.N, res.Refit.Period.S,
		uint32(res.Failures.Skipped),
		res.StartedAt, res.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("insert campaign %s: %w", res.ID, err)
	}
	return nil
}

func (s *CHCampaignStore) insertSeries(ctx context.Context, res *models.CampaignResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	tr, err := tx.PrepareContext(ctx, `INSERT INTO campaign_transits (campaign_id, epoch, tc, tc_err) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare transits: %w", err)
	}
	for _, o := range res.Observations {
		if _, err := tr.ExecContext(ctx, res.ID, int32(o.Epoch), o.Tc.N, o.Tc.S); err != nil {
			return fmt.Errorf("insert transit epoch %d: %w", o.Epoch, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transits: %w", err)
	}

	tx, err = s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	tv, err := tx.PrepareContext(ctx, `INSERT INTO campaign_ttv (campaign_id, epoch, residual_s, err_s) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare ttv: %w", err)
	}
	for i, ep := range res.Series.Epochs {
		if _, err := tv.ExecContext(ctx, res.ID, int32(ep), res.Series.Residuals[i], res.Series.Errors[i]); err != nil {
			return fmt.Errorf("insert ttv epoch %d: %w", ep, err)
		}
	}
	for _, f := range res.Failures.Failures {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO campaign_failures (campaign_id, obs_index, reason) VALUES (?, ?, ?)`,
			res.ID, int32(f.ObservationIndex), f.Reason); err != nil {
			return fmt.Errorf("insert failure %d: %w", f.ObservationIndex, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ttv: %w", err)
	}
	return nil
}

// Get loads one campaign with its transit and residual series.
func (s *CHCampaignStore) Get(ctx context.Context, id string) (*models.CampaignResult, error) {
	const q = `SELECT id, planet, catalog_t0, catalog_t0_e, catalog_p, catalog_p_e,
		refit_t0, refit_t0_e, refit_p, refit_p_e, skipped, started_at, finished_at
		FROM campaigns WHERE id = ? LIMIT 1`
	res, err := s.scanCampaign(s.db.QueryRowContext(ctx, q, id))
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, phttp.NotFoundErrorf("campaign %q not found", id)
	}
	if err := s.loadSeries(ctx, res); err != nil {
		return nil, err
	}
	return res, nil
}

// LatestForPlanet returns the most recent campaign header for a planet, or
// nil when none exists. The series is not loaded.
func (s *CHCampaignStore) LatestForPlanet(ctx context.Context, planet string) (*models.CampaignResult, error) {
	const q = `SELECT id, planet, catalog_t0, catalog_t0_e, catalog_p, catalog_p_e,
		refit_t0, refit_t0_e, refit_p, refit_p_e, skipped, started_at, finished_at
		FROM campaigns WHERE planet = ? ORDER BY started_at DESC LIMIT 1`
	return s.scanCampaign(s.db.QueryRowContext(ctx, q, planet))
}

// List returns campaign headers, newest first. planet empty matches all;
// from/to zero values disable the time bounds.
func (s *CHCampaignStore) List(ctx context.Context, planet string, from, to time.Time, limit int) ([]*models.CampaignResult, error) {
	q := `SELECT id, planet, catalog_t0, catalog_t0_e, catalog_p, catalog_p_e,
		refit_t0, refit_t0_e, refit_p, refit_p_e, skipped, started_at, finished_at
		FROM campaigns WHERE 1 = 1`
	args := make([]interface{}, 0, 4)
	if planet != "" {
		q += " AND planet = ?"
		args = append(args, planet)
	}
	if !from.IsZero() {
		q += " AND started_at >= ?"
		args = append(args, from)
	}
	if !to.IsZero() {
		q += " AND started_at <= ?"
		args = append(args, to)
	}
	q += " ORDER BY started_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list campaigns: %w", err)
	}
	defer rows.Close()

	var out []*models.CampaignResult
	for rows.Next() {
		res, err := s.scanCampaign(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list campaigns rows: %w", err)
	}
	return out, nil
}

// Health pings the database.
func (s *CHCampaignStore) Health(ctx context.Context) error { return s.ch.Health(ctx) }

// Close closes the underlying connection pool.
func (s *CHCampaignStore) Close() error { return s.ch.Close() }

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (s *CHCampaignStore) scanCampaign(row rowScanner) (*models.CampaignResult, error) {
	var (
		res     models.CampaignResult
		ct0, cp uncert.Value
		rt0, rp uncert.Value
		skipped uint32
	)
	err := row.Scan(&res.ID, &res.Planet,
		&ct0.N, &ct0.S, &cp.N, &cp.S,
		&rt0.N, &rt0.S, &rp.N, &rp.S,
		&skipped, &res.StartedAt, &res.FinishedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan campaign: %w", err)
	}
	res.Catalog = models.Ephemeris{ZeroEpoch: ct0, Period: cp}
	res.Refit = models.Ephemeris{ZeroEpoch: rt0, Period: rp}
	res.Failures.Skipped = int(skipped)
	return &res, nil
}

func (s *CHCampaignStore) loadSeries(ctx context.Context, res *models.CampaignResult) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT epoch, tc, tc_err FROM campaign_transits WHERE campaign_id = ? ORDER BY epoch ASC`, res.ID)
	if err != nil {
		return fmt.Errorf("load transits: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			ep int32
			tc uncert.Value
		)
		if err := rows.Scan(&ep, &tc.N, &tc.S); err != nil {
			return fmt.Errorf("scan transit: %w", err)
		}
		res.Observations = append(res.Observations, models.EpochedObservation{Epoch: int(ep), Tc: tc})
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("transit rows: %w", err)
	}

	ttvRows, err := s.db.QueryContext(ctx,
		`SELECT epoch, residual_s, err_s FROM campaign_ttv WHERE campaign_id = ? ORDER BY epoch ASC`, res.ID)
	if err != nil {
		return fmt.Errorf("load ttv: %w", err)
	}
	defer ttvRows.Close()
	series := &models.TTVSeries{}
	for ttvRows.Next() {
		var (
			ep       int32
			val, sig float64
		)
		if err := ttvRows.Scan(&ep, &val, &sig); err != nil {
			return fmt.Errorf("scan ttv point: %w", err)
		}
		series.Epochs = append(series.Epochs, int(ep))
		series.Residuals = append(series.Residuals, val)
		series.Errors = append(series.Errors, sig)
	}
	if err := ttvRows.Err(); err != nil {
		return fmt.Errorf("ttv rows: %w", err)
	}
	res.Series = series

	fRows, err := s.db.QueryContext(ctx,
		`SELECT obs_index, reason FROM campaign_failures WHERE campaign_id = ? ORDER BY obs_index ASC`, res.ID)
	if err != nil {
		return fmt.Errorf("load failures: %w", err)
	}
	defer fRows.Close()
	for fRows.Next() {
		var f models.FitFailure
		var idx int32
		if err := fRows.Scan(&idx, &f.Reason); err != nil {
			return fmt.Errorf("scan failure: %w", err)
		}
		f.ObservationIndex = int(idx)
		res.Failures.Failures = append(res.Failures.Failures, f)
	}
	return fRows.Err()
}
