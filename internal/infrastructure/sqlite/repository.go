package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"walletrep/internal/application"
	"walletrep/internal/domain"

	_ "modernc.org/sqlite"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if dbPath == "" {
		return nil, errors.New("db path is required")
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}
	if err := createSchema(db); err != nil {
		return nil, err
	}
	return &Repository{db: db}, nil
}

func createSchema(db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS reports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			address TEXT NOT NULL,
			score INTEGER NOT NULL,
			age_days INTEGER NOT NULL,
			mixer_interaction INTEGER NOT NULL,
			failed_tx_count INTEGER NOT NULL,
			failed_tx_rate REAL NOT NULL,
			rug_pull_count INTEGER NOT NULL,
			swap_count INTEGER NOT NULL,
			liquidation_count INTEGER NOT NULL,
			vote_count INTEGER NOT NULL,
			breakdown TEXT NOT NULL,
			scored_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS reports_address_idx ON reports (address, scored_at)`,
	}
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) StoreReport(ctx context.Context, report domain.Report) error {
	return r.StoreReports(ctx, []domain.Report{report})
}

func (r *Repository) StoreReports(ctx context.Context, reports []domain.Report) error {
	if len(reports) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx, `INSERT INTO reports
		(address, score, age_days, mixer_interaction, failed_tx_count, failed_tx_rate,
		 rug_pull_count, swap_count, liquidation_count, vote_count, breakdown, scored_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for _, report := range reports {
		breakdown, err := json.Marshal(report.Breakdown)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		mixer := 0
		if report.Signals.MixerInteraction {
			mixer = 1
		}
		if _, err := stmt.ExecContext(ctx,
			domain.NormalizeAddress(report.Address),
			report.Score,
			report.Signals.AgeDays,
			mixer,
			report.Signals.FailedTxCount,
			report.Signals.FailedTxRate,
			report.Signals.RugPullCount,
			report.Signals.SwapCount,
			report.Signals.LiquidationCount,
			report.Signals.VoteCount,
			string(breakdown),
			report.ScoredAt.Unix(),
		); err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

func (r *Repository) QueryReports(ctx context.Context, filter application.ReportQueryFilter) ([]domain.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	clauses := make([]string, 0, 3)
	args := make([]any, 0, 4)

	if filter.Address != "" {
		clauses = append(clauses, "address = ?")
		args = append(args, domain.NormalizeAddress(filter.Address))
	}
	if filter.MinScore != nil {
		clauses = append(clauses, "score >= ?")
		args = append(args, *filter.MinScore)
	}
	if filter.MaxScore != nil {
		clauses = append(clauses, "score <= ?")
		args = append(args, *filter.MaxScore)
	}

	query := `SELECT address, score, age_days, mixer_interaction, failed_tx_count, failed_tx_rate,
		rug_pull_count, swap_count, liquidation_count, vote_count, breakdown, scored_at FROM reports`
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY scored_at DESC"
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += " LIMIT ?"
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanReports(rows)
}

func (r *Repository) LatestReport(ctx context.Context, address string) (domain.Report, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `SELECT address, score, age_days, mixer_interaction,
		failed_tx_count, failed_tx_rate, rug_pull_count, swap_count, liquidation_count,
		vote_count, breakdown, scored_at FROM reports
		WHERE address = ? ORDER BY scored_at DESC LIMIT 1`, domain.NormalizeAddress(address))
	if err != nil {
		return domain.Report{}, false, err
	}
	defer rows.Close()

	reports, err := scanReports(rows)
	if err != nil {
		return domain.Report{}, false, err
	}
	if len(reports) == 0 {
		return domain.Report{}, false, nil
	}
	return reports[0], true, nil
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *Repository) Close() error {
	return r.db.Close()
}

func scanReports(rows *sql.Rows) ([]domain.Report, error) {
	var reports []domain.Report
	for rows.Next() {
		var (
			report       domain.Report
			mixer        int
			breakdownRaw string
			scoredAt     int64
		)
		if err := rows.Scan(
			&report.Address,
			&report.Score,
			&report.Signals.AgeDays,
			&mixer,
			&report.Signals.FailedTxCount,
			&report.Signals.FailedTxRate,
			&report.Signals.RugPullCount,
			&report.Signals.SwapCount,
			&report.Signals.LiquidationCount,
			&report.Signals.VoteCount,
			&breakdownRaw,
			&scoredAt,
		); err != nil {
			return nil, err
		}
		report.Signals.MixerInteraction = mixer != 0
		if err := json.Unmarshal([]byte(breakdownRaw), &report.Breakdown); err != nil {
			return nil, err
		}
		report.ScoredAt = time.Unix(scoredAt, 0).UTC()
		reports = append(reports, report)
	}
	return reports, rows.Err()
}
