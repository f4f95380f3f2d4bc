package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kirillkom/crime-report-analyzer/internal/core/domain"
)

// ReportRepository is a PostgreSQL-backed report store. Insertion order is the
// serial position column; full-field uniqueness is the fingerprint column.
type ReportRepository struct {
	db *sql.DB
}

func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func OpenDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *ReportRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across concurrent api startups.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2025031401)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS crime_reports (
	position BIGSERIAL PRIMARY KEY,
	fingerprint TEXT NOT NULL UNIQUE,
	report_number TEXT NOT NULL,
	date_time TEXT NOT NULL,
	reporting_officer TEXT NOT NULL,
	incident_location TEXT NOT NULL,
	latitude DOUBLE PRECISION,
	longitude DOUBLE PRECISION,
	detailed_description TEXT NOT NULL,
	predicted_category TEXT NOT NULL,
	police_district TEXT NOT NULL,
	resolution TEXT NOT NULL,
	suspect_description TEXT NOT NULL,
	victim_information TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_crime_reports_category ON crime_reports(predicted_category);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

// Merge inserts the batch in one transaction. Rows whose fingerprint already
// exists are skipped by the unique constraint.
func (r *ReportRepository) Merge(ctx context.Context, reports []domain.Report) ([]domain.Report, error) {
	if len(reports) == 0 {
		return nil, nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin merge tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	now := time.Now().UTC()
	added := make([]domain.Report, 0, len(reports))
	for _, rep := range reports {
		res, err := tx.ExecContext(ctx, `
INSERT INTO crime_reports (
	fingerprint, report_number, date_time, reporting_officer, incident_location, latitude, longitude,
	detailed_description, predicted_category, police_district, resolution, suspect_description, victim_information, created_at
) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
ON CONFLICT (fingerprint) DO NOTHING
`,
			rep.Fingerprint(), rep.ReportNumber, rep.DateTime, rep.Officer, rep.Location,
			coordinateArg(rep.Latitude), coordinateArg(rep.Longitude),
			rep.Description, rep.PredictedCategory, rep.District, rep.Resolution, rep.Suspect, rep.Victim, now,
		)
		if err != nil {
			return nil, fmt.Errorf("insert report: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return nil, fmt.Errorf("insert report rows affected: %w", err)
		}
		if affected > 0 {
			added = append(added, rep.Clone())
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit merge tx: %w", err)
	}
	return added, nil
}

func (r *ReportRepository) All(ctx context.Context) ([]domain.Report, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT report_number, date_time, reporting_officer, incident_location, latitude, longitude,
	detailed_description, predicted_category, police_district, resolution, suspect_description, victim_information
FROM crime_reports
ORDER BY position
`)
	if err != nil {
		return nil, fmt.Errorf("query reports: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Report, 0, 32)
	for rows.Next() {
		var rep domain.Report
		var lat, lon sql.NullFloat64
		if err := rows.Scan(
			&rep.ReportNumber, &rep.DateTime, &rep.Officer, &rep.Location, &lat, &lon,
			&rep.Description, &rep.PredictedCategory, &rep.District, &rep.Resolution, &rep.Suspect, &rep.Victim,
		); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		if lat.Valid {
			v := lat.Float64
			rep.Latitude = &v
		}
		if lon.Valid {
			v := lon.Float64
			rep.Longitude = &v
		}
		out = append(out, rep)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	return out, nil
}

func (r *ReportRepository) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `TRUNCATE crime_reports RESTART IDENTITY`); err != nil {
		return fmt.Errorf("truncate reports: %w", err)
	}
	return nil
}

func (r *ReportRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM crime_reports`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count reports: %w", err)
	}
	return n, nil
}

func coordinateArg(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
