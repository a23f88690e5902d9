package periods

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	application "energiebuch/internal/ingest/application"
)

const defaultSummariesTable = "period_summaries"

// Repository persists period-level summaries produced by import
// sessions. The engine returns summaries; the calling layer stores them
// here, one row per (installation, year, month).
type Repository struct {
	db    *sql.DB
	table string
}

// NewRepository constructs a repository.
func NewRepository(db *sql.DB, opts ...Option) *Repository {
	repo := &Repository{db: db, table: defaultSummariesTable}
	for _, opt := range opts {
		opt(repo)
	}
	return repo
}

// Option configures the repository.
type Option func(*Repository)

// WithTable overrides the default table name.
func WithTable(table string) Option {
	return func(repo *Repository) {
		if table != "" {
			repo.table = table
		}
	}
}

// Save upserts one period summary.
func (r *Repository) Save(ctx context.Context, summary application.PeriodSummary) error {
	if r == nil || r.db == nil {
		return errors.New("periods repo: nil db")
	}
	if summary.InstallationID == "" {
		return errors.New("periods repo: empty installation id")
	}

	query := fmt.Sprintf(`
INSERT INTO %s (
	installation_id, year, month,
	einspeisung_kwh, netzbezug_kwh,
	pv_erzeugung_kwh, batterie_ladung_kwh, batterie_entladung_kwh,
	eigenverbrauch_direkt_kwh, eigenverbrauch_kwh, verbrauch_gesamt_kwh,
	sonnenstunden, temperatur_grad, notiz
) VALUES (
	$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
)
ON CONFLICT (installation_id, year, month)
DO UPDATE SET
	einspeisung_kwh = EXCLUDED.einspeisung_kwh,
	netzbezug_kwh = EXCLUDED.netzbezug_kwh,
	pv_erzeugung_kwh = EXCLUDED.pv_erzeugung_kwh,
	batterie_ladung_kwh = EXCLUDED.batterie_ladung_kwh,
	batterie_entladung_kwh = EXCLUDED.batterie_entladung_kwh,
	eigenverbrauch_direkt_kwh = EXCLUDED.eigenverbrauch_direkt_kwh,
	eigenverbrauch_kwh = EXCLUDED.eigenverbrauch_kwh,
	verbrauch_gesamt_kwh = EXCLUDED.verbrauch_gesamt_kwh,
	sonnenstunden = EXCLUDED.sonnenstunden,
	temperatur_grad = EXCLUDED.temperatur_grad,
	notiz = EXCLUDED.notiz,
	updated_at = NOW()`, r.table)

	_, err := r.db.ExecContext(ctx, query,
		summary.InstallationID, summary.Year, summary.Month,
		nullable(summary.EinspeisungKWh), nullable(summary.NetzbezugKWh),
		nullable(summary.PVErzeugungKWh), nullable(summary.BatterieLadungKWh), nullable(summary.BatterieEntladungKWh),
		nullable(summary.EigenverbrauchDirektKWh), nullable(summary.EigenverbrauchKWh), nullable(summary.VerbrauchGesamtKWh),
		nullable(summary.Sonnenstunden), nullable(summary.TemperaturGrad), summary.Notiz,
	)
	return err
}

// SaveAll upserts every summary of one session.
func (r *Repository) SaveAll(ctx context.Context, summaries []application.PeriodSummary) error {
	for _, summary := range summaries {
		if err := r.Save(ctx, summary); err != nil {
			return err
		}
	}
	return nil
}

// ListByInstallation returns all stored summaries of one installation,
// oldest period first.
func (r *Repository) ListByInstallation(ctx context.Context, installationID string) ([]application.PeriodSummary, error) {
	if r == nil || r.db == nil {
		return nil, errors.New("periods repo: nil db")
	}
	if installationID == "" {
		return nil, errors.New("periods repo: empty installation id")
	}

	query := fmt.Sprintf(`
SELECT installation_id, year, month,
	einspeisung_kwh, netzbezug_kwh,
	pv_erzeugung_kwh, batterie_ladung_kwh, batterie_entladung_kwh,
	eigenverbrauch_direkt_kwh, eigenverbrauch_kwh, verbrauch_gesamt_kwh,
	sonnenstunden, temperatur_grad, notiz
FROM %s
WHERE installation_id = $1
ORDER BY year ASC, month ASC`, r.table)

	rows, err := r.db.QueryContext(ctx, query, installationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []application.PeriodSummary
	for rows.Next() {
		summary, err := scanSummary(rows)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}

func scanSummary(scanner interface{ Scan(dest ...any) error }) (application.PeriodSummary, error) {
	var (
		summary application.PeriodSummary
		cols    [10]sql.NullFloat64
		notiz   sql.NullString
	)
	err := scanner.Scan(
		&summary.InstallationID, &summary.Year, &summary.Month,
		&cols[0], &cols[1], &cols[2], &cols[3], &cols[4],
		&cols[5], &cols[6], &cols[7], &cols[8], &cols[9],
		&notiz,
	)
	if err != nil {
		return application.PeriodSummary{}, err
	}
	targets := []**float64{
		&summary.EinspeisungKWh, &summary.NetzbezugKWh,
		&summary.PVErzeugungKWh, &summary.BatterieLadungKWh, &summary.BatterieEntladungKWh,
		&summary.EigenverbrauchDirektKWh, &summary.EigenverbrauchKWh, &summary.VerbrauchGesamtKWh,
		&summary.Sonnenstunden, &summary.TemperaturGrad,
	}
	for i, target := range targets {
		if cols[i].Valid {
			value := cols[i].Float64
			*target = &value
		}
	}
	summary.Notiz = notiz.String
	return summary, nil
}

func nullable(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
