package fleet

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"fleet-allocation/metrics"
	"fleet-allocation/models"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// Open connects to the fleet database through the pgx driver.
func Open(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("openDB: open postgres database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("openDB: verify postgres connection: %w", err)
	}

	return db, nil
}

// A truck is available when it is active and has no open assignment.
const availableTrucksQuery = `
	SELECT COUNT(*)
	FROM trucks t
	WHERE t.company_id = $1
	  AND t.status = 'active'
	  AND NOT EXISTS (
		SELECT 1 FROM truck_assignments a
		WHERE a.truck_id = t.id AND a.released_at IS NULL
	  );
	`

const availableTrucksManyQuery = `
	SELECT t.company_id, COUNT(*)
	FROM trucks t
	WHERE t.company_id = ANY($1::text[])
	  AND t.status = 'active'
	  AND NOT EXISTS (
		SELECT 1 FROM truck_assignments a
		WHERE a.truck_id = t.id AND a.released_at IS NULL
	  )
	GROUP BY t.company_id;
	`

// PostgresSource reads fleet availability from the trucks table.
type PostgresSource struct {
	DB *sql.DB
}

func NewPostgresSource(db *sql.DB) *PostgresSource {
	return &PostgresSource{DB: db}
}

func (s *PostgresSource) AvailableTrucks(ctx context.Context, companyID string) (_ int, err error) {
	defer metrics.Time(ctx, "fleet.postgres.AvailableTrucks")(&err)

	if s.DB == nil {
		return 0, errors.New("fleet source: db is nil")
	}

	var n int
	if err := s.DB.QueryRowContext(ctx, availableTrucksQuery, companyID).Scan(&n); err != nil {
		return 0, fmt.Errorf("count available trucks for %s: %w", companyID, err)
	}
	return n, nil
}

// AvailableTrucksMany counts trucks for all companies in one query.
// Companies without rows are reported with zero trucks.
func (s *PostgresSource) AvailableTrucksMany(ctx context.Context, companyIDs []string) (_ models.FleetAvailability, err error) {
	defer metrics.Time(ctx, "fleet.postgres.AvailableTrucksMany")(&err)

	if s.DB == nil {
		return nil, errors.New("fleet source: db is nil")
	}

	out := make(models.FleetAvailability, len(companyIDs))
	for _, id := range companyIDs {
		out[id] = 0
	}
	if len(companyIDs) == 0 {
		return out, nil
	}

	rows, err := s.DB.QueryContext(ctx, availableTrucksManyQuery, companyIDs)
	if err != nil {
		return nil, fmt.Errorf("count available trucks: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			id string
			n  int
		)
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scan available trucks: %w", err)
		}
		out[id] = n
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate available trucks: %w", err)
	}

	return out, nil
}
