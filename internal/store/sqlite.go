package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cdrp-labs/disaster-ingest/internal/models"
)

type SQLiteDB struct {
	db *sql.DB
}

func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("error while pinging database: %w", err)
	}

	s := &SQLiteDB{
		db: db,
	}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("error while migrating database: %w", err)
	}
	if err := s.seedLookups(); err != nil {
		return nil, fmt.Errorf("error while seeding lookup tables: %w", err)
	}

	return s, nil
}

func (s *SQLiteDB) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS categories (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			code TEXT NOT NULL UNIQUE
		);

		CREATE TABLE IF NOT EXISTS regions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			code TEXT NOT NULL UNIQUE
		);

		CREATE TABLE IF NOT EXISTS actors (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			display_name TEXT NOT NULL,
			role TEXT NOT NULL,
			region_id INTEGER REFERENCES regions(id),
			created_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS incidents (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			description TEXT NOT NULL,
			location TEXT NOT NULL,
			coordinates TEXT,
			severity TEXT NOT NULL,
			status TEXT NOT NULL,
			category_id INTEGER NOT NULL REFERENCES categories(id),
			region_id INTEGER NOT NULL REFERENCES regions(id),
			created_by INTEGER NOT NULL REFERENCES actors(id),
			priority_score REAL NOT NULL,
			is_automated INTEGER NOT NULL,
			confidence REAL NOT NULL,
			affected_population INTEGER,
			required_resources TEXT,
			created_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_incidents_severity ON incidents(severity);
		CREATE INDEX IF NOT EXISTS idx_incidents_status ON incidents(status);
		CREATE INDEX IF NOT EXISTS idx_incidents_created_at ON incidents(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// seedLookups inserts the disaster categories and the default region so
// code lookups resolve on a fresh database.
func (s *SQLiteDB) seedLookups() error {
	seeds := `
		INSERT OR IGNORE INTO categories (name, code) VALUES
			('Earthquake', 'EQ'),
			('Flood', 'FL'),
			('Hurricane', 'HU'),
			('Tornado', 'TO'),
			('Blizzard', 'BZ'),
			('Wildfire', 'WF'),
			('Drought', 'DR');

		INSERT OR IGNORE INTO regions (name, code) VALUES
			('Central Region', 'CR');
	`

	_, err := s.db.Exec(seeds)
	return err
}

func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

func (s *SQLiteDB) Exists(ctx context.Context, p DedupPredicate) (bool, error) {
	query := `SELECT COUNT(1) FROM incidents WHERE title LIKE ?`
	args := []any{contains(p.TitleContains)}

	if p.LocationContains != "" {
		query += ` AND location LIKE ?`
		args = append(args, contains(p.LocationContains))
	}
	if p.DescriptionContains != "" {
		query += ` AND description LIKE ?`
		args = append(args, contains(p.DescriptionContains))
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("error checking incident existence: %w", err)
	}
	return count > 0, nil
}

func contains(needle string) string {
	return "%" + needle + "%"
}

func (s *SQLiteDB) InsertBatch(ctx context.Context, incidents []*models.Incident) (int, error) {
	if len(incidents) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("error beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO incidents (
			title, description, location, coordinates, severity, status,
			category_id, region_id, created_by, priority_score, is_automated,
			confidence, affected_population, required_resources, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("error preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, inc := range incidents {
		res, err := stmt.ExecContext(ctx,
			inc.Title, inc.Description, inc.Location, nullString(inc.Coordinates),
			string(inc.Severity), string(inc.Status), inc.CategoryID, inc.RegionID,
			inc.CreatedBy, inc.PriorityScore, inc.IsAutomated, inc.Confidence,
			nullInt(inc.AffectedPopulation), inc.RequiredResources, inc.CreatedAt,
		)
		if err != nil {
			return 0, fmt.Errorf("error inserting incident: %w", err)
		}
		if id, err := res.LastInsertId(); err == nil {
			inc.ID = id
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("error committing batch: %w", err)
	}
	return len(incidents), nil
}

func (s *SQLiteDB) ListIncidents(ctx context.Context, opts Filter) ([]models.Incident, error) {
	query := `
		SELECT id, title, description, location, COALESCE(coordinates, ''),
			severity, status, category_id, region_id, created_by,
			priority_score, is_automated, confidence,
			COALESCE(affected_population, 0), COALESCE(required_resources, ''),
			created_at
		FROM incidents WHERE 1=1`
	var args []any

	if opts.Severity != nil {
		query += ` AND severity = ?`
		args = append(args, string(*opts.Severity))
	}
	if opts.Status != nil {
		query += ` AND status = ?`
		args = append(args, string(*opts.Status))
	}

	query += ` ORDER BY created_at DESC, id DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
		if opts.Offset > 0 {
			query += ` OFFSET ?`
			args = append(args, opts.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing incidents: %w", err)
	}
	defer rows.Close()

	var incidents []models.Incident
	for rows.Next() {
		var inc models.Incident
		var severity, status string
		if err := rows.Scan(
			&inc.ID, &inc.Title, &inc.Description, &inc.Location, &inc.Coordinates,
			&severity, &status, &inc.CategoryID, &inc.RegionID, &inc.CreatedBy,
			&inc.PriorityScore, &inc.IsAutomated, &inc.Confidence,
			&inc.AffectedPopulation, &inc.RequiredResources, &inc.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning incident: %w", err)
		}
		inc.Severity = models.SeverityTier(severity)
		inc.Status = models.IncidentStatus(status)
		incidents = append(incidents, inc)
	}
	return incidents, rows.Err()
}

func (s *SQLiteDB) FindActorByName(ctx context.Context, name string) (*models.Actor, error) {
	var a models.Actor
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, display_name, role, COALESCE(region_id, 0), created_at
		FROM actors WHERE name = ?`, name).
		Scan(&a.ID, &a.Name, &a.DisplayName, &a.Role, &a.RegionID, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error finding actor: %w", err)
	}
	return &a, nil
}

func (s *SQLiteDB) CreateActor(ctx context.Context, a *models.Actor) (*models.Actor, error) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO actors (name, display_name, role, region_id, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		a.Name, a.DisplayName, a.Role, nullInt64(a.RegionID), a.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error creating actor: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		a.ID = id
	}
	return a, nil
}

func (s *SQLiteDB) CategoryByCode(ctx context.Context, code string) (*models.Category, error) {
	var c models.Category
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, code FROM categories WHERE code = ?`, code).
		Scan(&c.ID, &c.Name, &c.Code)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error finding category: %w", err)
	}
	return &c, nil
}

func (s *SQLiteDB) RegionByCode(ctx context.Context, code string) (*models.Region, error) {
	var r models.Region
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, code FROM regions WHERE code = ?`, code).
		Scan(&r.ID, &r.Name, &r.Code)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error finding region: %w", err)
	}
	return &r, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullInt(n int) any {
	if n == 0 {
		return nil
	}
	return n
}

func nullInt64(n int64) any {
	if n == 0 {
		return nil
	}
	return n
}
