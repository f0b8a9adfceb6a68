package drivers

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/karthikdoguparthi/KisaanGrow/internal/models"
	"github.com/lib/pq"
)

const pqUndefinedTable = "42P01"

// PostgresStorage keeps each table in its own SQL table with one TEXT column
// per header column. A serial position column preserves insertion order.
type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(db *sql.DB) *PostgresStorage {
	return &PostgresStorage{db: db}
}

// Migrate applies the migrations found in mpath to the database at dbURL.
func Migrate(mpath, dbURL string) error {
	migr, err := migrate.New(fmt.Sprintf("file://%s", mpath), dbURL)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	defer migr.Close()

	if err := migr.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

func sqlTable(t models.Table) string {
	return pq.QuoteIdentifier(strings.ToLower(t.Name))
}

func sqlColumns(t models.Table) string {
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = pq.QuoteIdentifier(c.Name)
	}
	return strings.Join(cols, ", ")
}

func isUndefinedTable(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == pqUndefinedTable
}

func (s *PostgresStorage) ReadTable(ctx context.Context, table models.Table) ([]models.Row, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY position`, sqlColumns(table), sqlTable(table))

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		if isUndefinedTable(err) {
			return nil, ErrTableNotFound
		}
		return nil, fmt.Errorf("failed to query %s: %w", table.Name, err)
	}
	defer rows.Close()

	header := table.Header()
	var out []models.Row
	for rows.Next() {
		cells := make([]sql.NullString, len(header))
		dest := make([]interface{}, len(header))
		for i := range cells {
			dest[i] = &cells[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table.Name, err)
		}

		row := make(models.Row, len(header))
		for i, h := range header {
			row[h] = cells[i].String
		}
		out = append(out, row)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return out, nil
}

func (s *PostgresStorage) AppendRow(ctx context.Context, table models.Table, row models.Row) error {
	placeholders := make([]string, len(table.Columns))
	args := make([]interface{}, len(table.Columns))
	for i, v := range table.Values(row) {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = v
	}
	query := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		sqlTable(table), sqlColumns(table), strings.Join(placeholders, ", "))

	_, err := s.db.ExecContext(ctx, query, args...)
	if isUndefinedTable(err) {
		if err := s.createTable(ctx, table); err != nil {
			return err
		}
		_, err = s.db.ExecContext(ctx, query, args...)
	}
	if err != nil {
		return fmt.Errorf("failed to insert into %s: %w", table.Name, err)
	}

	return nil
}

func (s *PostgresStorage) createTable(ctx context.Context, table models.Table) error {
	cols := make([]string, len(table.Columns))
	for i, c := range table.Columns {
		cols[i] = pq.QuoteIdentifier(c.Name) + ` TEXT NOT NULL DEFAULT ''`
	}
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (position BIGSERIAL PRIMARY KEY, %s)`,
		sqlTable(table), strings.Join(cols, ", "))

	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create table %s: %w", table.Name, err)
	}
	return nil
}

func (s *PostgresStorage) UpdateByKey(ctx context.Context, table models.Table, key, column, value string) error {
	query := fmt.Sprintf(`UPDATE %s SET %s = $1 WHERE %s = $2`,
		sqlTable(table), pq.QuoteIdentifier(column), pq.QuoteIdentifier(table.Key))

	result, err := s.db.ExecContext(ctx, query, value, key)
	if err != nil {
		if isUndefinedTable(err) {
			return ErrTableNotFound
		}
		return fmt.Errorf("failed to update %s: %w", table.Name, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
