package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"

	sq "github.com/Masterminds/squirrel"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/mamadbah2/herdview/internal/domain/models"
)

// ErrNotDatabase indicates the extracted file is not a SQLite database.
var ErrNotDatabase = errors.New("file is not a readable database")

// Builder produces statements with SQLite placeholders.
var Builder = sq.StatementBuilder.PlaceholderFormat(sq.Question)

// Querier is the read-only query surface consumed by the view services.
type Querier interface {
	Execute(ctx context.Context, query string, args ...any) ([]models.Record, error)
	Select(ctx context.Context, q sq.Sqlizer) ([]models.Record, error)
	HasTable(ctx context.Context, name string) (bool, error)
	HasTables(ctx context.Context, names ...string) (bool, error)
	CountRows(ctx context.Context, table string) (int64, error)
}

// DB is a read-only handle on a backup database snapshot.
type DB struct {
	db     *sql.DB
	path   string
	logger *zap.Logger
}

// Open opens the snapshot at path read-only and verifies it is a database.
func Open(ctx context.Context, path string, logger *zap.Logger) (*DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	dsn := (&url.URL{Scheme: "file", Path: path, RawQuery: "mode=ro"}).String()
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open snapshot: %w", err)
	}
	db.SetMaxOpenConns(1)

	var tables int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master").Scan(&tables); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%w: %v", ErrNotDatabase, err)
	}

	logger.Debug("snapshot opened", zap.String("path", path), zap.Int("schema_objects", tables))
	return &DB{db: db, path: path, logger: logger}, nil
}

// Path returns the snapshot file location.
func (d *DB) Path() string {
	return d.path
}

// Close releases the database handle.
func (d *DB) Close() error {
	return d.db.Close()
}

// Execute runs a read-only query and returns its rows in result order.
func (d *DB) Execute(ctx context.Context, query string, args ...any) ([]models.Record, error) {
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("execute query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	records := make([]models.Record, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}

		record := make(models.Record, len(columns))
		for i, name := range columns {
			record[i] = models.Field{Name: name, Value: normalize(values[i])}
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	d.logger.Debug("query executed", zap.Int("rows", len(records)))
	return records, nil
}

// Select builds q and executes it.
func (d *DB) Select(ctx context.Context, q sq.Sqlizer) ([]models.Record, error) {
	query, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	return d.Execute(ctx, query, args...)
}

// HasTable reports whether the snapshot defines the named table.
func (d *DB) HasTable(ctx context.Context, name string) (bool, error) {
	query, args, err := Builder.
		Select("COUNT(*)").
		From("sqlite_master").
		Where(sq.Eq{"type": "table", "name": name}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build table probe: %w", err)
	}

	var n int
	if err := d.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return false, fmt.Errorf("probe table %s: %w", name, err)
	}
	return n > 0, nil
}

// HasTables reports whether every named table exists.
func (d *DB) HasTables(ctx context.Context, names ...string) (bool, error) {
	for _, name := range names {
		ok, err := d.HasTable(ctx, name)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// CountRows counts the rows of table, or returns 0 when it is absent.
func (d *DB) CountRows(ctx context.Context, table string) (int64, error) {
	ok, err := d.HasTable(ctx, table)
	if err != nil || !ok {
		return 0, err
	}

	query, args, err := Builder.Select("COUNT(*)").From(quoteIdent(table)).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}

	var n int64
	if err := d.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", table, err)
	}
	return n, nil
}

func normalize(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

func quoteIdent(name string) string {
	out := make([]byte, 0, len(name)+2)
	out = append(out, '"')
	for i := 0; i < len(name); i++ {
		if name[i] == '"' {
			out = append(out, '"')
		}
		out = append(out, name[i])
	}
	return string(append(out, '"'))
}
