package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// DB is the SQLite-backed document store. The core reaches it only through
// the three-operation contract (Insert, QueryByField, UpdateField) plus the
// typed booking helpers in bookings.go that validate every document read.
type DB struct {
	db     *sql.DB
	logger *zerolog.Logger
}

const collectionBookings = "bookings"

// bookingColumns whitelists the persisted booking document fields. Generic
// operations refuse anything outside this set.
var bookingColumns = map[string]bool{
	"id":             true,
	"car_id":         true,
	"car_make":       true,
	"car_model":      true,
	"car_year":       true,
	"user_id":        true,
	"customer_name":  true,
	"customer_email": true,
	"customer_phone": true,
	"pickup_date":    true,
	"return_date":    true,
	"total_days":     true,
	"total_price":    true,
	"status":         true,
	"created_at":     true,
}

func NewDB(path string, logger *zerolog.Logger) (*DB, error) {
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := createTables(db); err != nil {
		return nil, fmt.Errorf("create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("booking store initialized")
	return &DB{db: db, logger: logger}, nil
}

func createTables(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS bookings (
            id TEXT PRIMARY KEY,
            car_id TEXT NOT NULL,
            car_make TEXT NOT NULL,
            car_model TEXT NOT NULL,
            car_year INTEGER,
            user_id TEXT NOT NULL DEFAULT '',
            customer_name TEXT NOT NULL,
            customer_email TEXT NOT NULL,
            customer_phone TEXT NOT NULL,
            pickup_date TEXT NOT NULL,
            return_date TEXT NOT NULL,
            total_days INTEGER NOT NULL,
            total_price REAL NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending',
            created_at DATETIME NOT NULL
        )`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_user_id ON bookings(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_customer_email ON bookings(customer_email)`,
		`CREATE INDEX IF NOT EXISTS idx_bookings_status ON bookings(status)`,
		`CREATE TABLE IF NOT EXISTS sync_queue (
            id INTEGER PRIMARY KEY AUTOINCREMENT,
            task_type TEXT NOT NULL,
            booking_id TEXT NOT NULL,
            payload TEXT NOT NULL,
            status TEXT NOT NULL DEFAULT 'pending',
            retry_count INTEGER NOT NULL DEFAULT 0,
            last_error TEXT,
            created_at DATETIME NOT NULL,
            processed_at DATETIME,
            next_retry_at DATETIME
        )`,
	}

	for _, query := range queries {
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("executing query %s: %w", query, err)
		}
	}
	return nil
}

func (db *DB) Close() error { return db.db.Close() }

// QueryRowContext exposes the raw row query for maintenance tooling.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.db.QueryRowContext(ctx, query, args...)
}

// Insert writes one document and returns its server-assigned id. The
// created_at timestamp is assigned here, never by the caller.
func (db *DB) Insert(ctx context.Context, collection string, doc map[string]any) (string, error) {
	if collection != collectionBookings {
		return "", fmt.Errorf("unknown collection: %s", collection)
	}

	id := uuid.NewString()
	now := time.Now().UTC()

	cols := []string{"id", "created_at"}
	args := []any{id, now}
	for field, value := range doc {
		if field == "id" || field == "created_at" {
			continue
		}
		if !bookingColumns[field] {
			return "", fmt.Errorf("unknown field %q in collection %s", field, collection)
		}
		cols = append(cols, field)
		args = append(args, value)
	}

	query := fmt.Sprintf("INSERT INTO bookings (%s) VALUES (%s)",
		strings.Join(cols, ", "),
		strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", "))
	if _, err := db.db.ExecContext(ctx, query, args...); err != nil {
		return "", fmt.Errorf("insert into %s: %w", collection, mapSQLError(err))
	}

	return id, nil
}

// QueryByField returns every document whose field equals value. orderBy may
// be empty or "<column> ASC|DESC" with a whitelisted column.
func (db *DB) QueryByField(ctx context.Context, collection, field string, value any, orderBy string) ([]map[string]any, error) {
	if collection != collectionBookings {
		return nil, fmt.Errorf("unknown collection: %s", collection)
	}
	if !bookingColumns[field] {
		return nil, fmt.Errorf("unknown field %q in collection %s", field, collection)
	}

	query := fmt.Sprintf("SELECT * FROM bookings WHERE %s = ?", field)
	if orderBy != "" {
		clause, err := orderClause(orderBy)
		if err != nil {
			return nil, err
		}
		query += " ORDER BY " + clause
	}

	rows, err := db.db.QueryContext(ctx, query, value)
	if err != nil {
		return nil, fmt.Errorf("query %s by %s: %w", collection, field, mapSQLError(err))
	}
	defer rows.Close()

	return scanDocuments(rows)
}

// UpdateField applies the given field updates to one document by id.
func (db *DB) UpdateField(ctx context.Context, collection, id string, updates map[string]any) error {
	if collection != collectionBookings {
		return fmt.Errorf("unknown collection: %s", collection)
	}
	if len(updates) == 0 {
		return nil
	}

	var sets []string
	var args []any
	for field, value := range updates {
		if field == "id" || field == "created_at" || !bookingColumns[field] {
			return fmt.Errorf("field %q is not updatable in collection %s", field, collection)
		}
		sets = append(sets, field+" = ?")
		args = append(args, value)
	}
	args = append(args, id)

	res, err := db.db.ExecContext(ctx,
		fmt.Sprintf("UPDATE bookings SET %s WHERE id = ?", strings.Join(sets, ", ")), args...)
	if err != nil {
		return fmt.Errorf("update %s %s: %w", collection, id, mapSQLError(err))
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s %s: %w", collection, id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func orderClause(orderBy string) (string, error) {
	parts := strings.Fields(orderBy)
	if len(parts) == 0 || len(parts) > 2 || !bookingColumns[parts[0]] {
		return "", fmt.Errorf("invalid order clause: %s", orderBy)
	}
	dir := "ASC"
	if len(parts) == 2 {
		switch strings.ToUpper(parts[1]) {
		case "ASC", "DESC":
			dir = strings.ToUpper(parts[1])
		default:
			return "", fmt.Errorf("invalid order clause: %s", orderBy)
		}
	}
	return parts[0] + " " + dir, nil
}

func scanDocuments(rows *sql.Rows) ([]map[string]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	var docs []map[string]any
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}

		doc := make(map[string]any, len(cols))
		for i, col := range cols {
			doc[col] = values[i]
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, nil
}

// mapSQLError keeps permission problems distinguishable from generic store
// failures, per the error contract of the booking surface.
func mapSQLError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "permission") || strings.Contains(msg, "readonly") || strings.Contains(msg, "access") {
		return fmt.Errorf("%w: %v", ErrPermissionDenied, err)
	}
	return err
}
