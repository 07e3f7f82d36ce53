package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"mercator-hq/mpl-builtins/pkg/config"
	"mercator-hq/mpl-builtins/pkg/evidence"
)

// Supported database/sql driver names.
const (
	// DriverModernc is the pure Go driver (modernc.org/sqlite).
	DriverModernc = "sqlite"

	// DriverMattn is the cgo driver (github.com/mattn/go-sqlite3).
	DriverMattn = "sqlite3"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path. ":memory:" keeps the database in
	// memory and pins the pool to one connection.
	Path string

	// Driver selects the database/sql driver: "sqlite" or "sqlite3".
	// Default: "sqlite"
	Driver string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         config.DefaultEvidenceSQLitePath,
		Driver:       config.DefaultEvidenceSQLiteDriver,
		MaxOpenConns: config.DefaultEvidenceSQLiteMaxOpenConns,
		MaxIdleConns: config.DefaultEvidenceSQLiteMaxIdleConns,
		WALMode:      config.DefaultEvidenceSQLiteWALMode,
		BusyTimeout:  config.DefaultEvidenceSQLiteBusyTimeout,
	}
}

// SQLiteConfigFrom converts the evidence.sqlite config section.
func SQLiteConfigFrom(cfg config.SQLiteConfig) *SQLiteConfig {
	return &SQLiteConfig{
		Path:         cfg.Path,
		Driver:       cfg.Driver,
		MaxOpenConns: cfg.MaxOpenConns,
		MaxIdleConns: cfg.MaxIdleConns,
		WALMode:      cfg.WALMode,
		BusyTimeout:  cfg.BusyTimeout,
	}
}

// SQLiteStorage implements the Storage interface using SQLite.
type SQLiteStorage struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStorage creates a new SQLite storage backend.
// It initializes the database schema and enables WAL mode if configured.
func NewSQLiteStorage(cfg *SQLiteConfig) (*SQLiteStorage, error) {
	if cfg == nil {
		cfg = DefaultSQLiteConfig()
	}
	if cfg.Driver == "" {
		cfg.Driver = DriverModernc
	}

	logger := slog.Default().With("component", "evidence.storage.sqlite", "driver", cfg.Driver)

	dsn, err := buildDSN(cfg)
	if err != nil {
		return nil, evidence.NewStorageError("sqlite", "open", err)
	}

	if cfg.Path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
			return nil, evidence.NewStorageError("sqlite", "open", err)
		}
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, evidence.NewStorageError("sqlite", "open", err)
	}

	if cfg.Path == ":memory:" {
		// Every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	} else {
		if cfg.MaxOpenConns > 0 {
			db.SetMaxOpenConns(cfg.MaxOpenConns)
		}
		if cfg.MaxIdleConns > 0 {
			db.SetMaxIdleConns(cfg.MaxIdleConns)
		}
	}

	s := &SQLiteStorage{
		db:     db,
		config: cfg,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite storage initialized",
		"path", cfg.Path,
		"wal_mode", cfg.WALMode,
		"max_open_conns", cfg.MaxOpenConns,
	)

	return s, nil
}

// buildDSN encodes busy timeout and journal mode as connection parameters so
// they apply to every pooled connection. The drivers spell them differently.
func buildDSN(cfg *SQLiteConfig) (string, error) {
	params := url.Values{}
	busy := cfg.BusyTimeout.Milliseconds()

	switch cfg.Driver {
	case DriverMattn:
		params.Set("_busy_timeout", fmt.Sprint(busy))
		if cfg.WALMode && cfg.Path != ":memory:" {
			params.Set("_journal_mode", "WAL")
		}
	case DriverModernc:
		params.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busy))
		if cfg.WALMode && cfg.Path != ":memory:" {
			params.Add("_pragma", "journal_mode(WAL)")
		}
	default:
		return "", fmt.Errorf("unsupported sqlite driver %q (valid: %s, %s)", cfg.Driver, DriverModernc, DriverMattn)
	}

	return "file:" + cfg.Path + "?" + params.Encode(), nil
}

// initialize creates the schema and checks its version.
func (s *SQLiteStorage) initialize() error {
	if _, err := s.db.Exec(Schema); err != nil {
		return evidence.NewStorageError("sqlite", "create_schema", err)
	}

	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return evidence.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err := s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return evidence.NewStorageError("sqlite", "get_schema_version", err)
	}

	if version != SchemaVersion {
		return evidence.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	s.logger.Debug("schema version verified", "version", version)

	return nil
}

// Store persists an evidence record to the database.
func (s *SQLiteStorage) Store(ctx context.Context, record *evidence.EvidenceRecord) error {
	if record == nil || record.ID == "" {
		return evidence.NewStorageError("sqlite", "store", errMissingID)
	}

	recorded := record.RecordedTime
	if recorded.IsZero() {
		recorded = time.Now()
	}

	_, err := s.db.ExecContext(ctx, insertRecord,
		record.ID, record.RequestID,
		record.CallTime.UnixNano(), int64(record.Duration), recorded.UnixNano(),
		record.Builtin, record.Family, record.Arity, record.ArgCount, boolToInt(record.Strict),
		record.Source, record.Line, record.Column,
		record.ArgsHash, record.ArgsBytes,
		record.Outcome, nullString(record.ErrorKind), nullString(record.ErrorMessage),
	)
	if err != nil {
		return evidence.NewStorageError("sqlite", "store", err)
	}

	return nil
}

// Query retrieves evidence records matching the query filters.
func (s *SQLiteStorage) Query(ctx context.Context, query *evidence.Query) ([]*evidence.EvidenceRecord, error) {
	sqlQuery, args := s.buildSelect(query)

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, evidence.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	records := []*evidence.EvidenceRecord{}
	for rows.Next() {
		record, err := scanRow(rows)
		if err != nil {
			return nil, evidence.NewStorageError("sqlite", "scan", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, evidence.NewStorageError("sqlite", "query", err)
	}

	return records, nil
}

// QueryStream returns a channel of evidence records for memory-efficient streaming.
// The channels will be closed when the query completes or errors.
func (s *SQLiteStorage) QueryStream(ctx context.Context, query *evidence.Query) (<-chan *evidence.EvidenceRecord, <-chan error, error) {
	recordsCh := make(chan *evidence.EvidenceRecord, 100)
	errCh := make(chan error, 1)

	sqlQuery, args := s.buildSelect(query)

	go func() {
		defer close(recordsCh)
		defer close(errCh)

		rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
		if err != nil {
			errCh <- evidence.NewStorageError("sqlite", "query_stream", err)
			return
		}
		defer rows.Close()

		for rows.Next() {
			record, err := scanRow(rows)
			if err != nil {
				errCh <- evidence.NewStorageError("sqlite", "scan", err)
				return
			}

			select {
			case <-ctx.Done():
				errCh <- ctx.Err()
				return
			case recordsCh <- record:
			}
		}

		if err := rows.Err(); err != nil {
			errCh <- evidence.NewStorageError("sqlite", "query_stream", err)
		}
	}()

	return recordsCh, errCh, nil
}

// Count returns the number of evidence records matching the query filters.
func (s *SQLiteStorage) Count(ctx context.Context, query *evidence.Query) (int64, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := "SELECT COUNT(*) FROM builtin_calls"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	var count int64
	if err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count); err != nil {
		return 0, evidence.NewStorageError("sqlite", "count", err)
	}

	return count, nil
}

// Delete removes evidence records matching the query filters.
// Pagination fields are ignored. Returns the number of records deleted.
func (s *SQLiteStorage) Delete(ctx context.Context, query *evidence.Query) (int64, error) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := "DELETE FROM builtin_calls"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	result, err := s.db.ExecContext(ctx, sqlQuery, args...)
	if err != nil {
		return 0, evidence.NewStorageError("sqlite", "delete", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, evidence.NewStorageError("sqlite", "delete", err)
	}

	return count, nil
}

// Ping checks the database connection.
func (s *SQLiteStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return evidence.NewStorageError("sqlite", "ping", err)
	}
	return nil
}

// Close releases resources held by the storage backend.
func (s *SQLiteStorage) Close() error {
	if err := s.db.Close(); err != nil {
		return evidence.NewStorageError("sqlite", "close", err)
	}

	s.logger.Info("SQLite storage closed")
	return nil
}

// sortColumns maps Query.SortBy onto columns. Anything else falls back to
// call_time so user input never reaches the SQL text.
var sortColumns = map[string]string{
	SortByCallTime: "call_time",
	SortByDuration: "duration_ns",
	SortByBuiltin:  "builtin",
}

func (s *SQLiteStorage) buildSelect(query *evidence.Query) (string, []interface{}) {
	whereClause, args := buildWhereClause(query)

	sqlQuery := "SELECT " + selectColumns + " FROM builtin_calls"
	if whereClause != "" {
		sqlQuery += " WHERE " + whereClause
	}

	column, order := "call_time", "DESC"
	limit, offset := -1, 0
	if query != nil {
		if c, ok := sortColumns[query.SortBy]; ok {
			column = c
		}
		if strings.EqualFold(query.SortOrder, "asc") {
			order = "ASC"
		}
		if query.Limit > 0 {
			limit = query.Limit
		}
		offset = query.Offset
	}

	// id breaks ties so pagination is stable
	sqlQuery += fmt.Sprintf(" ORDER BY %s %s, id %s LIMIT %d OFFSET %d", column, order, order, limit, offset)

	return sqlQuery, args
}

// buildWhereClause builds a SQL WHERE clause from query filters.
// Returns the WHERE clause (without "WHERE" keyword) and the query arguments.
func buildWhereClause(query *evidence.Query) (string, []interface{}) {
	if query == nil {
		return "", nil
	}

	var conditions []string
	var args []interface{}

	add := func(cond string, arg interface{}) {
		conditions = append(conditions, cond)
		args = append(args, arg)
	}

	if query.StartTime != nil {
		add("call_time >= ?", query.StartTime.UnixNano())
	}
	if query.EndTime != nil {
		add("call_time <= ?", query.EndTime.UnixNano())
	}
	if query.Builtin != "" {
		add("builtin = ?", query.Builtin)
	}
	if query.Family != "" {
		add("family = ?", query.Family)
	}
	if query.Outcome != "" {
		add("outcome = ?", query.Outcome)
	}
	if query.ErrorKind != "" {
		add("error_kind = ?", query.ErrorKind)
	}
	if query.RequestID != "" {
		add("request_id = ?", query.RequestID)
	}
	if query.Strict != nil {
		add("strict = ?", boolToInt(*query.Strict))
	}
	if query.MinDuration != nil {
		add("duration_ns >= ?", int64(*query.MinDuration))
	}
	if query.MaxDuration != nil {
		add("duration_ns <= ?", int64(*query.MaxDuration))
	}

	return strings.Join(conditions, " AND "), args
}

// scanRow scans a database row into an EvidenceRecord.
func scanRow(rows *sql.Rows) (*evidence.EvidenceRecord, error) {
	var record evidence.EvidenceRecord
	var callTime, durationNs, recordedTime int64
	var strict int
	var errorKind, errorMessage sql.NullString

	err := rows.Scan(
		&record.ID, &record.RequestID,
		&callTime, &durationNs, &recordedTime,
		&record.Builtin, &record.Family, &record.Arity, &record.ArgCount, &strict,
		&record.Source, &record.Line, &record.Column,
		&record.ArgsHash, &record.ArgsBytes,
		&record.Outcome, &errorKind, &errorMessage,
	)
	if err != nil {
		return nil, err
	}

	record.CallTime = time.Unix(0, callTime)
	record.Duration = time.Duration(durationNs)
	record.RecordedTime = time.Unix(0, recordedTime)
	record.Strict = strict != 0
	record.ErrorKind = errorKind.String
	record.ErrorMessage = errorMessage.String

	return &record, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// nullString stores empty optional fields as NULL.
func nullString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
