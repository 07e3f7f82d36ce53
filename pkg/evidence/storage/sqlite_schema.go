package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the evidence database schema.
// Times and durations are stored as integer nanoseconds so both SQLite
// drivers read back identical values.
const Schema = `
CREATE TABLE IF NOT EXISTS builtin_calls (
    id TEXT PRIMARY KEY,
    request_id TEXT NOT NULL DEFAULT '',

    -- Timestamps (unix nanoseconds)
    call_time INTEGER NOT NULL,
    duration_ns INTEGER NOT NULL,
    recorded_time INTEGER NOT NULL,

    -- Call
    builtin TEXT NOT NULL,
    family TEXT NOT NULL DEFAULT '',
    arity INTEGER NOT NULL DEFAULT 0,
    arg_count INTEGER NOT NULL DEFAULT 0,
    strict INTEGER NOT NULL DEFAULT 0,
    source TEXT NOT NULL DEFAULT '',
    line INTEGER NOT NULL DEFAULT 0,
    col INTEGER NOT NULL DEFAULT 0,

    -- Arguments
    args_hash TEXT NOT NULL DEFAULT '',
    args_bytes INTEGER NOT NULL DEFAULT 0,

    -- Result
    outcome TEXT NOT NULL,
    error_kind TEXT,
    error_message TEXT
);

CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_builtin_calls_call_time ON builtin_calls(call_time);
CREATE INDEX IF NOT EXISTS idx_builtin_calls_builtin ON builtin_calls(builtin);
CREATE INDEX IF NOT EXISTS idx_builtin_calls_outcome ON builtin_calls(outcome);
CREATE INDEX IF NOT EXISTS idx_builtin_calls_request_id ON builtin_calls(request_id);
`

// InsertSchemaVersion inserts the schema version into the schema_version table.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version from the database.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`

// selectColumns lists the columns in scanRow order.
const selectColumns = `id, request_id, call_time, duration_ns, recorded_time,
    builtin, family, arity, arg_count, strict, source, line, col,
    args_hash, args_bytes, outcome, error_kind, error_message`

const insertRecord = `
INSERT INTO builtin_calls (` + selectColumns + `)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`
