package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS transactions (
    id                   TEXT PRIMARY KEY,
    name                 TEXT NOT NULL,
    amount               TEXT NOT NULL,
    date                 TEXT NOT NULL,
    type                 TEXT NOT NULL,
    recurring            INTEGER NOT NULL DEFAULT 0,
    frequency            TEXT,
    interval             INTEGER,
    source_file          TEXT NOT NULL DEFAULT '',
    created_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS balance (
    id                   INTEGER PRIMARY KEY CHECK (id = 1),
    amount               TEXT NOT NULL,
    as_of                TEXT NOT NULL,
    updated_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS file_tracker (
    file_path            TEXT PRIMARY KEY,
    mtime_ns             INTEGER NOT NULL,
    size_bytes           INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date);
CREATE INDEX IF NOT EXISTS idx_transactions_source ON transactions(source_file);
`
