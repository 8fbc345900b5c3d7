package db

// Timestamps are stored as RFC 3339 text.
const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA foreign_keys = ON;

-- One row per scrape or rewrite invocation
CREATE TABLE IF NOT EXISTS runs (
    run_id INTEGER PRIMARY KEY AUTOINCREMENT,
    kind TEXT NOT NULL,                      -- scrape, rewrite
    status TEXT NOT NULL DEFAULT 'running',  -- running, completed, failed
    started_at TEXT NOT NULL,
    finished_at TEXT,
    error TEXT
);

CREATE INDEX IF NOT EXISTS idx_runs_kind ON runs(kind);

-- One row per link scraped or document rewritten
CREATE TABLE IF NOT EXISTS run_items (
    item_id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id INTEGER NOT NULL,
    source TEXT NOT NULL,      -- hyperlink or input document path
    target TEXT,               -- written document path
    title TEXT,
    language TEXT,
    content_hash TEXT,
    status TEXT NOT NULL,      -- saved, skipped, failed
    error TEXT,
    created_at TEXT NOT NULL,
    FOREIGN KEY (run_id) REFERENCES runs(run_id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_run_items_run ON run_items(run_id);
CREATE INDEX IF NOT EXISTS idx_run_items_status ON run_items(status);
`
