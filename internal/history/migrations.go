package history

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
    id TEXT PRIMARY KEY,
    started_at INTEGER NOT NULL,
    ended_at INTEGER,
    task_count INTEGER NOT NULL,
    modes TEXT NOT NULL,
    targets TEXT NOT NULL,
    outcome TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
    target_id TEXT NOT NULL,
    mode TEXT NOT NULL,
    task_count INTEGER NOT NULL,
    success BOOLEAN NOT NULL,
    elapsed_ms INTEGER NOT NULL,
    started_at INTEGER NOT NULL,
    error TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_runs_target_mode ON runs(target_id, mode);
CREATE INDEX IF NOT EXISTS idx_runs_session ON runs(session_id);
`
