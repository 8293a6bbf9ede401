package db

// sqliteSchema creates the invocation log for SQLite.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS invocations (
    id TEXT PRIMARY KEY,
    tool TEXT NOT NULL,
    model TEXT NOT NULL,
    status TEXT NOT NULL CHECK(status IN ('succeeded', 'failed')),
    http_status INTEGER NOT NULL,
    error_message TEXT NOT NULL DEFAULT '',
    output TEXT NOT NULL DEFAULT '',
    duration_ms INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS idx_invocations_tool ON invocations(tool)`,
	`CREATE INDEX IF NOT EXISTS idx_invocations_created_at ON invocations(created_at)`,
}

// mysqlSchema creates the same table for MySQL, indexes inline.
var mysqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS invocations (
    id VARCHAR(36) PRIMARY KEY,
    tool VARCHAR(64) NOT NULL,
    model VARCHAR(255) NOT NULL,
    status VARCHAR(16) NOT NULL,
    http_status INT NOT NULL,
    error_message TEXT NOT NULL,
    output TEXT NOT NULL,
    duration_ms BIGINT NOT NULL DEFAULT 0,
    created_at BIGINT NOT NULL,
    INDEX idx_invocations_tool (tool),
    INDEX idx_invocations_created_at (created_at)
)`,
}

// Status constants
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Supported drivers
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Invocation is one proxied tool call. Output holds the URL list as JSON or
// the extracted text; ErrorMessage holds the internal failure detail.
type Invocation struct {
	ID           string `db:"id"`
	Tool         string `db:"tool"`
	Model        string `db:"model"`
	Status       string `db:"status"`
	HTTPStatus   int    `db:"http_status"`
	ErrorMessage string `db:"error_message"`
	Output       string `db:"output"`
	DurationMS   int64  `db:"duration_ms"`
	CreatedAt    int64  `db:"created_at"`
}

// ListFilter narrows List. Zero values match everything; Limit <= 0 means 100.
type ListFilter struct {
	Tool   string
	Status string
	Limit  int
}

// ToolSummary aggregates invocations per tool and status.
type ToolSummary struct {
	Tool          string  `db:"tool"`
	Status        string  `db:"status"`
	Count         int64   `db:"count"`
	AvgDurationMS float64 `db:"avg_duration_ms"`
}
