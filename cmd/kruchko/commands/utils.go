package commands

import (
	"os"
	"path/filepath"

	"github.com/DeniskaUa/ai-web-kruchko/internal/config"
	"github.com/DeniskaUa/ai-web-kruchko/pkg/db"
	"github.com/DeniskaUa/ai-web-kruchko/pkg/errors"
)

// ensureDirectories creates every non-empty directory given
func ensureDirectories(dirs ...string) error {
	for _, dir := range dirs {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "failed to create directory %s", dir)
		}
	}
	return nil
}

// openHistory opens the invocation history configured in cfg.
func openHistory(cfg *config.Config) (*db.Repository, error) {
	if !cfg.HistoryEnabled() {
		return nil, errors.New("history is disabled: set history-dsn (or KRUCHKO_HISTORY_DSN)")
	}

	// SQLite DSNs are file paths; make sure the parent exists
	if cfg.HistoryDriver == db.DriverSQLite {
		if err := ensureDirectories(filepath.Dir(cfg.HistoryDSN)); err != nil {
			return nil, err
		}
	}

	repo, err := db.NewRepository(cfg.HistoryDriver, cfg.HistoryDSN)
	if err != nil {
		return nil, errors.Wrap(err, "db init failed")
	}
	return repo, nil
}
