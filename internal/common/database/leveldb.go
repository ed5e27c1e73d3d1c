package database

import (
	"fmt"
	"os"
	"path/filepath"

	"contact-seeder/internal/common/config"

	"github.com/syndtr/goleveldb/leveldb"
)

// OpenLevelDB opens (or creates) the database directory at cfg.Path.
func OpenLevelDB(cfg config.LevelDBConfig) (*leveldb.DB, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create leveldb parent dir: %w", err)
	}

	db, err := leveldb.OpenFile(cfg.Path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open leveldb at %s: %w", cfg.Path, err)
	}
	return db, nil
}
