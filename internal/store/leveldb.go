package store

import (
	"context"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"

	"contact-seeder/internal/common/errors"
	"contact-seeder/internal/models"
)

// LevelDBStore writes a single atomic leveldb batch keyed "<class>/<id>".
type LevelDBStore struct {
	db *leveldb.DB
}

func NewLevelDBStore(db *leveldb.DB) *LevelDBStore {
	return &LevelDBStore{db: db}
}

func (s *LevelDBStore) Name() string { return "leveldb" }

// Key is the leveldb key of one object.
func Key(className, id string) []byte {
	return []byte(className + "/" + id)
}

func (s *LevelDBStore) SaveAll(ctx context.Context, className string, objects []models.OutputObject) ([]models.SaveResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.NewRemoteWriteError(s.Name(), err)
	}

	recs := toRecords(className, objects)
	batch := new(leveldb.Batch)
	for _, r := range recs {
		value, err := json.Marshal(r)
		if err != nil {
			return nil, errors.NewRemoteWriteError(s.Name(), fmt.Errorf("failed to encode object: %w", err))
		}
		batch.Put(Key(className, r.ID), value)
	}

	if err := s.db.Write(batch, &opt.WriteOptions{Sync: true}); err != nil {
		return nil, errors.NewRemoteWriteError(s.Name(), err)
	}
	return toResults(recs), nil
}

func (s *LevelDBStore) Close() error {
	return s.db.Close()
}
