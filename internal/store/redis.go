package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"contact-seeder/internal/common/errors"
	"contact-seeder/internal/models"
)

// RedisStore writes one hash per object plus a per-class id set, all inside MULTI/EXEC.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) Name() string { return "redis" }

// ObjectKey is the hash key of one object.
func (s *RedisStore) ObjectKey(className, id string) string {
	return fmt.Sprintf("%s:%s:%s", s.prefix, className, id)
}

// IndexKey is the set holding every id saved for className.
func (s *RedisStore) IndexKey(className string) string {
	return fmt.Sprintf("%s:%s", s.prefix, className)
}

func (s *RedisStore) SaveAll(ctx context.Context, className string, objects []models.OutputObject) ([]models.SaveResult, error) {
	if len(objects) == 0 {
		return []models.SaveResult{}, nil
	}

	recs := toRecords(className, objects)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		ids := make([]interface{}, len(recs))
		for i, r := range recs {
			pipe.HSet(ctx, s.ObjectKey(className, r.ID),
				"name", r.Name,
				"class_name", r.ClassName,
				"created_at", r.CreatedAt.Format(time.RFC3339Nano),
			)
			ids[i] = r.ID
		}
		pipe.SAdd(ctx, s.IndexKey(className), ids...)
		return nil
	})
	if err != nil {
		return nil, errors.NewRemoteWriteError(s.Name(), err)
	}
	return toResults(recs), nil
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
