package store

import (
	"context"

	"contact-seeder/internal/common/errors"
	"contact-seeder/internal/models"
)

// Batcher is the part of parse.Client the store needs.
type Batcher interface {
	SaveAll(ctx context.Context, className string, objects []models.OutputObject) ([]models.SaveResult, error)
}

// ParseStore saves objects through the Parse Server batch endpoint.
type ParseStore struct {
	client Batcher
}

func NewParseStore(client Batcher) *ParseStore {
	return &ParseStore{client: client}
}

func (s *ParseStore) Name() string { return "parse" }

func (s *ParseStore) SaveAll(ctx context.Context, className string, objects []models.OutputObject) ([]models.SaveResult, error) {
	results, err := s.client.SaveAll(ctx, className, objects)
	if err != nil {
		return nil, errors.NewRemoteWriteError(s.Name(), err)
	}
	return results, nil
}

func (s *ParseStore) Close() error { return nil }
