package store

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/goccy/go-json"

	"contact-seeder/internal/common/errors"
	"contact-seeder/internal/models"
)

// ElasticsearchStore indexes objects with one _bulk request into <prefix>-<class>.
type ElasticsearchStore struct {
	client      *elasticsearch.Client
	indexPrefix string
}

func NewElasticsearchStore(client *elasticsearch.Client, indexPrefix string) *ElasticsearchStore {
	return &ElasticsearchStore{client: client, indexPrefix: indexPrefix}
}

func (s *ElasticsearchStore) Name() string { return "elasticsearch" }

// IndexName is the index objects of className are written to.
func (s *ElasticsearchStore) IndexName(className string) string {
	return fmt.Sprintf("%s-%s", s.indexPrefix, lowerClass(className))
}

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		ID     string `json:"_id"`
		Status int    `json:"status"`
		Error  *struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error,omitempty"`
	} `json:"items"`
}

func (s *ElasticsearchStore) SaveAll(ctx context.Context, className string, objects []models.OutputObject) ([]models.SaveResult, error) {
	if len(objects) == 0 {
		return []models.SaveResult{}, nil
	}

	recs := toRecords(className, objects)
	if err := s.bulk(ctx, s.IndexName(className), recs); err != nil {
		return nil, errors.NewRemoteWriteError(s.Name(), err)
	}
	return toResults(recs), nil
}

func (s *ElasticsearchStore) bulk(ctx context.Context, index string, recs []record) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, r := range recs {
		if err := enc.Encode(map[string]interface{}{"index": map[string]string{"_id": r.ID}}); err != nil {
			return fmt.Errorf("failed to encode bulk action: %w", err)
		}
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to encode document: %w", err)
		}
	}

	res, err := s.client.Bulk(
		bytes.NewReader(buf.Bytes()),
		s.client.Bulk.WithContext(ctx),
		s.client.Bulk.WithIndex(index),
		s.client.Bulk.WithRefresh("wait_for"),
	)
	if err != nil {
		return fmt.Errorf("bulk request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("failed to read bulk response: %w", err)
	}
	if res.IsError() {
		return fmt.Errorf("bulk request error: %s: %s", res.Status(), string(body))
	}

	var br bulkResponse
	if err := json.Unmarshal(body, &br); err != nil {
		return fmt.Errorf("failed to decode bulk response: %w", err)
	}
	if br.Errors {
		for _, item := range br.Items {
			for _, op := range item {
				if op.Error != nil {
					return fmt.Errorf("document %s rejected: %s: %s", op.ID, op.Error.Type, op.Error.Reason)
				}
			}
		}
		return fmt.Errorf("bulk response reported errors")
	}
	return nil
}

func (s *ElasticsearchStore) Close() error { return nil }
