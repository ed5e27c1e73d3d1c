// Package parse is a minimal Parse Server REST client: just enough to create
// class-tagged objects through the batch endpoint.
package parse

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/goccy/go-json"

	httpclient "contact-seeder/internal/common/http"
	"contact-seeder/internal/common/logger"
	"contact-seeder/internal/models"
)

type Client struct {
	cfg        Config
	batchURL   string
	mountPath  string
	httpClient *httpclient.Client
	logger     logger.Logger
}

func NewClient(cfg Config, hc *httpclient.Client, log logger.Logger) (*Client, error) {
	if cfg.AppID == "" {
		return nil, fmt.Errorf("parse app id is required")
	}
	if cfg.ClientKey == "" && cfg.RESTAPIKey == "" {
		return nil, fmt.Errorf("parse client key or rest api key is required")
	}

	u, err := url.Parse(strings.TrimRight(cfg.ServerURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid parse server url %q", cfg.ServerURL)
	}

	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.BatchSize > MaxBatchSize {
		cfg.BatchSize = MaxBatchSize
	}

	mount := cfg.MountPath
	if mount == "" {
		mount = u.Path
	}
	mount = "/" + strings.Trim(mount, "/")
	if mount == "/" {
		mount = ""
	}

	if log == nil {
		log = logger.NewNoOpLogger()
	}

	return &Client{
		cfg:        cfg,
		batchURL:   u.String() + "/batch",
		mountPath:  mount,
		httpClient: hc,
		logger:     log,
	}, nil
}

// ClassPath is the batch sub-request path for creating objects of className.
func (c *Client) ClassPath(className string) string {
	return fmt.Sprintf("%s/classes/%s", c.mountPath, url.PathEscape(className))
}

// SaveAll creates every object, chunked by the configured batch size. It
// returns results only when every object was saved.
func (c *Client) SaveAll(ctx context.Context, className string, objects []models.OutputObject) ([]models.SaveResult, error) {
	results := make([]models.SaveResult, 0, len(objects))

	for start := 0; start < len(objects); start += c.cfg.BatchSize {
		end := start + c.cfg.BatchSize
		if end > len(objects) {
			end = len(objects)
		}

		chunk, err := c.saveChunk(ctx, className, objects[start:end])
		if err != nil {
			return nil, fmt.Errorf("batch %d-%d: %w", start, end-1, err)
		}
		results = append(results, chunk...)

		c.logger.Debug("Parse batch saved", map[string]interface{}{
			"className": className,
			"from":      start,
			"to":        end - 1,
		})
	}

	return results, nil
}

func (c *Client) saveChunk(ctx context.Context, className string, objects []models.OutputObject) ([]models.SaveResult, error) {
	path := c.ClassPath(className)
	payload := batchRequest{
		Requests:    make([]batchOperation, len(objects)),
		Transaction: c.cfg.Transaction,
	}
	for i, obj := range objects {
		payload.Requests[i] = batchOperation{
			Method: http.MethodPost,
			Path:   path,
			Body:   obj.Fields,
		}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.batchURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.DoBuffered(ctx, req)
	if err != nil {
		return nil, err
	}

	if !resp.IsSuccess() {
		var apiErr APIError
		if json.Unmarshal(resp.Body, &apiErr) == nil && apiErr.Message != "" {
			return nil, &apiErr
		}
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(resp.Body))
	}

	var items []batchItemResult
	if err := json.Unmarshal(resp.Body, &items); err != nil {
		return nil, fmt.Errorf("failed to decode batch response: %w", err)
	}
	if len(items) != len(objects) {
		return nil, fmt.Errorf("batch response has %d entries for %d objects", len(items), len(objects))
	}

	out := make([]models.SaveResult, len(items))
	for i, item := range items {
		if item.Error != nil {
			return nil, fmt.Errorf("object %d: %w", i, item.Error)
		}
		if item.Success == nil {
			return nil, fmt.Errorf("object %d: empty batch entry", i)
		}
		out[i] = models.SaveResult{
			ObjectID:  item.Success.ObjectID,
			CreatedAt: item.Success.CreatedAt,
		}
	}
	return out, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Parse-Application-Id", c.cfg.AppID)
	if c.cfg.ClientKey != "" {
		req.Header.Set("X-Parse-JavaScript-Key", c.cfg.ClientKey)
	} else {
		req.Header.Set("X-Parse-REST-API-Key", c.cfg.RESTAPIKey)
	}
}
