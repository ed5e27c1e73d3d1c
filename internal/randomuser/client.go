// Package randomuser fetches fake person records from the randomuser.me API.
package randomuser

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/xeipuuv/gojsonschema"

	"contact-seeder/internal/common/errors"
	httpclient "contact-seeder/internal/common/http"
	"contact-seeder/internal/common/logger"
	"contact-seeder/internal/models"
)

const serviceName = "randomuser"

// Options tune the upstream query beyond the result count.
type Options struct {
	Seed        string
	Nationality string
}

type Client struct {
	baseURL    string
	opts       Options
	httpClient *httpclient.Client
	logger     logger.Logger
}

func NewClient(baseURL string, opts Options, hc *httpclient.Client, log logger.Logger) *Client {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		opts:       opts,
		httpClient: hc,
		logger:     log,
	}
}

// URL returns the request URL for count results.
func (c *Client) URL(count int) string {
	q := url.Values{}
	q.Set("results", strconv.Itoa(count))
	if c.opts.Seed != "" {
		q.Set("seed", c.opts.Seed)
	}
	if c.opts.Nationality != "" {
		q.Set("nat", c.opts.Nationality)
	}
	return fmt.Sprintf("%s/api/?%s", c.baseURL, q.Encode())
}

// Fetch issues a single GET and returns the decoded results. The body is read
// in full before decoding. There is no retry.
func (c *Client) Fetch(ctx context.Context, count int) ([]models.RawUserRecord, error) {
	reqURL := c.URL(count)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, errors.NewUpstreamRequestError(serviceName, fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("Fetching random users", map[string]interface{}{
		"url":   reqURL,
		"count": count,
	})

	resp, err := c.httpClient.DoBuffered(ctx, req)
	if err != nil {
		return nil, errors.NewUpstreamRequestError(serviceName, err)
	}
	if !resp.IsSuccess() {
		return nil, errors.NewUpstreamRequestError(serviceName,
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(string(resp.Body), 200))).
			WithMetadata("status", resp.StatusCode)
	}

	return decode(resp.Body)
}

func decode(body []byte) ([]models.RawUserRecord, error) {
	result, err := gojsonschema.Validate(responseSchemaLoader, gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, errors.NewUpstreamResponseError(serviceName, fmt.Errorf("failed to parse response: %w", err))
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, errors.NewUpstreamResponseError(serviceName,
			fmt.Errorf("response does not match schema: %s", strings.Join(msgs, "; ")))
	}

	var payload models.RandomUserResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, errors.NewUpstreamResponseError(serviceName, fmt.Errorf("failed to decode response: %w", err))
	}
	return payload.Results, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
