package parse

import (
	"fmt"
	"time"
)

// Config holds what the client needs to talk to a Parse Server. It replaces
// the SDK's process-wide initialize call.
type Config struct {
	ServerURL  string
	MountPath  string // derived from ServerURL when empty
	AppID      string
	ClientKey  string
	RESTAPIKey string
	BatchSize  int
	// Transaction asks Parse Server to run each batch request in a database transaction.
	Transaction bool
}

// MaxBatchSize is the server-side cap on requests per batch call.
const MaxBatchSize = 50

// DefaultBatchSize matches the JavaScript SDK's saveAll chunking.
const DefaultBatchSize = 20

type batchRequest struct {
	Requests    []batchOperation `json:"requests"`
	Transaction bool             `json:"transaction,omitempty"`
}

type batchOperation struct {
	Method string      `json:"method"`
	Path   string      `json:"path"`
	Body   interface{} `json:"body"`
}

type batchItemResult struct {
	Success *struct {
		ObjectID  string    `json:"objectId"`
		CreatedAt time.Time `json:"createdAt"`
	} `json:"success,omitempty"`
	Error *APIError `json:"error,omitempty"`
}

// APIError is the error body Parse returns, both per batch item and for whole requests.
type APIError struct {
	Code    int    `json:"code"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("parse error %d: %s", e.Code, e.Message)
}
