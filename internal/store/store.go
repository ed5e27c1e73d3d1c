// Package store persists a batch of class-tagged objects. Every backend
// either saves the whole batch or reports an error and no results.
package store

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"contact-seeder/internal/models"
)

// Store is a batch-capable object store.
type Store interface {
	Name() string
	SaveAll(ctx context.Context, className string, objects []models.OutputObject) ([]models.SaveResult, error)
	Close() error
}

// newIDs is swapped in tests that need stable identifiers.
var newIDs = func(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = uuid.NewString()
	}
	return ids
}

var now = func() time.Time { return time.Now().UTC() }

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

func validateIdentifier(kind, name string) error {
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("invalid %s %q", kind, name)
	}
	return nil
}

// record is the flattened form written by the non-Parse backends.
type record struct {
	ID        string    `json:"id"`
	ClassName string    `json:"className"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func toRecords(className string, objects []models.OutputObject) []record {
	ids := newIDs(len(objects))
	ts := now()
	out := make([]record, len(objects))
	for i, obj := range objects {
		out[i] = record{
			ID:        ids[i],
			ClassName: className,
			Name:      obj.Fields.Name,
			CreatedAt: ts,
		}
	}
	return out
}

func toResults(recs []record) []models.SaveResult {
	out := make([]models.SaveResult, len(recs))
	for i, r := range recs {
		out[i] = models.SaveResult{ObjectID: r.ID, CreatedAt: r.CreatedAt}
	}
	return out
}

func lowerClass(className string) string {
	return strings.ToLower(className)
}
