package models

import "time"

// UserName is the name block of a random-user result.
type UserName struct {
	Title string `json:"title,omitempty"`
	First string `json:"first"`
	Last  string `json:"last"`
}

// RawUserRecord is one entry of the upstream "results" array. The legacy API
// nests the person under "user"; the current one puts "name" at the top level.
type RawUserRecord struct {
	User *struct {
		Name *UserName `json:"name,omitempty"`
	} `json:"user,omitempty"`
	Name *UserName `json:"name,omitempty"`
}

// PersonName returns the record's name block, preferring the legacy nesting.
func (r RawUserRecord) PersonName() (UserName, bool) {
	if r.User != nil && r.User.Name != nil {
		return *r.User.Name, true
	}
	if r.Name != nil {
		return *r.Name, true
	}
	return UserName{}, false
}

// FullName joins first and last with a single space.
func (n UserName) FullName() string {
	return n.First + " " + n.Last
}

// RandomUserResponse is the upstream response envelope.
type RandomUserResponse struct {
	Results []RawUserRecord `json:"results"`
	Info    *struct {
		Seed    string `json:"seed"`
		Results int    `json:"results"`
		Page    int    `json:"page"`
		Version string `json:"version"`
	} `json:"info,omitempty"`
}

// ObjectFields is the payload persisted for every object.
type ObjectFields struct {
	Name string `json:"name"`
}

// OutputObject is a class-tagged record ready for a batch save.
type OutputObject struct {
	ClassName string       `json:"className"`
	Fields    ObjectFields `json:"fields"`
}

// SaveResult is what a store reports for one saved object.
type SaveResult struct {
	ObjectID  string    `json:"objectId"`
	CreatedAt time.Time `json:"createdAt"`
}

// Run statuses.
const (
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// RunSummary describes one seeding run.
type RunSummary struct {
	RunID          string        `json:"runId"`
	ClassName      string        `json:"className"`
	RequestedCount int           `json:"requestedCount"`
	FetchedCount   int           `json:"fetchedCount"`
	SavedCount     int           `json:"savedCount"`
	Backend        string        `json:"backend"`
	Status         string        `json:"status"`
	Error          string        `json:"error,omitempty"`
	StartedAt      time.Time     `json:"startedAt"`
	Duration       time.Duration `json:"duration"`
}
