// Package smoke drives a running roster service over HTTP and checks the
// behaviour clients depend on: distinct ids under concurrent creates,
// round trips, partial updates, upserts, idempotent deletes and the
// error contract.
package smoke

import (
	"errors"
	"time"
)

// ErrPropertyViolated is wrapped by every failed check.
var ErrPropertyViolated = errors.New("property violated")

// Config holds configuration for a smoke run.
type Config struct {
	BaseURL    string        // Base URL of the service
	NumMembers int           // Members created concurrently
	Workers    int           // Number of concurrent workers
	Timeout    time.Duration // HTTP request timeout
	Verbose    bool          // Log every check
	KeepData   bool          // Leave created members in place
}

// memberInput is the write payload sent for create and replace.
type memberInput struct {
	Position string `json:"position"`
	Name     string `json:"name"`
	Hometown string `json:"hometown"`
	Year     string `json:"year"`
	Major    string `json:"major"`
	Bio      string `json:"bio"`
}

// member is a roster entry as returned by the service.
type member struct {
	ID int `json:"id"`
	memberInput
	Img string `json:"img,omitempty"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Stats holds run statistics.
type Stats struct {
	Requests       int64
	MembersCreated int
	CreateFailures int
	ChecksPassed   int
	MembersDeleted int
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
}
