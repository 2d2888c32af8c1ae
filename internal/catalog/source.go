// Package catalog loads the sharded JSON datasets and keeps the current
// snapshot of every collection in memory.
package catalog

import (
	"errors"
	"fmt"

	"flaromlab/models"
)

// ErrNoData is returned when an entity has no usable source at all.
var ErrNoData = errors.New("catalog: no data available")

// SourceRef locates one shard of an entity's dataset. Required shards log
// their failures as warnings.
type SourceRef struct {
	Entity   models.Entity `json:"entity" yaml:"-"`
	Path     string        `json:"path" yaml:"path"`
	Required bool          `json:"required" yaml:"required"`
}

// SourceError records a shard that could not be fetched or decoded.
type SourceError struct {
	Source SourceRef
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s source %s: %v", e.Source.Entity, e.Source.Path, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// MarshalText lets failed sources render in JSON status payloads.
func (e *SourceError) MarshalText() ([]byte, error) { return []byte(e.Error()), nil }

// Status describes how an entity's last load went.
type Status struct {
	Sources     int            `json:"sources"`
	Loaded      int            `json:"loaded"`
	Records     int            `json:"records"`
	Failed      []*SourceError `json:"failed,omitempty"`
	Unavailable bool           `json:"unavailable"`
	Reason      string         `json:"reason,omitempty"`
}

// Err returns ErrNoData wrapped with the reason when the entity is unavailable.
func (s Status) Err() error {
	if !s.Unavailable {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrNoData, s.Reason)
}
