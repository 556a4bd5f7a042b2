// Package org defines the organization record: one node reported by one source
// directory, and the key that identifies it across the whole merge run.
package org

import (
	"fmt"
	"maps"
	"strings"

	"github.com/agentstation/orgmap/pkg/errors"
)

// ReservedAttributePrefix marks attribute keys the merge engine writes itself.
// Source records may not use it.
const ReservedAttributePrefix = "orgmap:"

// ValidateSourceID rejects ids that would make "source:id" node ids or
// "attr__source" attribute columns ambiguous.
func ValidateSourceID(id string) error {
	switch {
	case strings.TrimSpace(id) == "":
		return errors.NewValidationError("source_id", id, "cannot be empty")
	case strings.ContainsAny(id, ":#"):
		return errors.NewValidationError("source_id", id, "cannot contain ':' or '#'")
	case strings.Contains(id, "__"), strings.HasPrefix(id, "_"):
		return errors.NewValidationError("source_id", id, "cannot contain '__' or start with '_'")
	}
	return nil
}

// Key identifies a node globally as (source id, local id).
type Key struct {
	Source string `json:"source" yaml:"source"`
	ID     string `json:"id" yaml:"id"`
}

// String renders the key as "source:id".
func (k Key) String() string {
	return k.Source + ":" + k.ID
}

// Compare orders keys by source, then local id.
func (k Key) Compare(other Key) int {
	if c := strings.Compare(k.Source, other.Source); c != 0 {
		return c
	}
	return strings.Compare(k.ID, other.ID)
}

// Less reports whether k sorts before other.
func (k Key) Less(other Key) bool {
	return k.Compare(other) < 0
}

// Record is one organization as reported by one source.
// ParentID is empty for top-level entries.
type Record struct {
	SourceID   string         `json:"source_id,omitempty" yaml:"source_id,omitempty"`
	LocalID    string         `json:"local_id" yaml:"local_id"`
	Name       string         `json:"name" yaml:"name"`
	ParentID   string         `json:"parent_local_id,omitempty" yaml:"parent_local_id,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// Key returns the record's global key.
func (r Record) Key() Key {
	return Key{Source: r.SourceID, ID: r.LocalID}
}

// HasParent reports whether the record names a parent.
func (r Record) HasParent() bool {
	return r.ParentID != ""
}

// Clone returns a copy that shares no attribute storage with r.
func (r Record) Clone() Record {
	out := r
	if r.Attributes != nil {
		out.Attributes = maps.Clone(r.Attributes)
	}
	return out
}

// Validate checks the record in isolation.
func (r Record) Validate() error {
	if r.LocalID == "" {
		return errors.NewValidationError("local_id", r.LocalID, "cannot be empty")
	}
	for k, v := range r.Attributes {
		if k == "" {
			return errors.NewValidationError("attributes", r.LocalID, "attribute key cannot be empty")
		}
		if strings.HasPrefix(k, ReservedAttributePrefix) {
			return errors.NewValidationError("attributes."+k, v, "keys starting with "+ReservedAttributePrefix+" are reserved")
		}
		if !IsScalar(v) {
			return errors.NewValidationError("attributes."+k, v, fmt.Sprintf("value of type %T is not a scalar", v))
		}
	}
	return nil
}

// IsScalar reports whether v is an attribute value the engine can carry.
func IsScalar(v any) bool {
	switch v.(type) {
	case nil, string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return true
	default:
		return false
	}
}
