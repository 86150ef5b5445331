// Package models defines data structures shared by the parser, store, and API.
package models

import (
	"encoding/json"
	"sort"
)

// MangaIDKey is the JSON key carrying the series identifier in a record.
const MangaIDKey = "mangaId"

// Transform names how a matched selection becomes a field value.
type Transform string

const (
	TransformText     Transform = "text"
	TransformAttr     Transform = "attr"
	TransformHTML     Transform = "html"
	TransformList     Transform = "list"
	TransformAttrList Transform = "attr_list"
)

// IsList reports whether the transform yields a []string value.
func (t Transform) IsList() bool {
	return t == TransformList || t == TransformAttrList
}

// FieldSpec is one named extraction rule.
type FieldSpec struct {
	Name      string    `yaml:"name" json:"name"`
	Selector  string    `yaml:"selector" json:"selector"`
	Transform Transform `yaml:"transform" json:"transform"`
	Attr      string    `yaml:"attr,omitempty" json:"attr,omitempty"`
	Pattern   string    `yaml:"pattern,omitempty" json:"pattern,omitempty"`
}

// SeriesRecord maps field names to extracted values for one series.
// Scalar values are strings; list values are []string.
type SeriesRecord struct {
	MangaID string
	Fields  map[string]any
	// Complete is true when every configured field was parsed together.
	Complete bool
}

// NewSeriesRecord returns an empty record for mangaID.
func NewSeriesRecord(mangaID string) SeriesRecord {
	return SeriesRecord{MangaID: mangaID, Fields: make(map[string]any)}
}

// Value returns the stored value for field.
func (r SeriesRecord) Value(field string) (any, bool) {
	v, ok := r.Fields[field]
	return v, ok
}

// FieldNames returns the record's field names in sorted order.
func (r SeriesRecord) FieldNames() []string {
	names := make([]string, 0, len(r.Fields))
	for name := range r.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns a deep copy so callers cannot mutate cached state.
func (r SeriesRecord) Clone() SeriesRecord {
	out := SeriesRecord{
		MangaID:  r.MangaID,
		Fields:   make(map[string]any, len(r.Fields)),
		Complete: r.Complete,
	}
	for k, v := range r.Fields {
		out.Fields[k] = CloneValue(v)
	}
	return out
}

// MarshalJSON renders the record as a flat object: {"mangaId": ..., "<field>": ...}.
func (r SeriesRecord) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(r.Fields)+1)
	for k, v := range r.Fields {
		flat[k] = v
	}
	flat[MangaIDKey] = r.MangaID
	return json.Marshal(flat)
}

// CloneValue copies list values; strings are returned as is.
func CloneValue(v any) any {
	if list, ok := v.([]string); ok {
		out := make([]string, len(list))
		copy(out, list)
		return out
	}
	return v
}
