// Package dupes detects DRY violations: methods whose normalized bodies are
// within a given edit distance of a method seen earlier in the run.
package dupes

import (
	"github.com/cespare/xxhash/v2"
	"github.com/panbanda/dryscan/pkg/models"
)

// Record is one stored method body.
type Record struct {
	QualifiedName string
	TypeName      string
	Body          string
	Hash          uint64
	Location      models.Location
}

// NewRecord builds a record for a normalized method body.
func NewRecord(m models.Method, normalized string) Record {
	return Record{
		QualifiedName: m.QualifiedName(),
		TypeName:      m.Owner,
		Body:          normalized,
		Hash:          xxhash.Sum64String(normalized),
		Location:      models.Location{File: m.File, Line: m.Line},
	}
}

// Store maps qualified method names to their most recent record. Iteration
// follows first-insertion order; overwriting a name keeps its position.
//
// A Store is owned by one caller and is not safe for concurrent use.
type Store struct {
	index   map[string]int
	records []Record
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{index: make(map[string]int)}
}

// Put inserts r, replacing any record with the same qualified name. It
// reports whether an existing record was replaced.
func (s *Store) Put(r Record) bool {
	if i, ok := s.index[r.QualifiedName]; ok {
		s.records[i] = r
		return true
	}
	s.index[r.QualifiedName] = len(s.records)
	s.records = append(s.records, r)
	return false
}

// Get returns the record stored under name.
func (s *Store) Get(name string) (Record, bool) {
	i, ok := s.index[name]
	if !ok {
		return Record{}, false
	}
	return s.records[i], true
}

// Len returns the number of distinct qualified names stored.
func (s *Store) Len() int {
	return len(s.records)
}

// Each calls fn for every record in iteration order until fn returns false.
func (s *Store) Each(fn func(Record) bool) {
	for _, r := range s.records {
		if !fn(r) {
			return
		}
	}
}
