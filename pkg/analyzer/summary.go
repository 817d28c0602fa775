package analyzer

import (
	"github.com/RoaringBitmap/roaring/v2"
	"github.com/panbanda/dryscan/pkg/models"
	"github.com/panbanda/dryscan/pkg/stats"
)

// Summary provides aggregate statistics.
type Summary struct {
	TypePairs      int `json:"type_pairs" yaml:"type_pairs" toon:"type_pairs"`
	DRYPairs       int `json:"dry_pairs" yaml:"dry_pairs" toon:"dry_pairs"`
	ExactPairs     int `json:"exact_pairs" yaml:"exact_pairs" toon:"exact_pairs"`
	FlaggedTypes   int `json:"flagged_types" yaml:"flagged_types" toon:"flagged_types"`
	FlaggedMethods int `json:"flagged_methods" yaml:"flagged_methods" toon:"flagged_methods"`
	// FlaggedFiles counts files holding an entity flagged by either pass;
	// FilesFlaggedByBoth those holding entities flagged by both.
	FlaggedFiles       int     `json:"flagged_files" yaml:"flagged_files" toon:"flagged_files"`
	FilesFlaggedByBoth int     `json:"files_flagged_by_both" yaml:"files_flagged_by_both" toon:"files_flagged_by_both"`
	MeanDistance       float64 `json:"mean_distance" yaml:"mean_distance" toon:"mean_distance"`
	P50Distance        float64 `json:"p50_distance" yaml:"p50_distance" toon:"p50_distance"`
	P95Distance        float64 `json:"p95_distance" yaml:"p95_distance" toon:"p95_distance"`
	TypesAnalyzed      int     `json:"types_analyzed" yaml:"types_analyzed" toon:"types_analyzed"`
	MethodsAnalyzed    int     `json:"methods_analyzed" yaml:"methods_analyzed" toon:"methods_analyzed"`
	UnitsWithErrors    int     `json:"units_with_errors,omitempty" yaml:"units_with_errors,omitempty" toon:"units_with_errors,omitempty"`
	FilesScanned       int     `json:"files_scanned" yaml:"files_scanned" toon:"files_scanned"`
	ParseErrors        int     `json:"parse_errors,omitempty" yaml:"parse_errors,omitempty" toon:"parse_errors,omitempty"`
}

type entityKey struct {
	name string
	file string
	line uint32
}

// fileSets interns file paths to dense ids and records, per pass, which
// files hold a flagged entity.
type fileSets struct {
	ids     map[string]uint32
	types   *roaring.Bitmap
	methods *roaring.Bitmap
}

func newFileSets() *fileSets {
	return &fileSets{ids: make(map[string]uint32), types: roaring.New(), methods: roaring.New()}
}

func (s *fileSets) id(file string) uint32 {
	id, ok := s.ids[file]
	if !ok {
		id = uint32(len(s.ids))
		s.ids[file] = id
	}
	return id
}

func (s *fileSets) add(pass *roaring.Bitmap, loc models.Location) {
	if loc.File != "" {
		pass.Add(s.id(loc.File))
	}
}

// Summarize computes aggregate statistics over both finding lists. Counters
// that depend on the input (types analyzed, files scanned) are left zero.
func Summarize(types, methods []models.Finding) Summary {
	s := Summary{
		TypePairs: len(types),
		DRYPairs:  len(methods),
	}

	flaggedTypes := make(map[entityKey]struct{})
	flaggedMethods := make(map[entityKey]struct{})
	files := newFileSets()
	distances := make([]int, 0, len(types)+len(methods))

	for _, f := range types {
		flaggedTypes[entityKey{f.NameA, f.LocationA.File, f.LocationA.Line}] = struct{}{}
		flaggedTypes[entityKey{f.NameB, f.LocationB.File, f.LocationB.Line}] = struct{}{}
		files.add(files.types, f.LocationA)
		files.add(files.types, f.LocationB)
		distances = append(distances, f.Distance)
		if f.Exact {
			s.ExactPairs++
		}
	}
	for _, f := range methods {
		flaggedMethods[entityKey{f.NameA, f.LocationA.File, f.LocationA.Line}] = struct{}{}
		flaggedMethods[entityKey{f.NameB, f.LocationB.File, f.LocationB.Line}] = struct{}{}
		files.add(files.methods, f.LocationA)
		files.add(files.methods, f.LocationB)
		distances = append(distances, f.Distance)
		if f.Exact {
			s.ExactPairs++
		}
	}

	s.FlaggedTypes = len(flaggedTypes)
	s.FlaggedMethods = len(flaggedMethods)
	s.FlaggedFiles = int(roaring.Or(files.types, files.methods).GetCardinality())
	s.FilesFlaggedByBoth = int(roaring.And(files.types, files.methods).GetCardinality())

	if len(distances) > 0 {
		sorted := stats.SortedFloats(distances)
		s.MeanDistance = stats.Mean(sorted)
		s.P50Distance = stats.Percentile(sorted, 50)
		s.P95Distance = stats.Percentile(sorted, 95)
	}
	return s
}
