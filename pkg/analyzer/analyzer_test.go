package analyzer

import (
	"testing"

	"github.com/panbanda/dryscan/pkg/analyzer/dupes"
	"github.com/panbanda/dryscan/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func typeWithMethod(file, name, method, body string) (models.TypeDecl, models.Method) {
	decl := models.TypeDecl{
		Name:      name,
		Kind:      "class",
		File:      file,
		StartLine: 1,
		Members:   []models.Member{{Kind: models.MemberMethod, Name: method, Body: body, Line: 2}},
	}
	m := models.Method{Name: method, Owner: name, Body: body, File: file, Line: 2}
	return decl, m
}

func singleTypeUnit(file, name, method, body string) models.SourceUnit {
	decl, m := typeWithMethod(file, name, method, body)
	return models.SourceUnit{Path: file, Language: "csharp", Types: []models.TypeDecl{decl}, Methods: []models.Method{m}}
}

func TestAnalyze_TwoTypesWithSameEmptyMethod(t *testing.T) {
	units := []models.SourceUnit{
		singleTypeUnit("a.cs", "First", "MethodA", "{ }"),
		singleTypeUnit("b.cs", "Second", "MethodA", "{ }"),
	}

	result := Analyze(units, 0, 0)

	require.Len(t, result.SimilarTypes, 1)
	assert.Equal(t, "First", result.SimilarTypes[0].NameA)
	assert.Equal(t, "Second", result.SimilarTypes[0].NameB)
	assert.Zero(t, result.SimilarTypes[0].Distance)

	require.Len(t, result.DRYViolations, 1)
	assert.Equal(t, "Second.MethodA", result.DRYViolations[0].NameA)
	assert.Equal(t, "First.MethodA", result.DRYViolations[0].NameB)
}

func TestAnalyze_LoopBodiesAcrossFiles(t *testing.T) {
	units := []models.SourceUnit{
		singleTypeUnit("a.cs", "Counter", "Count", "{\n  for (int i = 0; i < n; i++) { total++; } // sum\n}"),
		singleTypeUnit("b.cs", "Tally", "Add", "{ for (int i = 0; i < n; i++) { total++; } /* block */ }"),
	}

	result := Analyze(units, -1, 0)

	assert.Empty(t, result.SimilarTypes)
	require.Len(t, result.DRYViolations, 1)
	assert.Equal(t, "Tally.Add", result.DRYViolations[0].NameA)
	assert.Equal(t, "Counter.Count", result.DRYViolations[0].NameB)
	assert.True(t, result.DRYViolations[0].Exact)
}

func TestAnalyze_EmptyInput(t *testing.T) {
	result := Analyze(nil, DefaultTypeThreshold, DefaultDRYThreshold)

	assert.NotNil(t, result.SimilarTypes)
	assert.NotNil(t, result.DRYViolations)
	assert.True(t, result.Empty())
	assert.Equal(t, Summary{}, result.Summary)
}

func TestAnalyze_PassesCanBeDisabled(t *testing.T) {
	units := []models.SourceUnit{
		singleTypeUnit("a.cs", "First", "MethodA", "{ }"),
		singleTypeUnit("b.cs", "Second", "MethodA", "{ }"),
	}

	onlyTypes := Analyze(units, 0, 0, WithMethods(false))
	assert.Len(t, onlyTypes.SimilarTypes, 1)
	assert.Empty(t, onlyTypes.DRYViolations)

	onlyMethods := Analyze(units, 0, 0, WithTypes(false))
	assert.Empty(t, onlyMethods.SimilarTypes)
	assert.Len(t, onlyMethods.DRYViolations, 1)
	assert.Equal(t, 2, onlyMethods.Summary.TypesAnalyzed)
}

func TestAnalyze_MethodPassWalksUnitsNotTypes(t *testing.T) {
	// A free method has no type declaration but still takes part.
	free := models.SourceUnit{
		Path:    "free.cs",
		Methods: []models.Method{{Name: "Helper", Owner: models.UnknownType, Body: "{ }"}},
	}
	units := []models.SourceUnit{singleTypeUnit("a.cs", "First", "MethodA", "{ }"), free}

	result := Analyze(units, 0, 0)
	require.Len(t, result.DRYViolations, 1)
	assert.Equal(t, "UnknownType.Helper", result.DRYViolations[0].NameA)
}

func TestAnalyze_CallerOwnedStore(t *testing.T) {
	store := dupes.NewStore()
	units := []models.SourceUnit{singleTypeUnit("a.cs", "First", "MethodA", "{ }")}

	Analyze(units, 0, 0, WithStore(store))

	_, ok := store.Get("First.MethodA")
	assert.True(t, ok)
}

func TestAnalyze_SummaryCounts(t *testing.T) {
	units := []models.SourceUnit{
		singleTypeUnit("a.cs", "A", "Run", "{ }"),
		singleTypeUnit("b.cs", "B", "Run", "{ }"),
		singleTypeUnit("c.cs", "C", "Run", "{ }"),
	}
	units[2].HasErrors = true

	s := Analyze(units, 0, 0).Summary

	assert.Equal(t, 3, s.TypePairs)
	assert.Equal(t, 3, s.DRYPairs)
	assert.Equal(t, 6, s.ExactPairs)
	assert.Equal(t, 3, s.FlaggedTypes)
	assert.Equal(t, 3, s.FlaggedMethods)
	assert.Equal(t, 3, s.FlaggedFiles)
	assert.Equal(t, 3, s.FilesFlaggedByBoth)
	assert.Equal(t, 3, s.TypesAnalyzed)
	assert.Equal(t, 3, s.MethodsAnalyzed)
	assert.Equal(t, 1, s.UnitsWithErrors)
	assert.Zero(t, s.MeanDistance)
}

func TestSummarize_Distances(t *testing.T) {
	types := []models.Finding{
		{Kind: models.EntityType, NameA: "A", NameB: "B", Distance: 1},
		{Kind: models.EntityType, NameA: "A", NameB: "C", Distance: 3},
	}
	methods := []models.Finding{
		{Kind: models.EntityMethod, NameA: "B.x", NameB: "A.x", Distance: 0, Exact: true},
		{Kind: models.EntityMethod, NameA: "C.x", NameB: "A.x", Distance: 0, Exact: true},
	}

	s := Summarize(types, methods)

	assert.Equal(t, 2, s.TypePairs)
	assert.Equal(t, 2, s.DRYPairs)
	assert.Equal(t, 2, s.ExactPairs)
	assert.Equal(t, 3, s.FlaggedTypes)
	assert.Equal(t, 3, s.FlaggedMethods)
	assert.InDelta(t, 1.0, s.MeanDistance, 1e-9)
	assert.Equal(t, 0.0, s.P50Distance)
	assert.Equal(t, 3.0, s.P95Distance)
}

func TestSummarize_SameNameDifferentFiles(t *testing.T) {
	types := []models.Finding{{
		Kind: models.EntityType, NameA: "Dto", NameB: "Dto",
		LocationA: models.Location{File: "a.cs", Line: 1},
		LocationB: models.Location{File: "b.cs", Line: 1},
	}}
	assert.Equal(t, 2, Summarize(types, nil).FlaggedTypes)
}

func TestSummarize_FlaggedFiles(t *testing.T) {
	loc := func(file string, line uint32) models.Location { return models.Location{File: file, Line: line} }
	types := []models.Finding{
		{Kind: models.EntityType, NameA: "Order", NameB: "Invoice", LocationA: loc("a.cs", 1), LocationB: loc("b.cs", 1)},
	}
	methods := []models.Finding{
		{Kind: models.EntityMethod, NameA: "Invoice.Total", NameB: "Cart.Total", LocationA: loc("b.cs", 3), LocationB: loc("c.cs", 3)},
		{Kind: models.EntityMethod, NameA: "Cart.Sum", NameB: "Helper.Sum", LocationA: loc("c.cs", 9), LocationB: loc("d.cs", 2)},
	}

	s := Summarize(types, methods)

	assert.Equal(t, 4, s.FlaggedFiles)
	assert.Equal(t, 1, s.FilesFlaggedByBoth)
}

func TestSummarize_FlaggedFilesIgnoresMissingLocations(t *testing.T) {
	types := []models.Finding{{Kind: models.EntityType, NameA: "A", NameB: "B"}}
	methods := []models.Finding{{Kind: models.EntityMethod, NameA: "A.x", NameB: "B.x"}}

	s := Summarize(types, methods)

	assert.Zero(t, s.FlaggedFiles)
	assert.Zero(t, s.FilesFlaggedByBoth)
	assert.Equal(t, 2, s.FlaggedTypes)
}
