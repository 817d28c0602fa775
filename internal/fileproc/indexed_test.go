package fileproc

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/panbanda/dryscan/pkg/analyzer"
	"github.com/panbanda/dryscan/pkg/parser"
	"github.com/panbanda/dryscan/pkg/source"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestFile(t testing.TB, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to create test file %s: %v", name, err)
	}
	return path
}

// TestMapFilesIndexed verifies that indexed result collection preserves order.
func TestMapFilesIndexed(t *testing.T) {
	tmpDir := t.TempDir()

	files := make([]string, 100)
	for i := 0; i < 100; i++ {
		files[i] = createTestFile(t, tmpDir, fmt.Sprintf("File%d.cs", i), "class A { }")
	}

	results, errs := MapFilesIndexed(context.Background(), files, func(p *parser.Parser, path string) (string, error) {
		return filepath.Base(path), nil
	})

	assert.Nil(t, errs)
	require.Len(t, results, len(files))
	for i, r := range results {
		assert.Equal(t, fmt.Sprintf("File%d.cs", i), r)
	}
}

// TestMapFilesIndexed_WithErrors verifies error handling preserves valid results
func TestMapFilesIndexed_WithErrors(t *testing.T) {
	tmpDir := t.TempDir()

	files := []string{
		createTestFile(t, tmpDir, "File0.cs", "class A { }"),
		createTestFile(t, tmpDir, "File1.cs", "class B { }"),
		createTestFile(t, tmpDir, "File2.cs", "class C { }"),
	}

	results, errs := MapFilesIndexed(context.Background(), files, func(p *parser.Parser, path string) (string, error) {
		if filepath.Base(path) == "File1.cs" {
			return "", fmt.Errorf("simulated error")
		}
		return filepath.Base(path), nil
	})

	require.Len(t, results, len(files))
	assert.Equal(t, "File0.cs", results[0])
	assert.Empty(t, results[1], "failed slot keeps the zero value")
	assert.Equal(t, "File2.cs", results[2])

	require.NotNil(t, errs)
	require.Equal(t, 1, errs.Len())
	assert.Equal(t, files[1], errs.Errors[0].Path)
	assert.Contains(t, errs.Error(), "simulated error")
}

func TestMapFilesIndexed_ParsesWithDedicatedParser(t *testing.T) {
	tmpDir := t.TempDir()
	files := []string{
		createTestFile(t, tmpDir, "A.cs", "class A { void Run() { } }"),
		createTestFile(t, tmpDir, "B.java", "class B { void run() { } }"),
	}

	units, errs := MapFilesIndexedN(context.Background(), files, 2, func(p *parser.Parser, path string) (string, error) {
		content, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		result, err := p.Parse(content, parser.DetectLanguage(path), path)
		if err != nil {
			return "", err
		}
		u := parser.ExtractUnit(result)
		return u.Methods[0].QualifiedName(), nil
	})

	assert.Nil(t, errs)
	assert.Equal(t, []string{"A.Run", "B.run"}, units)
}

func TestMapFilesIndexed_Empty(t *testing.T) {
	results, errs := MapFilesIndexed(context.Background(), nil, func(p *parser.Parser, path string) (int, error) {
		return 1, nil
	})
	assert.Nil(t, results)
	assert.Nil(t, errs)
}

func TestMapFilesIndexed_Cancelled(t *testing.T) {
	tmpDir := t.TempDir()
	files := []string{
		createTestFile(t, tmpDir, "A.cs", ""),
		createTestFile(t, tmpDir, "B.cs", ""),
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, errs := MapFilesIndexed(ctx, files, func(p *parser.Parser, path string) (int, error) {
		return 1, nil
	})
	require.NotNil(t, errs)
	assert.Equal(t, 2, errs.Len())
	assert.ErrorIs(t, errs.Errors[0], context.Canceled)
}

func TestMapFilesIndexed_TracksProgress(t *testing.T) {
	tmpDir := t.TempDir()
	files := []string{
		createTestFile(t, tmpDir, "A.cs", ""),
		createTestFile(t, tmpDir, "B.cs", ""),
		createTestFile(t, tmpDir, "C.cs", ""),
	}

	var mu sync.Mutex
	var seen []string
	tracker := analyzer.NewTracker(func(current, total int, path string) {
		mu.Lock()
		seen = append(seen, path)
		mu.Unlock()
	})
	ctx := analyzer.WithTracker(context.Background(), tracker)

	_, _ = MapFilesIndexed(ctx, files, func(p *parser.Parser, path string) (int, error) {
		if filepath.Base(path) == "B.cs" {
			return 0, errors.New("boom")
		}
		return 1, nil
	})

	assert.Equal(t, 3, tracker.Total())
	assert.Equal(t, 3, tracker.Current(), "failed files still tick")
	assert.ElementsMatch(t, files, seen)
}

// TestForEachFileIndexed verifies indexed collection for non-parser operations
func TestForEachFileIndexed(t *testing.T) {
	files := make([]string, 50)
	for i := range files {
		files[i] = fmt.Sprintf("test%d.txt", i)
	}

	results, errs := ForEachFileIndexedN(context.Background(), files, 0, func(path string) (int, error) {
		var idx int
		_, err := fmt.Sscanf(path, "test%d.txt", &idx)
		return idx, err
	})

	assert.Nil(t, errs)
	for i, r := range results {
		assert.Equal(t, i, r)
	}
}

type mapSource map[string]string

func (m mapSource) Read(path string) ([]byte, error) {
	content, ok := m[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return []byte(content), nil
}

var _ source.ContentSource = mapSource(nil)

func TestMapSourceFiles(t *testing.T) {
	src := mapSource{
		"a/A.cs":   "class A { }",
		"b/Big.cs": "class Big { void Run() { } }",
		"c/C.cs":   "class C { }",
	}
	files := []string{"c/C.cs", "missing.cs", "b/Big.cs", "a/A.cs"}

	names, errs := MapSourceFiles(context.Background(), files, src, SourceOptions{MaxSize: 16},
		func(p *parser.Parser, path string, content []byte) (string, error) {
			result, err := p.Parse(content, parser.DetectLanguage(path), path)
			if err != nil {
				return "", err
			}
			return parser.ExtractUnit(result).Types[0].Name, nil
		})

	assert.Equal(t, []string{"C", "A"}, names, "input order, skipped files removed")

	require.NotNil(t, errs)
	require.Equal(t, 2, errs.Len())
	assert.Equal(t, "b/Big.cs", errs.Errors[0].Path)
	assert.ErrorIs(t, errs.Errors[0], ErrFileTooLarge)
	assert.Equal(t, "missing.cs", errs.Errors[1].Path)
	assert.ErrorIs(t, errs.Errors[1], os.ErrNotExist)
}

func TestMapSourceFiles_ProcessingErrors(t *testing.T) {
	src := mapSource{"A.cs": "x", "B.cs": "y"}

	out, errs := MapSourceFiles(context.Background(), []string{"A.cs", "B.cs"}, src, SourceOptions{},
		func(p *parser.Parser, path string, content []byte) (string, error) {
			if path == "A.cs" {
				return "", errors.New("bad")
			}
			return string(content), nil
		})

	assert.Equal(t, []string{"y"}, out)
	require.Equal(t, 1, errs.Len())
	assert.Equal(t, "A.cs", errs.Errors[0].Path)
}
