// Package fileproc provides concurrent file processing utilities.
package fileproc

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/panbanda/dryscan/pkg/analyzer"
	"github.com/panbanda/dryscan/pkg/parser"
	"github.com/sourcegraph/conc/pool"
)

// ErrFileTooLarge marks files skipped because they exceed the size limit.
var ErrFileTooLarge = errors.New("file exceeds size limit")

// ProcessingError represents an error that occurred while processing a file.
type ProcessingError struct {
	Path string
	Err  error
}

func (e ProcessingError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e ProcessingError) Unwrap() error {
	return e.Err
}

// ProcessingErrors collects multiple file processing errors.
type ProcessingErrors struct {
	Errors []ProcessingError
	mu     sync.Mutex
}

// Add appends an error to the collection (thread-safe).
func (e *ProcessingErrors) Add(path string, err error) {
	e.mu.Lock()
	e.Errors = append(e.Errors, ProcessingError{Path: path, Err: err})
	e.mu.Unlock()
}

// HasErrors returns true if any errors were collected.
func (e *ProcessingErrors) HasErrors() bool {
	if e == nil {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Errors) > 0
}

// Len returns the number of collected errors.
func (e *ProcessingErrors) Len() int {
	if e == nil {
		return 0
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.Errors)
}

// Error implements the error interface.
func (e *ProcessingErrors) Error() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	msgs := make([]string, len(e.Errors))
	for i, pe := range e.Errors {
		msgs[i] = pe.Error()
	}
	return fmt.Sprintf("%d files failed: %s", len(e.Errors), strings.Join(msgs, "; "))
}

// sorted orders errors by path so reports do not depend on scheduling.
func (e *ProcessingErrors) sorted() *ProcessingErrors {
	if !e.HasErrors() {
		return nil
	}
	sort.SliceStable(e.Errors, func(i, j int) bool { return e.Errors[i].Path < e.Errors[j].Path })
	return e
}

// DefaultWorkerMultiplier is multiplied by NumCPU for the default pool size.
const DefaultWorkerMultiplier = 2

// DefaultWorkers returns the default pool size.
func DefaultWorkers() int {
	return runtime.NumCPU() * DefaultWorkerMultiplier
}

// MapFilesIndexed processes files in parallel, calling fn for each file with a
// dedicated parser. results[i] belongs to files[i]; a failed file leaves the
// zero value in its slot and an entry in the returned errors, which is nil
// when every file succeeded.
// Progress is tracked via context using analyzer.WithTracker.
func MapFilesIndexed[T any](ctx context.Context, files []string, fn func(*parser.Parser, string) (T, error)) ([]T, *ProcessingErrors) {
	return MapFilesIndexedN(ctx, files, 0, fn)
}

// MapFilesIndexedN is MapFilesIndexed with a worker count. If maxWorkers is
// <= 0, DefaultWorkers is used.
func MapFilesIndexedN[T any](ctx context.Context, files []string, maxWorkers int, fn func(*parser.Parser, string) (T, error)) ([]T, *ProcessingErrors) {
	return ForEachFileIndexedN(ctx, files, maxWorkers, func(path string) (T, error) {
		psr := parser.New()
		defer psr.Close()
		return fn(psr, path)
	})
}

// ForEachFileIndexedN processes files in parallel without a parser, with the
// same ordering and error contract as MapFilesIndexed.
func ForEachFileIndexedN[T any](ctx context.Context, files []string, maxWorkers int, fn func(string) (T, error)) ([]T, *ProcessingErrors) {
	if len(files) == 0 {
		return nil, nil
	}
	if maxWorkers <= 0 {
		maxWorkers = DefaultWorkers()
	}

	tracker := analyzer.TrackerFromContext(ctx)
	if tracker != nil {
		tracker.Add(len(files))
	}

	results := make([]T, len(files))
	errs := &ProcessingErrors{}

	p := pool.New().WithMaxGoroutines(maxWorkers).WithContext(ctx)
	for i, path := range files {
		p.Go(func(ctx context.Context) error {
			defer func() {
				if tracker != nil {
					tracker.Tick(path)
				}
			}()

			// Check for cancellation
			if err := ctx.Err(); err != nil {
				errs.Add(path, err)
				return nil
			}

			result, err := fn(path)
			if err != nil {
				errs.Add(path, err)
				return nil
			}
			results[i] = result
			return nil
		})
	}
	_ = p.Wait()

	return results, errs.sorted()
}
