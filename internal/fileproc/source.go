package fileproc

import (
	"context"

	"github.com/panbanda/dryscan/pkg/parser"
	"github.com/panbanda/dryscan/pkg/source"
)

// SourceOptions tune MapSourceFiles.
type SourceOptions struct {
	MaxSize int64 // bytes; 0 disables the limit
	Workers int   // 0 uses DefaultWorkers
}

// fileWithContent holds a file path and its content.
type fileWithContent struct {
	path    string
	content []byte
}

// MapSourceFiles reads files from src and processes them in parallel with a
// dedicated parser per task. Results are returned in input order with
// failed and skipped files left out; every such file has an entry in the
// returned errors (ErrFileTooLarge for files over the size limit).
// Progress is tracked via context using analyzer.WithTracker.
func MapSourceFiles[T any](
	ctx context.Context,
	files []string,
	src source.ContentSource,
	opts SourceOptions,
	fn func(*parser.Parser, string, []byte) (T, error),
) ([]T, *ProcessingErrors) {
	if len(files) == 0 {
		return nil, nil
	}

	// Read all file content sequentially to avoid concurrent access to git trees
	errs := &ProcessingErrors{}
	loaded := make([]fileWithContent, 0, len(files))
	for _, path := range files {
		content, err := src.Read(path)
		if err != nil {
			errs.Add(path, err)
			continue
		}
		if opts.MaxSize > 0 && int64(len(content)) > opts.MaxSize {
			errs.Add(path, ErrFileTooLarge)
			continue
		}
		loaded = append(loaded, fileWithContent{path: path, content: content})
	}

	type outcome struct {
		value T
		ok    bool
	}
	byPath := make(map[string][]byte, len(loaded))
	paths := make([]string, len(loaded))
	for i, fc := range loaded {
		byPath[fc.path] = fc.content
		paths[i] = fc.path
	}

	outcomes, procErrs := MapFilesIndexedN(ctx, paths, opts.Workers, func(psr *parser.Parser, path string) (outcome, error) {
		v, err := fn(psr, path, byPath[path])
		if err != nil {
			return outcome{}, err
		}
		return outcome{value: v, ok: true}, nil
	})
	if procErrs != nil {
		for _, pe := range procErrs.Errors {
			errs.Add(pe.Path, pe.Err)
		}
	}

	results := make([]T, 0, len(outcomes))
	for _, o := range outcomes {
		if o.ok {
			results = append(results, o.value)
		}
	}
	return results, errs.sorted()
}
