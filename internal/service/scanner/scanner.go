package scanner

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/panbanda/dryscan/internal/scanner"
	"github.com/panbanda/dryscan/internal/vcs"
	"github.com/panbanda/dryscan/pkg/config"
	"github.com/panbanda/dryscan/pkg/parser"
	"github.com/panbanda/dryscan/pkg/source"
)

// ScanResult contains the result of a file scan.
type ScanResult struct {
	Files          []string
	LanguageGroups map[parser.Language][]string
	RepoRoot       string
	// Ref is the revision the files were listed from; empty for the working tree.
	Ref string
	// Source reads the content of Files.
	Source source.ContentSource
}

// Service provides file scanning functionality.
type Service struct {
	config *config.Config
	opener vcs.Opener
}

// Option configures a Service.
type Option func(*Service)

// WithConfig sets the configuration.
func WithConfig(cfg *config.Config) Option {
	return func(s *Service) {
		s.config = cfg
	}
}

// WithOpener sets the VCS opener (for testing).
func WithOpener(opener vcs.Opener) Option {
	return func(s *Service) {
		s.opener = opener
	}
}

// New creates a new scanner service.
func New(opts ...Option) *Service {
	s := &Service{
		config: config.DefaultConfig(),
		opener: vcs.DefaultOpener(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ScanPaths scans files and directories in the working tree. Directories
// are walked in lexical order; files named explicitly are kept when their
// language is supported and no exclusion matches. A path that does not exist
// is an error. Each file appears once, in first-seen order.
func (s *Service) ScanPaths(paths []string) (*ScanResult, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}

	scan := scanner.NewScanner(s.config)
	cwd, _ := os.Getwd()
	seen := make(map[string]bool)
	var files []string

	for _, path := range paths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return nil, &PathError{Path: path, Err: err}
		}
		info, err := os.Stat(absPath)
		if err != nil {
			return nil, &PathError{Path: path, Err: err}
		}

		var found []string
		if info.IsDir() {
			found, err = scan.ScanDir(absPath)
			if err != nil {
				return nil, &ScanError{Path: path, Err: err}
			}
		} else {
			ok, err := scan.ScanFile(absPath)
			if err != nil {
				return nil, &ScanError{Path: path, Err: err}
			}
			if ok {
				found = []string{absPath}
			}
		}

		for _, f := range found {
			if seen[f] {
				continue
			}
			seen[f] = true
			files = append(files, displayPath(cwd, f))
		}
	}

	return &ScanResult{
		Files:          files,
		LanguageGroups: groupByLanguage(files),
		Source:         source.NewFilesystem(),
	}, nil
}

// ScanRef lists the files of a git revision below path. The returned paths
// are relative to the repository root and must be read through the result's
// Source.
func (s *Service) ScanRef(path, ref string) (*ScanResult, error) {
	if path == "" {
		path = "."
	}
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, &PathError{Path: path, Err: err}
	}
	if _, err := os.Stat(absPath); err != nil {
		return nil, &PathError{Path: path, Err: err}
	}

	repo, err := s.opener.PlainOpenWithDetect(absPath)
	if err != nil {
		return nil, &GitError{Err: err}
	}
	tree, err := repo.Tree(ref)
	if err != nil {
		return nil, &RefError{Ref: ref, Err: err}
	}

	prefix := scopePrefix(repo.RepoPath(), absPath)
	scan := scanner.NewScanner(s.config)
	src := source.NewTree(tree)
	files, err := src.Paths(func(p string) bool {
		return strings.HasPrefix(p, prefix) && scan.Keep(p)
	})
	if err != nil {
		return nil, &ScanError{Path: path, Err: err}
	}

	return &ScanResult{
		Files:          files,
		LanguageGroups: groupByLanguage(files),
		RepoRoot:       repo.RepoPath(),
		Ref:            ref,
		Source:         src,
	}, nil
}

// scopePrefix returns the slash-separated prefix (with trailing slash) of dir
// inside repoRoot, or "" when dir is the root or lies outside it.
func scopePrefix(repoRoot, dir string) string {
	if real, err := filepath.EvalSymlinks(repoRoot); err == nil {
		repoRoot = real
	}
	if real, err := filepath.EvalSymlinks(dir); err == nil {
		dir = real
	}
	rel, err := filepath.Rel(repoRoot, dir)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return ""
	}
	return filepath.ToSlash(rel) + "/"
}

// displayPath shortens path to be relative to the working directory when it
// lies below it.
func displayPath(cwd, path string) string {
	if cwd == "" {
		return path
	}
	rel, err := filepath.Rel(cwd, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}
	return rel
}

func groupByLanguage(files []string) map[parser.Language][]string {
	groups := make(map[parser.Language][]string)
	for _, f := range files {
		lang := parser.DetectLanguage(f)
		groups[lang] = append(groups[lang], f)
	}
	return groups
}

// PathError indicates an invalid path.
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return "invalid path " + e.Path + ": " + e.Err.Error()
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// ScanError indicates a scanning failure.
type ScanError struct {
	Path string
	Err  error
}

func (e *ScanError) Error() string {
	return "failed to scan " + e.Path + ": " + e.Err.Error()
}

func (e *ScanError) Unwrap() error {
	return e.Err
}

// GitError indicates the path is not a git repository.
type GitError struct {
	Err error
}

func (e *GitError) Error() string {
	return "not a git repository (or any parent): " + e.Err.Error()
}

func (e *GitError) Unwrap() error {
	return e.Err
}

// RefError indicates a revision that could not be read.
type RefError struct {
	Ref string
	Err error
}

func (e *RefError) Error() string {
	return "cannot read revision " + e.Ref + ": " + e.Err.Error()
}

func (e *RefError) Unwrap() error {
	return e.Err
}
