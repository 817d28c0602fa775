package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/panbanda/dryscan/pkg/config"
	"github.com/panbanda/dryscan/pkg/parser"
)

// Scanner finds C# and Java source files in a directory.
type Scanner struct {
	config *config.Config

	// excludes match paths relative to the scan root; gitignores match
	// paths relative to gitRoot.
	excludes   gitignore.Matcher
	gitignores gitignore.Matcher
	gitRoot    string
}

// NewScanner creates a new file scanner.
func NewScanner(cfg *config.Config) *Scanner {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Scanner{config: cfg}
}

// findGitRoot finds the root of the git repository by looking for .git.
// Returns empty string if not in a git repository.
func findGitRoot(start string) string {
	dir := start
	for {
		if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadExcludePatterns compiles the config exclusions (gitignore syntax; dirs
// match a directory of that name at any depth) and, when enabled, every
// .gitignore of the enclosing repository.
func (s *Scanner) loadExcludePatterns(root string) {
	var patterns []gitignore.Pattern
	for _, pattern := range s.config.Exclude.Patterns {
		patterns = append(patterns, gitignore.ParsePattern(pattern, nil))
	}
	for _, dir := range s.config.Exclude.Dirs {
		patterns = append(patterns, gitignore.ParsePattern(strings.TrimSuffix(dir, "/")+"/", nil))
	}
	s.excludes = gitignore.NewMatcher(patterns)

	s.gitignores, s.gitRoot = nil, ""
	if !s.config.Exclude.Gitignore {
		return
	}
	gitRoot := findGitRoot(root)
	if gitRoot == "" {
		return
	}
	// ReadPatterns recursively reads all .gitignore files below the root
	gitPatterns, err := gitignore.ReadPatterns(osfs.New(gitRoot), nil)
	if err != nil || len(gitPatterns) == 0 {
		return
	}
	s.gitignores = gitignore.NewMatcher(gitPatterns)
	s.gitRoot = gitRoot
}

// isExcluded checks if a path (absolute, below root) matches any exclusion.
func (s *Scanner) isExcluded(root, path string, isDir bool) bool {
	if rel, err := filepath.Rel(root, path); err == nil && rel != "." {
		if s.excludes != nil && s.excludes.Match(splitPath(rel), isDir) {
			return true
		}
	}
	if s.gitignores != nil {
		if rel, err := filepath.Rel(s.gitRoot, path); err == nil && rel != "." && !strings.HasPrefix(rel, "..") {
			return s.gitignores.Match(splitPath(rel), isDir)
		}
	}
	return false
}

func splitPath(rel string) []string {
	return strings.Split(filepath.ToSlash(rel), "/")
}

// ScanDir recursively scans a directory for source files, in lexical order.
// Validates that all paths stay within the root directory to prevent
// symlink traversal.
func (s *Scanner) ScanDir(root string) ([]string, error) {
	files := make([]string, 0, 256)

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	// Resolve any symlinks in the root path
	realRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, err
	}

	s.loadExcludePatterns(absRoot)

	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}

		if d.Type()&fs.ModeSymlink != 0 {
			resolved, err := filepath.EvalSymlinks(path)
			if err != nil || !isWithinRoot(resolved, realRoot) {
				return nil
			}
		}

		if d.IsDir() {
			if path != absRoot && s.isExcluded(absRoot, path, true) {
				return filepath.SkipDir
			}
			return nil
		}

		if !parser.IsSupported(path) || s.isExcluded(absRoot, path, false) {
			return nil
		}
		files = append(files, path)
		return nil
	})

	return files, walkErr
}

// isWithinRoot checks if a path is contained within the root directory.
// Returns false if the path escapes via symlinks or relative paths.
func isWithinRoot(path, root string) bool {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return false
	}

	absPath = filepath.Clean(absPath)
	root = filepath.Clean(root)

	// Add separator to prevent "/root2" matching "/root"
	return absPath == root || strings.HasPrefix(absPath, root+string(filepath.Separator))
}

// ScanFile checks if a single file should be analyzed.
func (s *Scanner) ScanFile(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		return false, err
	}
	if info.IsDir() || !parser.IsSupported(path) {
		return false, nil
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return false, err
	}
	dir := filepath.Dir(absPath)
	s.loadExcludePatterns(dir)

	return !s.isExcluded(dir, absPath, false), nil
}

// Keep reports whether a slash-separated, root-relative path (as found in a
// git tree) would be scanned. .gitignore files are not consulted; tracked
// files are analyzed regardless.
func (s *Scanner) Keep(rel string) bool {
	if !parser.IsSupported(rel) {
		return false
	}
	if s.excludes == nil {
		s.loadExcludePatterns("")
	}
	parts := strings.Split(rel, "/")
	for i := 1; i < len(parts); i++ {
		if s.excludes.Match(parts[:i], true) {
			return false
		}
	}
	return !s.excludes.Match(parts, false)
}
