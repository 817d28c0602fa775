// Package vcs provides version control system abstractions.
package vcs

import "errors"

// ErrRefNotFound is returned when a revision cannot be resolved.
var ErrRefNotFound = errors.New("revision not found")

// Repository provides access to git repository operations.
type Repository interface {
	// Tree returns the file tree of the commit a revision (branch, tag,
	// hash, HEAD~n, ...) resolves to.
	Tree(rev string) (Tree, error)
	// RepoPath returns the root path of the repository worktree.
	RepoPath() string
}

// TreeEntry represents a file in a git tree.
type TreeEntry struct {
	Path string
	Size int64
}

// Tree represents a git tree object.
type Tree interface {
	// File returns the contents of the file at path, relative to the root.
	File(path string) ([]byte, error)
	// Entries returns all files in the tree (recursively), sorted by path.
	Entries() ([]TreeEntry, error)
}

// Opener opens git repositories.
type Opener interface {
	// PlainOpen opens an existing git repository.
	PlainOpen(path string) (Repository, error)
	// PlainOpenWithDetect opens a git repository, detecting .git in parent directories.
	PlainOpenWithDetect(path string) (Repository, error)
}
