package scanner

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/panbanda/dryscan/internal/vcs"
	"github.com/panbanda/dryscan/pkg/config"
	"github.com/panbanda/dryscan/pkg/parser"
)

type failingOpener struct{ err error }

func (o failingOpener) PlainOpen(string) (vcs.Repository, error)           { return nil, o.err }
func (o failingOpener) PlainOpenWithDetect(string) (vcs.Repository, error) { return nil, o.err }

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func TestNew(t *testing.T) {
	svc := New()
	if svc == nil || svc.config == nil || svc.opener == nil {
		t.Fatal("New() returned nil or has nil config/opener")
	}
}

func TestNewWithConfig(t *testing.T) {
	cfg := &config.Config{}
	svc := New(WithConfig(cfg))
	if svc.config != cfg {
		t.Error("WithConfig did not set config")
	}
}

func TestNewWithOpener(t *testing.T) {
	opener := failingOpener{err: errors.New("boom")}
	svc := New(WithOpener(opener))
	if svc.opener != opener {
		t.Error("WithOpener did not set opener")
	}
}

func TestScanPaths_InvalidPath(t *testing.T) {
	svc := New()
	_, err := svc.ScanPaths([]string{"/nonexistent/path/that/does/not/exist"})
	var pathErr *PathError
	if !errors.As(err, &pathErr) {
		t.Fatalf("expected *PathError, got %v", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Error("PathError should wrap os.ErrNotExist")
	}
}

func TestScanPaths_ValidDir(t *testing.T) {
	tmpDir := t.TempDir()
	csFile := filepath.Join(tmpDir, "Order.cs")
	writeFile(t, csFile, "class Order {}\n")
	writeFile(t, filepath.Join(tmpDir, "notes.txt"), "text\n")

	svc := New()
	result, err := svc.ScanPaths([]string{tmpDir})
	if err != nil {
		t.Fatalf("ScanPaths() error = %v", err)
	}
	if len(result.Files) != 1 {
		t.Fatalf("expected 1 file, got %v", result.Files)
	}
	if result.Files[0] != csFile {
		t.Errorf("expected %s, got %s", csFile, result.Files[0])
	}
	content, err := result.Source.Read(result.Files[0])
	if err != nil || string(content) != "class Order {}\n" {
		t.Errorf("Source.Read() = %q, %v", content, err)
	}
}

func TestScanPaths_SingleFile(t *testing.T) {
	tmpDir := t.TempDir()
	javaFile := filepath.Join(tmpDir, "App.java")
	writeFile(t, javaFile, "class App {}\n")
	designer := filepath.Join(tmpDir, "Form.Designer.cs")
	writeFile(t, designer, "partial class Form {}\n")

	svc := New()
	result, err := svc.ScanPaths([]string{javaFile, designer, javaFile})
	if err != nil {
		t.Fatalf("ScanPaths() error = %v", err)
	}
	if len(result.Files) != 1 || result.Files[0] != javaFile {
		t.Errorf("expected [%s], got %v", javaFile, result.Files)
	}
}

func TestScanPaths_LanguageGroups(t *testing.T) {
	tmpDir := t.TempDir()
	writeFile(t, filepath.Join(tmpDir, "A.cs"), "class A {}\n")
	writeFile(t, filepath.Join(tmpDir, "B.java"), "class B {}\n")
	writeFile(t, filepath.Join(tmpDir, "C.cs"), "class C {}\n")

	svc := New()
	result, err := svc.ScanPaths([]string{tmpDir})
	if err != nil {
		t.Fatalf("ScanPaths() error = %v", err)
	}

	if len(result.Files) != 3 {
		t.Errorf("expected 3 files, got %d", len(result.Files))
	}
	if got := len(result.LanguageGroups[parser.LangCSharp]); got != 2 {
		t.Errorf("expected 2 C# files, got %d", got)
	}
	if got := len(result.LanguageGroups[parser.LangJava]); got != 1 {
		t.Errorf("expected 1 Java file, got %d", got)
	}
}

func TestScanPaths_MultiplePaths(t *testing.T) {
	tmpDir1 := t.TempDir()
	tmpDir2 := t.TempDir()
	writeFile(t, filepath.Join(tmpDir1, "One.cs"), "class One {}\n")
	writeFile(t, filepath.Join(tmpDir2, "Two.cs"), "class Two {}\n")

	svc := New()
	result, err := svc.ScanPaths([]string{tmpDir1, tmpDir2, tmpDir1})
	if err != nil {
		t.Fatalf("ScanPaths() error = %v", err)
	}
	if len(result.Files) != 2 {
		t.Fatalf("expected 2 files, got %v", result.Files)
	}
	if filepath.Base(result.Files[0]) != "One.cs" || filepath.Base(result.Files[1]) != "Two.cs" {
		t.Errorf("files not in argument order: %v", result.Files)
	}
}

func TestPathError(t *testing.T) {
	err := &PathError{Path: "/foo", Err: os.ErrNotExist}
	expected := "invalid path /foo: file does not exist"
	if err.Error() != expected {
		t.Errorf("got %q, want %q", err.Error(), expected)
	}
	if err.Unwrap() != os.ErrNotExist {
		t.Error("Unwrap returned wrong error")
	}
}

func TestScanError(t *testing.T) {
	err := &ScanError{Path: "/foo", Err: os.ErrPermission}
	expected := "failed to scan /foo: permission denied"
	if err.Error() != expected {
		t.Errorf("got %q, want %q", err.Error(), expected)
	}
	if err.Unwrap() != os.ErrPermission {
		t.Error("Unwrap returned wrong error")
	}
}

func TestGitError(t *testing.T) {
	err := &GitError{Err: os.ErrNotExist}
	if err.Error() == "" {
		t.Error("expected non-empty error message")
	}
	if err.Unwrap() != os.ErrNotExist {
		t.Error("Unwrap returned wrong error")
	}
}

func TestRefError(t *testing.T) {
	err := &RefError{Ref: "v9", Err: vcs.ErrRefNotFound}
	if err.Error() != "cannot read revision v9: revision not found" {
		t.Errorf("got %q", err.Error())
	}
	if !errors.Is(err, vcs.ErrRefNotFound) {
		t.Error("RefError should wrap ErrRefNotFound")
	}
}

// createTestGitRepo creates a repository with one commit of files and
// returns its path.
func createTestGitRepo(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatal(err)
	}
	w, err := repo.Worktree()
	if err != nil {
		t.Fatal(err)
	}
	for name, content := range files {
		writeFile(t, filepath.Join(dir, name), content)
		if _, err := w.Add(name); err != nil {
			t.Fatal(err)
		}
	}
	_, err = w.Commit("initial", &git.CommitOptions{
		Author: &object.Signature{Name: "Test", Email: "test@example.com", When: time.Now()},
	})
	if err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestScanRef(t *testing.T) {
	repoPath := createTestGitRepo(t, map[string]string{
		"src/Order.cs":         "class Order {}\n",
		"src/bin/Gen.cs":       "class Gen {}\n",
		"src/Form.Designer.cs": "partial class Form {}\n",
		"lib/Util.java":        "class Util {}\n",
		"README.md":            "# repo\n",
	})
	// Uncommitted changes are not visible at a revision.
	writeFile(t, filepath.Join(repoPath, "src", "Draft.cs"), "class Draft {}\n")

	svc := New()
	result, err := svc.ScanRef(repoPath, "HEAD")
	if err != nil {
		t.Fatalf("ScanRef() error = %v", err)
	}
	want := []string{"lib/Util.java", "src/Order.cs"}
	if len(result.Files) != len(want) || result.Files[0] != want[0] || result.Files[1] != want[1] {
		t.Fatalf("ScanRef() files = %v, want %v", result.Files, want)
	}
	if result.Ref != "HEAD" || result.RepoRoot == "" {
		t.Errorf("ScanRef() ref=%q root=%q", result.Ref, result.RepoRoot)
	}
	content, err := result.Source.Read("src/Order.cs")
	if err != nil || string(content) != "class Order {}\n" {
		t.Errorf("Source.Read() = %q, %v", content, err)
	}

	scoped, err := svc.ScanRef(filepath.Join(repoPath, "lib"), "")
	if err != nil {
		t.Fatalf("ScanRef(lib) error = %v", err)
	}
	if len(scoped.Files) != 1 || scoped.Files[0] != "lib/Util.java" {
		t.Errorf("ScanRef(lib) files = %v", scoped.Files)
	}
}

func TestScanRef_Errors(t *testing.T) {
	repoPath := createTestGitRepo(t, map[string]string{"A.cs": "class A {}\n"})
	svc := New()

	_, err := svc.ScanRef(repoPath, "no-such-branch")
	var refErr *RefError
	if !errors.As(err, &refErr) || !errors.Is(err, vcs.ErrRefNotFound) {
		t.Errorf("expected RefError wrapping ErrRefNotFound, got %v", err)
	}

	_, err = New(WithOpener(failingOpener{err: errors.New("no repo")})).ScanRef(repoPath, "HEAD")
	var gitErr *GitError
	if !errors.As(err, &gitErr) {
		t.Errorf("expected *GitError, got %v", err)
	}

	_, err = svc.ScanRef(filepath.Join(repoPath, "missing"), "HEAD")
	var pathErr *PathError
	if !errors.As(err, &pathErr) {
		t.Errorf("expected *PathError, got %v", err)
	}
}

func TestScopePrefix(t *testing.T) {
	root := t.TempDir()
	sub := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}
	if got := scopePrefix(root, root); got != "" {
		t.Errorf("scopePrefix(root) = %q", got)
	}
	if got := scopePrefix(root, sub); got != "a/b/" {
		t.Errorf("scopePrefix(sub) = %q", got)
	}
	if got := scopePrefix(sub, root); got != "" {
		t.Errorf("scopePrefix(outside) = %q", got)
	}
}
