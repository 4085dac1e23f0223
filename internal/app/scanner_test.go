package app

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/LordOfPolls/BlackDwarf/internal/config"
	"github.com/LordOfPolls/BlackDwarf/internal/errors"
)

func TestScanTargetAppliesExcludes(t *testing.T) {
	root := t.TempDir()
	keep := writeFile(t, root, "keep.py", "x = 1\n")
	writeFile(t, root, ".venv/lib.py", "x = 1\n")
	writeFile(t, root, "__pycache__/cached.py", "x = 1\n")
	writeFile(t, root, "notes.txt", "not python\n")
	writeFile(t, root, "gen_skip.py", "x = 1\n")

	cfg := config.Default()
	cfg.Exclude.Files = []string{"*_skip.py"}
	a, err := New(cfg, root, Options{NoFormat: true})
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close()

	files, err := a.ScanTarget()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(files, []string{keep}) {
		t.Errorf("ScanTarget = %v, want [%s]", files, keep)
	}
}

func TestScanTargetDeepestFirst(t *testing.T) {
	root := t.TempDir()
	a1 := writeFile(t, root, "a.py", "x = 1\n")
	b1 := writeFile(t, root, "b.py", "x = 1\n")
	b2 := writeFile(t, root, "pkg/b.py", "x = 1\n")
	c3 := writeFile(t, root, "pkg/sub/c.py", "x = 1\n")

	a := newTestApp(t, root, Options{})
	files, err := a.ScanTarget()
	if err != nil {
		t.Fatal(err)
	}

	want := []string{c3, b2, a1, b1}
	if !reflect.DeepEqual(files, want) {
		t.Errorf("ScanTarget order = %v, want %v", files, want)
	}
}

func TestScanTargetSingleFile(t *testing.T) {
	root := t.TempDir()
	target := writeFile(t, root, "only.py", "x = 1\n")

	a := newTestApp(t, target, Options{})
	files, err := a.ScanTarget()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(files, []string{target}) {
		t.Errorf("ScanTarget = %v, want [%s]", files, target)
	}
}

func TestNewRejectsMissingTarget(t *testing.T) {
	_, err := New(config.Default(), filepath.Join(t.TempDir(), "missing.py"), Options{})
	if err == nil {
		t.Fatal("Expected an error for a missing target")
	}
	if !errors.IsCode(err, errors.CodeValidationError) {
		t.Errorf("Error = %v, want validation error", err)
	}
}

func TestNewRejectsNonPythonFile(t *testing.T) {
	root := t.TempDir()
	target := writeFile(t, root, "notes.txt", "not python\n")

	_, err := New(config.Default(), target, Options{})
	if err == nil {
		t.Fatal("Expected an error for a non-Python file target")
	}
	if !errors.IsCode(err, errors.CodeValidationError) {
		t.Errorf("Error = %v, want validation error", err)
	}
}
