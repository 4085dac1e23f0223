// # internal/resolver/resolver_test.go
package resolver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/LordOfPolls/BlackDwarf/internal/errors"
	"github.com/LordOfPolls/BlackDwarf/internal/parser"
)

func writeFile(t *testing.T, root, name, content string) string {
	t.Helper()
	path := filepath.Join(root, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func resolveTarget(t *testing.T, root, target string, opts Options) *ResolutionMap {
	t.Helper()
	p := parser.NewParser()
	file, err := p.ParseFile(target)
	if err != nil {
		t.Fatal(err)
	}
	m, err := NewResolver(p, NewLocator(root), opts).Resolve(file)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func diagnosticsOfKind(m *ResolutionMap, kind DiagnosticKind) []Diagnostic {
	var out []Diagnostic
	for _, d := range m.Diagnostics {
		if d.Kind == kind {
			out = append(out, d)
		}
	}
	return out
}

func TestDeclaredNarrowing(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "utils.py", `__all__ = ["helper", "unused_helper"]

def helper():
    pass

def unused_helper():
    pass
`)
	target := writeFile(t, root, "target.py", `from utils import *

print(helper())
`)

	m := resolveTarget(t, root, target, Options{Infer: true})
	if len(m.Resolutions) != 1 {
		t.Fatalf("Expected 1 resolution, got %d", len(m.Resolutions))
	}
	res := m.Resolutions[0]
	if res.Outcome != OutcomeReplace {
		t.Fatalf("Expected replace, got %v", res.Outcome)
	}
	if len(res.Names) != 1 || res.Names[0] != "helper" {
		t.Errorf("Expected exactly [helper], got %v", res.Names)
	}
	if !m.Changed() {
		t.Error("Expected Changed() to be true")
	}
}

func TestInferredNarrowing(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "utils.py", `def helper():
    pass

def spare():
    pass

_private = 1
`)
	target := writeFile(t, root, "target.py", `from utils import *

print(helper())
`)

	m := resolveTarget(t, root, target, Options{Infer: true})
	res := m.Resolutions[0]
	if res.Outcome != OutcomeReplace {
		t.Fatalf("Expected replace, got %v", res.Outcome)
	}
	if len(res.Names) != 1 || res.Names[0] != "helper" {
		t.Errorf("Expected exactly [helper], got %v", res.Names)
	}
	if res.Exports.Provenance != parser.ProvenanceInferred {
		t.Errorf("Expected inferred provenance, got %s", res.Exports.Provenance)
	}
}

func TestFirstDeclaredWins(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "first.py", `__all__ = ["shared", "first_only"]

def shared():
    pass

def first_only():
    pass
`)
	writeFile(t, root, "second.py", `__all__ = ["shared", "second_only"]

def shared():
    pass

def second_only():
    pass
`)
	target := writeFile(t, root, "target.py", `from first import *
from second import *

value = shared + second_only
`)

	m := resolveTarget(t, root, target, Options{Infer: true})
	if len(m.Resolutions) != 2 {
		t.Fatalf("Expected 2 resolutions, got %d", len(m.Resolutions))
	}
	if got := m.Resolutions[0].Names; len(got) != 1 || got[0] != "shared" {
		t.Errorf("First import should claim shared, got %v", got)
	}
	if got := m.Resolutions[1].Names; len(got) != 1 || got[0] != "second_only" {
		t.Errorf("Second import should only get second_only, got %v", got)
	}
	ambiguous := diagnosticsOfKind(m, DiagAmbiguousAttribution)
	if len(ambiguous) != 1 {
		t.Fatalf("Expected 1 ambiguity diagnostic, got %d", len(ambiguous))
	}
	if ambiguous[0].Name != "shared" || ambiguous[0].Module != "first" {
		t.Errorf("Ambiguity should name shared won by first, got %+v", ambiguous[0])
	}
}

func TestUnresolvedNameFreezesFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "utils.py", `__all__ = ["helper"]

def helper():
    pass
`)
	target := writeFile(t, root, "target.py", `from utils import *

result = helper(ghost)
`)

	m := resolveTarget(t, root, target, Options{Infer: true})
	if m.Resolutions[0].Outcome != OutcomeKeep {
		t.Error("Unresolved names must leave every wildcard unchanged")
	}
	if m.Changed() {
		t.Error("Expected no changes")
	}
	unresolved := diagnosticsOfKind(m, DiagUnresolvedName)
	if len(unresolved) != 1 || unresolved[0].Name != "ghost" {
		t.Fatalf("Expected unresolved ghost, got %v", unresolved)
	}
	if unresolved[0].Location.Line != 3 {
		t.Errorf("Expected ghost reported at line 3, got %d", unresolved[0].Location.Line)
	}
}

func TestInferredEmptyRemoved(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "utils.py", `def helper():
    pass
`)
	target := writeFile(t, root, "target.py", `from utils import *

value = 1
`)

	m := resolveTarget(t, root, target, Options{Infer: true})
	if m.Resolutions[0].Outcome != OutcomeRemove {
		t.Fatalf("Expected remove, got %v", m.Resolutions[0].Outcome)
	}
	if len(diagnosticsOfKind(m, DiagWildcardRemoved)) != 1 {
		t.Error("Expected a wildcard-removed diagnostic")
	}
}

func TestDeclaredEmptyKept(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "utils.py", `__all__ = ["helper"]

def helper():
    pass
`)
	target := writeFile(t, root, "target.py", `from utils import *

value = 1
`)

	m := resolveTarget(t, root, target, Options{Infer: true})
	if m.Resolutions[0].Outcome != OutcomeKeep {
		t.Fatalf("Expected keep, got %v", m.Resolutions[0].Outcome)
	}
	if len(diagnosticsOfKind(m, DiagWildcardKept)) != 1 {
		t.Error("Expected a wildcard-kept diagnostic")
	}
}

func TestInferenceDisabled(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "bare.py", `def helper():
    pass
`)
	writeFile(t, root, "listed.py", `__all__ = ["tool"]

def tool():
    pass
`)
	target := writeFile(t, root, "target.py", `from bare import *
from listed import *

run = helper(tool)
`)

	m := resolveTarget(t, root, target, Options{Infer: false})
	if m.Resolutions[0].Outcome != OutcomeKeep {
		t.Error("Module without __all__ must be kept when inference is off")
	}
	if m.Resolutions[1].Outcome != OutcomeReplace {
		t.Error("Module with __all__ should still narrow")
	}
	if got := m.Resolutions[1].Names; len(got) != 1 || got[0] != "tool" {
		t.Errorf("Expected [tool], got %v", got)
	}
	if len(diagnosticsOfKind(m, DiagIndeterminateExports)) != 1 {
		t.Error("Expected an indeterminate-exports diagnostic")
	}
	// helper is plausibly provided by the kept wildcard
	if len(diagnosticsOfKind(m, DiagUnresolvedName)) != 0 {
		t.Error("Names behind an unknown export set must not be flagged unresolved")
	}
}

func TestStdlibWildcardKept(t *testing.T) {
	root := t.TempDir()
	target := writeFile(t, root, "target.py", `from os.path import *

p = join("a", "b")
`)

	m := resolveTarget(t, root, target, Options{Infer: true})
	if m.Resolutions[0].Outcome != OutcomeKeep {
		t.Error("Stdlib wildcard must be kept")
	}
	diags := diagnosticsOfKind(m, DiagIndeterminateExports)
	if len(diags) != 1 || diags[0].Module != "os.path" {
		t.Fatalf("Expected indeterminate diagnostic for os.path, got %v", diags)
	}
	if len(diagnosticsOfKind(m, DiagUnresolvedName)) != 0 {
		t.Error("join must not be reported unresolved")
	}
}

func TestRelativeWildcard(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "pkg/__init__.py", "")
	writeFile(t, root, "pkg/base.py", `__all__ = ["shared_config"]

shared_config = {}
`)
	target := writeFile(t, root, "pkg/main.py", `from .base import *

cfg = shared_config
`)

	m := resolveTarget(t, root, target, Options{Infer: true})
	res := m.Resolutions[0]
	if res.Outcome != OutcomeReplace {
		t.Fatalf("Expected replace, got outcome %v diagnostics %v", res.Outcome, m.Diagnostics)
	}
	if len(res.Names) != 1 || res.Names[0] != "shared_config" {
		t.Errorf("Expected [shared_config], got %v", res.Names)
	}
	if res.Import.Module != ".base" {
		t.Errorf("Module should keep its relative dots, got %q", res.Import.Module)
	}
}

func TestPackageWildcard(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "pkg/__init__.py", `__all__ = ["entry"]

def entry():
    pass
`)
	target := writeFile(t, root, "target.py", `from pkg import *

entry()
`)

	m := resolveTarget(t, root, target, Options{Infer: true})
	if got := m.Resolutions[0].Names; len(got) != 1 || got[0] != "entry" {
		t.Fatalf("Expected [entry] via package __init__, got %v (diags %v)", got, m.Diagnostics)
	}
}

func TestDependentParseFailureIsFatal(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "bad.py", "def broken(:\n")
	target := writeFile(t, root, "target.py", `from bad import *

x = 1
`)

	p := parser.NewParser()
	file, err := p.ParseFile(target)
	if err != nil {
		t.Fatal(err)
	}
	_, err = NewResolver(p, NewLocator(root), Options{Infer: true}).Resolve(file)
	if err == nil {
		t.Fatal("Expected an error for unparseable dependency")
	}
	if !errors.IsCode(err, errors.CodeParseFailure) {
		t.Errorf("Expected PARSE_FAILURE, got %v", err)
	}
}

func TestCreateAllWrites(t *testing.T) {
	root := t.TempDir()
	inferred := writeFile(t, root, "inferred.py", `def helper():
    pass

def Omega():
    pass
`)
	writeFile(t, root, "declared.py", `__all__ = ["tool"]

def tool():
    pass
`)
	writeFile(t, root, "reexporter.py", `from declared import *

def local():
    pass
`)
	target := writeFile(t, root, "target.py", `from inferred import *
from declared import *
from reexporter import *

run = helper(tool, local)
`)

	p := parser.NewParser()
	file, err := p.ParseFile(target)
	if err != nil {
		t.Fatal(err)
	}
	r := NewResolver(p, NewLocator(root), Options{Infer: true, CreateAll: true})
	m, err := r.Resolve(file)
	if err != nil {
		t.Fatal(err)
	}

	if len(m.ExportWrites) != 1 {
		t.Fatalf("Expected 1 export write, got %d: %v", len(m.ExportWrites), m.ExportWrites)
	}
	write := m.ExportWrites[0]
	if write.Path != inferred {
		t.Errorf("Expected write for %s, got %s", inferred, write.Path)
	}
	want := []string{"helper", "Omega"}
	if len(write.Names) != len(want) {
		t.Fatalf("Expected %v, got %v", want, write.Names)
	}
	for i := range want {
		if write.Names[i] != want[i] {
			t.Errorf("Expected sorted %v, got %v", want, write.Names)
			break
		}
	}

	// A second file through the same resolver must not repeat the write.
	second := writeFile(t, root, "second.py", `from inferred import *

helper()
`)
	file2, err := p.ParseFile(second)
	if err != nil {
		t.Fatal(err)
	}
	m2, err := r.Resolve(file2)
	if err != nil {
		t.Fatal(err)
	}
	if len(m2.ExportWrites) != 0 {
		t.Errorf("Expected no repeat writes, got %v", m2.ExportWrites)
	}
}

func TestModuleFilter(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "colors.py", `__all__ = ["red", "blue"]

red = 1
blue = 2
`)
	writeFile(t, root, "shapes.py", `__all__ = ["circle"]

def circle():
    pass
`)
	target := writeFile(t, root, "target.py", `from colors import *
from shapes import *

figure = circle(red)
`)

	m := resolveTarget(t, root, target, Options{Infer: true, Module: "colors"})
	if m.Resolutions[0].Outcome != OutcomeReplace {
		t.Fatalf("Expected colors to narrow, got %v", m.Resolutions[0].Outcome)
	}
	if got := m.Resolutions[0].Names; len(got) != 1 || got[0] != "red" {
		t.Errorf("Expected [red], got %v", got)
	}
	if m.Resolutions[1].Outcome != OutcomeKeep {
		t.Error("Filtered-out module must be kept")
	}
	if m.Resolutions[1].Exports != nil {
		t.Error("Filtered-out module must not be loaded")
	}
	if len(m.Diagnostics) != 0 {
		t.Errorf("Filter must not produce diagnostics, got %v", m.Diagnostics)
	}
}

func TestModuleMatches(t *testing.T) {
	cases := []struct {
		module string
		filter string
		want   bool
	}{
		{"colors", "colors", true},
		{"pkg.colors", "colors", true},
		{".colors", "colors", true},
		{"..pkg.colors", "colors", true},
		{"pkg.colors", "pkg.colors", true},
		{"colorset", "colors", false},
		{"shapes", "colors", false},
	}
	for _, tc := range cases {
		if got := moduleMatches(tc.module, tc.filter); got != tc.want {
			t.Errorf("moduleMatches(%q, %q) = %v, want %v", tc.module, tc.filter, got, tc.want)
		}
	}
}

func TestLocateNotFound(t *testing.T) {
	root := t.TempDir()
	target := writeFile(t, root, "target.py", "x = 1\n")

	_, err := NewLocator(root).Locate(target, "vendor_sdk")
	if err == nil {
		t.Fatal("Expected an error for a missing module")
	}
	if !errors.IsCode(err, errors.CodeModuleNotFound) {
		t.Errorf("Expected MODULE_NOT_FOUND, got %v", err)
	}
}

func TestIsStdlib(t *testing.T) {
	for _, module := range []string{"os", "os.path", "urllib.request", "json"} {
		if !IsStdlib(module) {
			t.Errorf("Expected %s to be stdlib", module)
		}
	}
	for _, module := range []string{"requests", "numpy", ".local", "pkg.tools"} {
		if IsStdlib(module) {
			t.Errorf("Expected %s to not be stdlib", module)
		}
	}
}
