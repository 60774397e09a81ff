package harness

import (
	"os"
	"path/filepath"
	"testing"
)

func TestResolveScenarios_ExplicitFiles(t *testing.T) {
	got, err := ResolveScenarios([]string{"a.xml", "b.xml"}, "")
	if err != nil {
		t.Fatalf("ResolveScenarios: %v", err)
	}
	if len(got) != 2 || got[0] != "a.xml" || got[1] != "b.xml" {
		t.Errorf("ResolveScenarios = %v", got)
	}
}

func TestResolveScenarios_DirectoryGlob(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"one.xml", "two.xml", "notes.txt"} {
		if err := os.WriteFile(filepath.Join(dir, name), nil, 0o644); err != nil {
			t.Fatal(err)
		}
	}

	got, err := ResolveScenarios(nil, dir)
	if err != nil {
		t.Fatalf("ResolveScenarios: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("ResolveScenarios = %v, want the two xml files", got)
	}
	for _, s := range got {
		if filepath.Ext(s) != ".xml" {
			t.Errorf("non-xml scenario %q", s)
		}
	}
}

func TestResolveScenarios_Errors(t *testing.T) {
	if _, err := ResolveScenarios([]string{"a.xml"}, "/some/dir"); err == nil {
		t.Error("want error when both files and dir are given")
	}
	if _, err := ResolveScenarios(nil, ""); err == nil {
		t.Error("want error when neither files nor dir are given")
	}
	if _, err := ResolveScenarios(nil, t.TempDir()); err == nil {
		t.Error("want error for a directory with no xml scenarios")
	}
}
