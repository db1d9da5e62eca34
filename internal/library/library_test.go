package library

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	lib, err := Load("", "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(lib.Premises()) == 0 || len(lib.Modules()) == 0 {
		t.Fatalf("expected built-in content")
	}
	if _, ok := lib.Module("CL-0"); !ok {
		t.Fatalf("expected CL-0 in defaults")
	}
	if _, ok := lib.Premise("D1.1"); !ok {
		t.Fatalf("expected D1.1 in defaults")
	}
}

func TestPremisesOrderedByID(t *testing.T) {
	lib, err := Load("", "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	prems := lib.Premises()
	for i := 1; i < len(prems); i++ {
		if prems[i-1].ID >= prems[i].ID {
			t.Fatalf("premises not ordered: %s before %s", prems[i-1].ID, prems[i].ID)
		}
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "premises.yaml")
	body := `
premises:
  - id: D9.1
    title: Test premise
    content: Overlay content.
    keywords: [alpha, beta]
    weight: 0.5
  - id: D1.1
    title: Replaced premise
    content: Overridden.
    keywords: [power]
    weight: 0.4
`
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	lib, err := Load(path, "")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if _, ok := lib.Premise("D9.1"); !ok {
		t.Fatalf("expected overlay premise")
	}
	p, _ := lib.Premise("D1.1")
	if p.Title != "Replaced premise" {
		t.Fatalf("expected overlay to replace built-in premise")
	}
}

func TestLoadRejectsMissingID(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "modules.yaml")
	if err := os.WriteFile(path, []byte("modules:\n  - name: no id\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load("", path); err == nil {
		t.Fatalf("expected error for module without id")
	}
}
