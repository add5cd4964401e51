package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type recordingFatal struct{ msg string }

func (r *recordingFatal) Fatalf(format string, args ...any) { r.msg = fmt.Sprintf(format, args...) }

func writeGo(t *testing.T, dir, name, src string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestDirectImportViolations(t *testing.T) {
	dir := t.TempDir()
	writeGo(t, dir, "model.go", "package model\n\nimport (\n\t\"fmt\"\n\t\"psibridge/internal/core\"\n)\n\nvar _ = fmt.Sprint\nvar _ core.Logger\n")
	writeGo(t, dir, "model_test.go", "package model\n\nimport \"psibridge/internal/blob\"\n\nvar _ blob.Store\n")
	writeGo(t, dir, "notes.txt", "import \"psibridge/internal/x\"")
	if err := os.Mkdir(filepath.Join(dir, "sub"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	viols, err := directImportViolations(dir, InternalImportForbidden)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(viols) != 1 || viols[0] != "psibridge/internal/core (in model.go)" {
		t.Fatalf("unexpected violations %v", viols)
	}

	if _, err := directImportViolations(filepath.Join(dir, "missing"), InternalImportForbidden); err == nil {
		t.Fatalf("expected error for missing dir")
	}
	writeGo(t, dir, "broken.go", "package model\nimport (")
	if _, err := directImportViolations(dir, InternalImportForbidden); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestFailIfDirectViolations(t *testing.T) {
	rec := &recordingFatal{}
	failIfDirectViolations(rec, "reason", nil)
	if rec.msg != "" {
		t.Fatalf("unexpected failure %q", rec.msg)
	}
	failIfDirectViolations(rec, "keep models pure", []string{"a (in x.go)"})
	if !strings.Contains(rec.msg, "keep models pure") || !strings.Contains(rec.msg, "a (in x.go)") {
		t.Fatalf("unexpected message %q", rec.msg)
	}
}

func TestPredicates(t *testing.T) {
	forbidden := AnyOf(DomainImportForbidden, PsiXMLImportForbidden)
	cases := map[string]bool{
		"psibridge/pkg/domain":    true,
		"psibridge/pkg/psixml":    true,
		"psibridge/internal/core": false,
		"encoding/xml":            false,
	}
	for path, want := range cases {
		if got := forbidden(path); got != want {
			t.Fatalf("%s: got %v want %v", path, got, want)
		}
	}
	if !InternalImportForbidden("psibridge/internal/core") || InternalImportForbidden("psibridge/pkg/domain") {
		t.Fatalf("internal predicate mismatch")
	}
}
