package blob_test

import (
	"sort"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

// Backends are reached through blob.Open; nothing outside internal/blob and
// the backends themselves may import them.
func TestBackendsStayBehindBlob(t *testing.T) {
	const backends = "psibridge/internal/infra/blob"

	cfg := &packages.Config{Mode: packages.NeedName | packages.NeedImports, Tests: true}
	pkgs, err := packages.Load(cfg, "psibridge/...")
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}

	var violations []string
	for _, pkg := range pkgs {
		if withinTree(pkg.PkgPath, "psibridge/internal/blob") || withinTree(pkg.PkgPath, backends) {
			continue
		}
		for importPath := range pkg.Imports {
			if withinTree(importPath, backends) {
				violations = append(violations, pkg.PkgPath+": "+importPath)
			}
		}
	}
	sort.Strings(violations)
	for _, v := range violations {
		t.Errorf("direct import of blob backend: %s", v)
	}
}

func withinTree(path, root string) bool {
	return path == root || strings.HasPrefix(path, root+"/") || strings.HasPrefix(path, root+"_test")
}
