package psixml

import (
	"testing"

	"psibridge/testutil"
)

func TestPsiXMLImportsNoModelOrInternalPackages(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".",
		testutil.AnyOf(testutil.InternalImportForbidden, testutil.DomainImportForbidden),
		"the interchange model is independent of the curation model")
}
