package domain

import (
	"testing"

	"psibridge/testutil"
)

func TestDomainImportsNoInterchangeOrInternalPackages(t *testing.T) {
	testutil.AssertNoDirectImports(t, ".",
		testutil.AnyOf(testutil.InternalImportForbidden, testutil.PsiXMLImportForbidden),
		"the curation model is independent of the interchange model")
}
