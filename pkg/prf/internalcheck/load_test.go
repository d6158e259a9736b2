package internalcheck

import (
	"testing"

	"golang.org/x/tools/go/packages"
)

// checkedPatterns are the packages whose non-test sources the policy tests
// inspect.
var checkedPatterns = []string{
	"github.com/coinbase/cb-prf-go/pkg/prf/...",
	"github.com/coinbase/cb-prf-go/internal/...",
}

func loadPackages(t *testing.T, mode packages.LoadMode) []*packages.Package {
	t.Helper()
	cfg := &packages.Config{Mode: mode}
	pkgs, err := packages.Load(cfg, checkedPatterns...)
	if err != nil {
		t.Fatalf("load packages: %v", err)
	}
	if packages.PrintErrors(pkgs) > 0 {
		t.Fatalf("packages contain errors")
	}
	if len(pkgs) == 0 {
		t.Fatalf("no packages matched %v", checkedPatterns)
	}
	return pkgs
}
