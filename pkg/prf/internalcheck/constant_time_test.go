package internalcheck

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"strings"
	"testing"

	"golang.org/x/tools/go/packages"
)

func TestNoDirectByteComparison(t *testing.T) {
	pkgs := loadPackages(t, packages.NeedSyntax|packages.NeedTypes|packages.NeedTypesInfo|packages.NeedFiles|packages.NeedName)

	var findings []string

	for _, pkg := range pkgs {
		for _, file := range pkg.Syntax {
			fset := pkg.Fset
			typesInfo := pkg.TypesInfo

			ast.Inspect(file, func(n ast.Node) bool {
				switch node := n.(type) {
				case *ast.BinaryExpr:
					if node.Op != token.EQL && node.Op != token.NEQ {
						return true
					}
					if isByteSlice(typesInfo.TypeOf(node.X)) && isByteSlice(typesInfo.TypeOf(node.Y)) {
						pos := fset.Position(node.Pos())
						findings = append(findings, fmt.Sprintf("%s: avoid == on byte slices; use crypto/subtle", pos))
					}
				case *ast.CallExpr:
					if isCallTo(typesInfo, node, "bytes", "Equal") || isCallTo(typesInfo, node, "bytes", "Compare") {
						pos := fset.Position(node.Pos())
						findings = append(findings, fmt.Sprintf("%s: bytes.Equal is not constant time; use crypto/subtle", pos))
					}
				}
				return true
			})
		}
	}

	if len(findings) > 0 {
		t.Fatalf("constant-time policy violation:\n%s", strings.Join(findings, "\n"))
	}
}

// TestSboxAccessIsConstantTime keeps direct indexing of the S-box table
// inside sboxLookup, which scans every entry.
func TestSboxAccessIsConstantTime(t *testing.T) {
	pkgs := loadPackages(t, packages.NeedSyntax|packages.NeedTypes|packages.NeedTypesInfo|packages.NeedFiles|packages.NeedName)

	const (
		table   = "sBoxes"
		allowed = "sboxLookup"
	)

	var (
		findings []string
		seen     bool
	)

	for _, pkg := range pkgs {
		if !strings.HasSuffix(pkg.PkgPath, "/tripledes") {
			continue
		}
		for _, file := range pkg.Syntax {
			for _, decl := range file.Decls {
				fn, ok := decl.(*ast.FuncDecl)
				if !ok || fn.Body == nil {
					continue
				}
				ast.Inspect(fn.Body, func(n ast.Node) bool {
					idx, ok := n.(*ast.IndexExpr)
					if !ok || !refersTo(pkg.TypesInfo, idx.X, table) {
						return true
					}
					seen = true
					if fn.Name.Name != allowed {
						pos := pkg.Fset.Position(idx.Pos())
						findings = append(findings, fmt.Sprintf("%s: %s indexed outside %s", pos, table, allowed))
					}
					return true
				})
			}
		}
	}

	if !seen {
		t.Fatalf("no %s access found; the check is not looking at the right package", table)
	}
	if len(findings) > 0 {
		t.Fatalf("constant-time policy violation:\n%s", strings.Join(findings, "\n"))
	}
}

// refersTo reports whether expr is, or indexes into, the package variable
// name.
func refersTo(info *types.Info, expr ast.Expr, name string) bool {
	for {
		switch e := expr.(type) {
		case *ast.IndexExpr:
			expr = e.X
		case *ast.ParenExpr:
			expr = e.X
		case *ast.Ident:
			obj, ok := info.Uses[e].(*types.Var)
			return ok && obj.Name() == name && obj.Parent() == obj.Pkg().Scope()
		default:
			return false
		}
	}
}

func isCallTo(info *types.Info, call *ast.CallExpr, pkgPath, name string) bool {
	sel, ok := call.Fun.(*ast.SelectorExpr)
	if !ok {
		return false
	}
	obj := info.Uses[sel.Sel]
	return obj != nil && obj.Pkg() != nil && obj.Pkg().Path() == pkgPath && obj.Name() == name
}

func isByteSlice(typ types.Type) bool {
	if typ == nil {
		return false
	}

	switch tt := typ.(type) {
	case *types.Slice:
		return isByte(tt.Elem())
	case *types.Pointer:
		return isByteSlice(tt.Elem())
	case *types.Named:
		return isByteSlice(tt.Underlying())
	case *types.Array:
		return isByte(tt.Elem())
	default:
		return false
	}
}

func isByte(t types.Type) bool {
	basic, ok := t.(*types.Basic)
	return ok && basic.Kind() == types.Byte
}
