// Package generator writes constructor and typed accessor boilerplate for
// hxel components.
//
// A component is a struct embedding *hxel.Element whose class lives in a
// package-level variable named after it with a Class suffix:
//
//	var CounterClass = hxel.MustDefineClass("counter", nil).
//	    MustDeclare("count", hxel.PropertyDeclaration{Kind: hxel.Number, Attribute: "count"})
//
//	type Counter struct {
//	    *hxel.Element
//	}
//
// For each one the generator writes <file>_hx.go next to the source with
// NewCounter, Count and SetCount.
package generator

import (
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Options configures the generator.
type Options struct {
	DryRun bool
}

// Generator generates hxel code.
type Generator struct {
	opts Options
	fset *token.FileSet
}

// New creates a new generator.
func New(opts Options) *Generator {
	return &Generator{
		opts: opts,
		fset: token.NewFileSet(),
	}
}

// Generate generates code for the given package patterns.
func (g *Generator) Generate(patterns ...string) error {
	packages, err := g.findPackages(patterns)
	if err != nil {
		return err
	}

	for _, pkg := range packages {
		if err := g.generatePackage(pkg); err != nil {
			return fmt.Errorf("package %s: %w", pkg, err)
		}
	}

	return nil
}

// Clean removes generated files for the given package patterns.
func (g *Generator) Clean(patterns ...string) error {
	packages, err := g.findPackages(patterns)
	if err != nil {
		return err
	}

	for _, pkg := range packages {
		if err := g.cleanPackage(pkg); err != nil {
			return fmt.Errorf("package %s: %w", pkg, err)
		}
	}

	return nil
}

// findPackages resolves package patterns to directory paths.
func (g *Generator) findPackages(patterns []string) ([]string, error) {
	var packages []string

	for _, pattern := range patterns {
		if !strings.HasSuffix(pattern, "/...") {
			packages = append(packages, pattern)
			continue
		}

		root := strings.TrimSuffix(pattern, "/...")
		if root == "" {
			root = "."
		}

		err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !info.IsDir() {
				return nil
			}
			base := filepath.Base(path)
			if path != root && (strings.HasPrefix(base, ".") || strings.HasPrefix(base, "_") || base == "vendor" || base == "testdata") {
				return filepath.SkipDir
			}

			entries, err := os.ReadDir(path)
			if err != nil {
				return nil
			}
			for _, entry := range entries {
				if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".go") && !strings.HasSuffix(entry.Name(), "_test.go") {
					packages = append(packages, path)
					break
				}
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	return packages, nil
}

// generatePackage generates code for a single package.
func (g *Generator) generatePackage(pkgPath string) error {
	pkgs, err := parser.ParseDir(g.fset, pkgPath, func(info os.FileInfo) bool {
		name := info.Name()
		return !strings.HasSuffix(name, "_test.go") && !strings.HasSuffix(name, "_hx.go")
	}, parser.ParseComments)
	if err != nil {
		return err
	}

	for pkgName, pkg := range pkgs {
		for _, comp := range g.findComponents(pkg) {
			if err := g.generateComponent(pkgPath, pkgName, comp); err != nil {
				return err
			}
		}
	}

	return nil
}

// cleanPackage removes generated files from a package.
func (g *Generator) cleanPackage(pkgPath string) error {
	entries, err := os.ReadDir(pkgPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), "_hx.go") {
			continue
		}
		path := filepath.Join(pkgPath, entry.Name())
		fmt.Printf("removing %s\n", path)
		if !g.opts.DryRun {
			if err := os.Remove(path); err != nil {
				return err
			}
		}
	}

	return nil
}

// ComponentInfo holds information about a discovered component.
type ComponentInfo struct {
	SourceFile string
	TypeName   string         // e.g. "Counter"
	ClassVar   string         // e.g. "CounterClass"
	Properties []PropertyInfo // in declaration order
}

// PropertyInfo is one MustDeclare or Declare call on a class variable.
type PropertyInfo struct {
	Name      string
	Kind      string // built-in kind name, e.g. "Number"; "" when not recognised
	Attribute string
	Computed  bool
}

// findComponents finds all component types in a package.
func (g *Generator) findComponents(pkg *ast.Package) []*ComponentInfo {
	classes := make(map[string][]PropertyInfo)
	for _, file := range pkg.Files {
		for name, props := range g.findClasses(file) {
			classes[name] = props
		}
	}

	var components []*ComponentInfo
	for filename, file := range pkg.Files {
		for _, decl := range file.Decls {
			genDecl, ok := decl.(*ast.GenDecl)
			if !ok || genDecl.Tok != token.TYPE {
				continue
			}

			for _, spec := range genDecl.Specs {
				typeSpec, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}
				structType, ok := typeSpec.Type.(*ast.StructType)
				if !ok || !g.embedsElement(structType) {
					continue
				}

				classVar := typeSpec.Name.Name + "Class"
				props, ok := classes[classVar]
				if !ok {
					continue
				}
				components = append(components, &ComponentInfo{
					SourceFile: filename,
					TypeName:   typeSpec.Name.Name,
					ClassVar:   classVar,
					Properties: props,
				})
			}
		}
	}

	sort.Slice(components, func(i, j int) bool {
		return components[i].TypeName < components[j].TypeName
	})
	return components
}

// embedsElement checks if a struct embeds *hxel.Element.
func (g *Generator) embedsElement(structType *ast.StructType) bool {
	for _, field := range structType.Fields.List {
		if len(field.Names) != 0 {
			continue
		}
		starExpr, ok := field.Type.(*ast.StarExpr)
		if !ok {
			continue
		}
		sel, ok := starExpr.X.(*ast.SelectorExpr)
		if !ok || sel.Sel.Name != "Element" {
			continue
		}
		if ident, ok := sel.X.(*ast.Ident); ok && ident.Name == "hxel" {
			return true
		}
	}
	return false
}

// findClasses collects the property declarations chained onto each
// package-level variable in file.
func (g *Generator) findClasses(file *ast.File) map[string][]PropertyInfo {
	classes := make(map[string][]PropertyInfo)

	for _, decl := range file.Decls {
		genDecl, ok := decl.(*ast.GenDecl)
		if !ok || genDecl.Tok != token.VAR {
			continue
		}
		for _, spec := range genDecl.Specs {
			valueSpec, ok := spec.(*ast.ValueSpec)
			if !ok || len(valueSpec.Names) != 1 || len(valueSpec.Values) != 1 {
				continue
			}
			if props := g.findDeclarations(valueSpec.Values[0]); len(props) > 0 {
				classes[valueSpec.Names[0].Name] = props
			}
		}
	}

	return classes
}

// findDeclarations walks a declaration chain. Calls are visited outermost
// first, so results are ordered by source position afterwards.
func (g *Generator) findDeclarations(expr ast.Expr) []PropertyInfo {
	type found struct {
		pos  token.Pos
		prop PropertyInfo
	}
	var all []found

	ast.Inspect(expr, func(n ast.Node) bool {
		callExpr, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		selExpr, ok := callExpr.Fun.(*ast.SelectorExpr)
		if !ok || (selExpr.Sel.Name != "MustDeclare" && selExpr.Sel.Name != "Declare") {
			return true
		}
		if len(callExpr.Args) != 2 {
			return true
		}
		nameLit, ok := callExpr.Args[0].(*ast.BasicLit)
		if !ok || nameLit.Kind != token.STRING {
			return true
		}
		name, err := strconv.Unquote(nameLit.Value)
		if err != nil {
			return true
		}

		prop := PropertyInfo{Name: name}
		if lit, ok := callExpr.Args[1].(*ast.CompositeLit); ok {
			g.readDeclaration(lit, &prop)
		}
		all = append(all, found{pos: nameLit.Pos(), prop: prop})
		return true
	})

	sort.Slice(all, func(i, j int) bool { return all[i].pos < all[j].pos })
	props := make([]PropertyInfo, len(all))
	for i, f := range all {
		props[i] = f.prop
	}
	return props
}

// readDeclaration fills prop from a PropertyDeclaration literal.
func (g *Generator) readDeclaration(lit *ast.CompositeLit, prop *PropertyInfo) {
	for _, elt := range lit.Elts {
		kv, ok := elt.(*ast.KeyValueExpr)
		if !ok {
			continue
		}
		key, ok := kv.Key.(*ast.Ident)
		if !ok {
			continue
		}
		switch key.Name {
		case "Kind":
			prop.Kind = kindName(kv.Value)
		case "Attribute":
			if bl, ok := kv.Value.(*ast.BasicLit); ok && bl.Kind == token.STRING {
				prop.Attribute, _ = strconv.Unquote(bl.Value)
			}
		case "ComputeFrom", "Compute":
			prop.Computed = true
		}
	}
}

// kindName recognises hxel.String, hxel.Number and the other built-in kinds.
func kindName(expr ast.Expr) string {
	var name string
	switch x := expr.(type) {
	case *ast.SelectorExpr:
		if ident, ok := x.X.(*ast.Ident); ok && ident.Name == "hxel" {
			name = x.Sel.Name
		}
	case *ast.Ident:
		name = x.Name
	}
	if _, ok := kindTypes[name]; ok {
		return name
	}
	return ""
}
