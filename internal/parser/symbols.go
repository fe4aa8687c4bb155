package parser

import (
	"fmt"
	"go/ast"
	"go/token"
	"go/types"
	"sort"
	"strings"

	"github.com/toyz/dtogen/internal/annotations"
	"github.com/toyz/dtogen/internal/diagnostics"
	"github.com/toyz/dtogen/internal/models"
)

// typeDecl is a struct type declaration found while scanning a package
type typeDecl struct {
	name     string
	named    *types.Named
	location diagnostics.Location
	source   *annotations.ParsedAnnotation
	own      models.Capability
	members  []*models.MemberSymbol
}

// scanner walks the syntax of one package and collects annotated declarations
type scanner struct {
	fset    *token.FileSet
	parser  annotations.AnnotationParser
	pkgPath string
	info    *types.Info
	decls   []*typeDecl
	diags   []diagnostics.Diagnostic

	// scope and methods hold what the scanned files declare
	scope   map[string]bool
	methods map[string]map[string]bool
}

// buildProgram scans every package, then resolves capabilities across all of them
func (l *Loader) buildProgram(fset *token.FileSet, inputs []*packageInput) *models.Program {
	sort.SliceStable(inputs, func(i, j int) bool { return inputs[i].path < inputs[j].path })

	program := &models.Program{Fset: fset}
	index := make(capabilityIndex)
	scans := make([]*scanner, len(inputs))

	for i, in := range inputs {
		s := &scanner{
			fset:    fset,
			parser:  l.annotations,
			pkgPath: in.path,
			info:    in.info,
			scope:   make(map[string]bool),
			methods: make(map[string]map[string]bool),
		}
		for _, file := range in.files {
			s.scanFile(file)
		}
		for _, decl := range s.decls {
			index[typeKey(decl.named.Obj())] = decl.own
		}
		scans[i] = s
	}

	for i, in := range inputs {
		pkg := &models.Package{
			Name:        in.name,
			Path:        in.path,
			Dir:         in.dir,
			GoVersion:   in.goVersion,
			Types:       in.types,
			Scope:       scans[i].scope,
			Diagnostics: scans[i].diags,
		}
		for _, file := range in.files {
			pkg.Files = append(pkg.Files, fset.File(file.Pos()).Name())
		}

		for _, decl := range scans[i].decls {
			if decl.source == nil && len(decl.members) == 0 {
				continue
			}
			pkg.Containers = append(pkg.Containers, newContainer(in.path, decl, index, scans[i].methods[decl.name]))
		}
		program.Packages = append(program.Packages, pkg)
	}

	return program
}

// newContainer builds the container symbol of an annotated declaration
func newContainer(pkgPath string, decl *typeDecl, index capabilityIndex, methods map[string]bool) *models.ContainerSymbol {
	container := &models.ContainerSymbol{
		Name:     decl.name,
		PkgPath:  pkgPath,
		Exported: token.IsExported(decl.name),
		Location: decl.location,
		Named:    decl.named,
		Source:   decl.source,
		Capabilities: models.Capabilities{
			Own:       decl.own,
			Inherited: index.inherited(decl.named),
		},
		Protocols: protocolsOf(decl.named),
		Selectors: make(map[string]bool),
		Members:   decl.members,
	}

	for name := range methods {
		container.Selectors[name] = true
	}
	if st, ok := decl.named.Underlying().(*types.Struct); ok {
		for i := 0; i < st.NumFields(); i++ {
			container.Selectors[st.Field(i).Name()] = true
		}
	}

	if tps := decl.named.TypeParams(); tps != nil {
		for i := 0; i < tps.Len(); i++ {
			tp := tps.At(i)
			container.TypeParams = append(container.TypeParams, models.TypeParam{
				Name:       tp.Obj().Name(),
				Constraint: tp.Constraint(),
			})
		}
	}

	for _, member := range container.Members {
		member.Container = container
	}
	return container
}

// scanFile collects the type declarations of a file in source order
func (s *scanner) scanFile(file *ast.File) {
	for _, d := range file.Decls {
		switch decl := d.(type) {
		case *ast.FuncDecl:
			s.declareFunc(decl)
		case *ast.GenDecl:
			for _, spec := range decl.Specs {
				switch spec := spec.(type) {
				case *ast.TypeSpec:
					s.declare(spec.Name.Name)
					if decl.Tok == token.TYPE {
						s.scanTypeSpec(decl, spec)
					}
				case *ast.ValueSpec:
					for _, name := range spec.Names {
						s.declare(name.Name)
					}
				}
			}
		}
	}
}

func (s *scanner) declare(name string) {
	if name != "_" {
		s.scope[name] = true
	}
}

// declareFunc records a package-level function or a method under its receiver type
func (s *scanner) declareFunc(fn *ast.FuncDecl) {
	if fn.Recv == nil || len(fn.Recv.List) == 0 {
		if fn.Name.Name != "init" {
			s.declare(fn.Name.Name)
		}
		return
	}
	recv := receiverTypeName(fn.Recv.List[0].Type)
	if recv == "" {
		return
	}
	if s.methods[recv] == nil {
		s.methods[recv] = make(map[string]bool)
	}
	s.methods[recv][fn.Name.Name] = true
}

// receiverTypeName returns T for receivers written T, *T, T[K] or *T[K, V]
func receiverTypeName(expr ast.Expr) string {
	for {
		switch e := expr.(type) {
		case *ast.StarExpr:
			expr = e.X
		case *ast.ParenExpr:
			expr = e.X
		case *ast.IndexExpr:
			expr = e.X
		case *ast.IndexListExpr:
			expr = e.X
		case *ast.Ident:
			return e.Name
		default:
			return ""
		}
	}
}

// scanTypeSpec reads the type-level annotations and annotated fields of a declaration
func (s *scanner) scanTypeSpec(gen *ast.GenDecl, spec *ast.TypeSpec) {
	groups := []*ast.CommentGroup{spec.Doc, spec.Comment}
	if !gen.Lparen.IsValid() {
		groups = append([]*ast.CommentGroup{gen.Doc}, groups...)
	}

	name := spec.Name.Name
	anns := s.annotationsIn(groups, name)

	obj, _ := s.info.Defs[spec.Name].(*types.TypeName)
	structType, isStruct := spec.Type.(*ast.StructType)
	named, isNamed := typeNamed(obj)

	if !isStruct || !isNamed || spec.Assign.IsValid() {
		for _, ann := range anns {
			s.report(diagnostics.InvalidAnnotation, ann.Location, name,
				fmt.Sprintf("dto::%s requires a struct type declaration", ann.Type))
		}
		return
	}

	decl := &typeDecl{
		name:     name,
		named:    named,
		location: s.location(spec.Name.Pos()),
	}

	for _, ann := range anns {
		switch ann.Type {
		case annotations.SourceAnnotation:
			if decl.source != nil {
				s.report(diagnostics.InvalidAnnotation, ann.Location, name, "duplicate dto::source annotation")
				continue
			}
			decl.source = ann
			decl.own |= models.CapabilitySource
		case annotations.ObservableAnnotation:
			decl.own |= models.CapabilityObservable
		case annotations.NotifyAnnotation:
			decl.own |= models.CapabilityNotify
		default:
			s.report(diagnostics.InvalidAnnotation, ann.Location, name,
				fmt.Sprintf("dto::%s can only annotate struct fields", ann.Type))
		}
	}

	if st, ok := named.Underlying().(*types.Struct); ok {
		decl.members = s.scanFields(name, structType, st)
	}
	s.decls = append(s.decls, decl)
}

// scanFields returns the annotated fields of a struct in declaration order
func (s *scanner) scanFields(typeName string, structType *ast.StructType, st *types.Struct) []*models.MemberSymbol {
	var members []*models.MemberSymbol
	index := 0

	for _, field := range structType.Fields.List {
		count := len(field.Names)
		if count == 0 {
			count = 1
		}
		first := index
		index += count

		target := typeName + "." + fieldLabel(field)
		anns := s.annotationsIn([]*ast.CommentGroup{field.Doc, field.Comment}, target)

		var memberAnns []*annotations.ParsedAnnotation
		for _, ann := range anns {
			if ann.Type != annotations.MemberAnnotation {
				s.report(diagnostics.InvalidAnnotation, ann.Location, target,
					fmt.Sprintf("dto::%s can only annotate struct types", ann.Type))
				continue
			}
			memberAnns = append(memberAnns, ann)
		}
		if len(memberAnns) == 0 {
			continue
		}

		for k := 0; k < count; k++ {
			if first+k >= st.NumFields() {
				break
			}
			v := st.Field(first + k)
			pos := field.Type.Pos()
			if len(field.Names) > 0 {
				pos = field.Names[k].Pos()
			}
			members = append(members, &models.MemberSymbol{
				Name:        v.Name(),
				Exported:    v.Exported(),
				Embedded:    v.Embedded(),
				Type:        v.Type(),
				Index:       first + k,
				Location:    s.location(pos),
				Annotations: memberAnns,
			})
		}
	}

	return members
}

// annotationsIn parses the dto:: annotations of comment groups. Malformed
// annotations are reported and dropped.
func (s *scanner) annotationsIn(groups []*ast.CommentGroup, target string) []*annotations.ParsedAnnotation {
	var out []*annotations.ParsedAnnotation
	for _, group := range groups {
		if group == nil {
			continue
		}
		for _, c := range group.List {
			if !annotations.IsAnnotation(c.Text) {
				continue
			}
			loc := s.location(c.Slash)
			parsed, err := s.parser.ParseAnnotation(c.Text, loc)
			if err != nil {
				detail := err.Error()
				if annErr, ok := annotations.AsAnnotationError(err); ok {
					detail = annErr.Detail()
					if l := annErr.Location(); !l.IsEmpty() {
						loc = l
					}
				}
				s.report(diagnostics.InvalidAnnotation, loc, target, detail)
				continue
			}
			parsed.Target = target
			out = append(out, parsed)
		}
	}
	return out
}

func (s *scanner) report(kind diagnostics.Kind, loc diagnostics.Location, args ...string) {
	s.diags = append(s.diags, diagnostics.New(kind, loc, args...))
}

func (s *scanner) location(pos token.Pos) diagnostics.Location {
	return diagnostics.LocationOf(s.fset.Position(pos))
}

// fieldLabel names a field list entry for diagnostics
func fieldLabel(field *ast.Field) string {
	if len(field.Names) == 0 {
		return types.ExprString(field.Type)
	}
	names := make([]string, len(field.Names))
	for i, n := range field.Names {
		names[i] = n.Name
	}
	return strings.Join(names, ",")
}

// typeNamed returns the defined type of a type name
func typeNamed(obj *types.TypeName) (*types.Named, bool) {
	if obj == nil || obj.IsAlias() {
		return nil, false
	}
	named, ok := obj.Type().(*types.Named)
	return named, ok
}
