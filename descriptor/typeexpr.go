package descriptor

import "strings"

// TypeKind selects the variant of a TypeExpr.
type TypeKind int

const (
	KindPath TypeKind = iota
	KindRef
	KindPtr
	KindSlice
	KindArray
	KindTuple
	KindNever
	// KindRaw covers trait objects, impl Trait, fn pointers and the inferred
	// type '_'; they are kept as normalized source text.
	KindRaw
)

// TypeExpr is a syntactic type expression.
type TypeExpr struct {
	Kind TypeKind

	// Path
	QSelf    *QSelf
	Global   bool
	Segments []PathSegment

	// Ref, Ptr, Slice, Array
	Elem     *TypeExpr
	Lifetime string
	Mut      bool
	Len      string

	// Tuple
	Elems []*TypeExpr

	// Raw
	Raw string
}

// QSelf is the <T as Trait>:: prefix of a qualified path. Position is the
// number of leading Segments that belong to the trait; the rest follow it.
type QSelf struct {
	Type     *TypeExpr
	Position int
}

// PathSegment is one ::-separated component of a path.
type PathSegment struct {
	Ident string
	Args  []GenericArg
}

// GenericArg is one entry inside <...> on a path segment.
type GenericArg struct {
	// Exactly one of the following is set.
	Type     *TypeExpr
	Lifetime string
	Const    string
	// Binding names an associated type binding, Item = Type.
	Binding string
}

// Path builds a plain path type from identifiers.
func Path(idents ...string) *TypeExpr {
	segs := make([]PathSegment, len(idents))
	for i, id := range idents {
		segs[i] = PathSegment{Ident: id}
	}
	return &TypeExpr{Kind: KindPath, Segments: segs}
}

// Generic builds a single-segment generic path Name<args...>.
func Generic(name string, args ...*TypeExpr) *TypeExpr {
	seg := PathSegment{Ident: name}
	for _, a := range args {
		seg.Args = append(seg.Args, GenericArg{Type: a})
	}
	return &TypeExpr{Kind: KindPath, Segments: []PathSegment{seg}}
}

// Idents returns the segment identifiers of a path type.
func (t *TypeExpr) Idents() []string {
	if t == nil || t.Kind != KindPath {
		return nil
	}
	out := make([]string, len(t.Segments))
	for i, s := range t.Segments {
		out[i] = s.Ident
	}
	return out
}

// Last returns the terminal path segment, or nil for non-paths.
func (t *TypeExpr) Last() *PathSegment {
	if t == nil || t.Kind != KindPath || len(t.Segments) == 0 {
		return nil
	}
	return &t.Segments[len(t.Segments)-1]
}

// TypeArgs returns the type arguments (not lifetimes, consts, or bindings)
// of a path segment.
func (s *PathSegment) TypeArgs() []*TypeExpr {
	var out []*TypeExpr
	for _, a := range s.Args {
		if a.Type != nil && a.Binding == "" {
			out = append(out, a.Type)
		}
	}
	return out
}

// String renders the canonical spelling of the type.
func (t *TypeExpr) String() string {
	var sb strings.Builder
	t.write(&sb)
	return sb.String()
}

func (t *TypeExpr) write(sb *strings.Builder) {
	if t == nil {
		return
	}
	switch t.Kind {
	case KindPath:
		t.writePath(sb)
	case KindRef:
		sb.WriteString("&")
		if t.Lifetime != "" {
			sb.WriteString(t.Lifetime + " ")
		}
		if t.Mut {
			sb.WriteString("mut ")
		}
		t.Elem.write(sb)
	case KindPtr:
		if t.Mut {
			sb.WriteString("*mut ")
		} else {
			sb.WriteString("*const ")
		}
		t.Elem.write(sb)
	case KindSlice:
		sb.WriteString("[")
		t.Elem.write(sb)
		sb.WriteString("]")
	case KindArray:
		sb.WriteString("[")
		t.Elem.write(sb)
		sb.WriteString("; " + t.Len + "]")
	case KindTuple:
		sb.WriteString("(")
		for i, e := range t.Elems {
			if i > 0 {
				sb.WriteString(", ")
			}
			e.write(sb)
		}
		if len(t.Elems) == 1 {
			sb.WriteString(",")
		}
		sb.WriteString(")")
	case KindNever:
		sb.WriteString("!")
	case KindRaw:
		sb.WriteString(t.Raw)
	}
}

func (t *TypeExpr) writePath(sb *strings.Builder) {
	rest := t.Segments
	if t.QSelf != nil {
		sb.WriteString("<")
		t.QSelf.Type.write(sb)
		if t.QSelf.Position > 0 {
			sb.WriteString(" as ")
			if t.Global {
				sb.WriteString("::")
			}
			writeSegments(sb, t.Segments[:t.QSelf.Position])
		}
		sb.WriteString(">")
		rest = t.Segments[t.QSelf.Position:]
		if len(rest) > 0 {
			sb.WriteString("::")
		}
	} else if t.Global {
		sb.WriteString("::")
	}
	writeSegments(sb, rest)
}

func writeSegments(sb *strings.Builder, segs []PathSegment) {
	for i, s := range segs {
		if i > 0 {
			sb.WriteString("::")
		}
		sb.WriteString(s.Ident)
		if len(s.Args) == 0 {
			continue
		}
		sb.WriteString("<")
		for j, a := range s.Args {
			if j > 0 {
				sb.WriteString(", ")
			}
			switch {
			case a.Lifetime != "":
				sb.WriteString(a.Lifetime)
			case a.Const != "":
				sb.WriteString(a.Const)
			case a.Binding != "":
				sb.WriteString(a.Binding + " = ")
				a.Type.write(sb)
			default:
				a.Type.write(sb)
			}
		}
		sb.WriteString(">")
	}
}

// Walk calls fn for t and every type nested inside it, depth first. When fn
// returns false the children of that node are skipped.
func (t *TypeExpr) Walk(fn func(*TypeExpr) bool) {
	if t == nil || !fn(t) {
		return
	}
	switch t.Kind {
	case KindPath:
		if t.QSelf != nil {
			t.QSelf.Type.Walk(fn)
		}
		for _, s := range t.Segments {
			for _, a := range s.Args {
				a.Type.Walk(fn)
			}
		}
	case KindRef, KindPtr, KindSlice, KindArray:
		t.Elem.Walk(fn)
	case KindTuple:
		for _, e := range t.Elems {
			e.Walk(fn)
		}
	}
}
