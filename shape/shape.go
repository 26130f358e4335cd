// Package shape classifies syntactic type expressions without resolving
// names. Every rule here is lexical: `Option<T>` is optional because its last
// path segment is spelled Option, whatever that name refers to at the use
// site.
package shape

import (
	"github.com/teranos/derivegen/descriptor"
)

// Kind is the variant of a Shape.
type Kind int

const (
	// Other is any non-path type: references, tuples, slices, trait objects.
	Other Kind = iota
	// Plain is a path without generic arguments on its last segment.
	Plain
	// Generic is a path with generic arguments on its last segment.
	Generic
	// Optional is a recognized single-argument option path.
	Optional
	// Repeated is a recognized single-argument container path.
	Repeated
)

func (k Kind) String() string {
	switch k {
	case Plain:
		return "plain"
	case Generic:
		return "generic"
	case Optional:
		return "optional"
	case Repeated:
		return "repeated"
	}
	return "other"
}

// Shape is the classification of one type expression.
type Shape struct {
	Kind Kind
	// Type is the classified expression.
	Type *descriptor.TypeExpr
	// Args are the type arguments of the last segment (Generic, Optional,
	// Repeated).
	Args []*descriptor.TypeExpr
	// Inner is the single argument of Optional and Repeated.
	Inner *descriptor.TypeExpr
}

// Classifier holds the word tables the lexical rules match against.
type Classifier struct {
	options    map[string]bool
	containers map[string]bool
	phantoms   map[string]bool
}

// ClassifierOption configures a Classifier.
type ClassifierOption func(*Classifier)

// WithOptionWords replaces the words recognized as optional wrappers.
func WithOptionWords(words ...string) ClassifierOption {
	return func(c *Classifier) { c.options = set(words) }
}

// WithContainerWords replaces the words recognized as element containers.
func WithContainerWords(words ...string) ClassifierOption {
	return func(c *Classifier) { c.containers = set(words) }
}

// WithPhantomWords replaces the words recognized as zero-storage markers.
func WithPhantomWords(words ...string) ClassifierOption {
	return func(c *Classifier) { c.phantoms = set(words) }
}

// Default words.
var (
	DefaultOptionWords    = []string{"Option"}
	DefaultContainerWords = []string{"Vec"}
	DefaultPhantomWords   = []string{"PhantomData"}
)

// New returns a classifier with the default word tables, adjusted by opts.
func New(opts ...ClassifierOption) *Classifier {
	c := &Classifier{
		options:    set(DefaultOptionWords),
		containers: set(DefaultContainerWords),
		phantoms:   set(DefaultPhantomWords),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func set(words []string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}

// Classify never fails. Qualified-self paths are never specialized, and
// neither is a path with arguments on a segment other than the last.
func (c *Classifier) Classify(t *descriptor.TypeExpr) Shape {
	last := t.Last()
	if last == nil {
		return Shape{Kind: Other, Type: t}
	}
	if len(last.Args) == 0 {
		return Shape{Kind: Plain, Type: t}
	}

	s := Shape{Kind: Generic, Type: t, Args: last.TypeArgs()}
	if t.QSelf != nil || !onlyLastHasArgs(t) {
		return s
	}
	if len(last.Args) != 1 || len(s.Args) != 1 {
		return s
	}
	switch {
	case c.options[last.Ident]:
		s.Kind = Optional
		s.Inner = s.Args[0]
	case c.containers[last.Ident]:
		s.Kind = Repeated
		s.Inner = s.Args[0]
	}
	return s
}

func onlyLastHasArgs(t *descriptor.TypeExpr) bool {
	for _, seg := range t.Segments[:len(t.Segments)-1] {
		if len(seg.Args) > 0 {
			return false
		}
	}
	return true
}

// AssociatedRoot reports whether t looks like an associated type of one of
// params: a path of at least two segments, no qualified self, whose first
// segment is a bare parameter name (T::Value). This is a heuristic; a module
// that happens to share a parameter's name matches too.
func (c *Classifier) AssociatedRoot(t *descriptor.TypeExpr, params []string) (string, bool) {
	if t == nil || t.Kind != descriptor.KindPath || t.QSelf != nil || t.Global || len(t.Segments) < 2 {
		return "", false
	}
	first := t.Segments[0]
	if len(first.Args) > 0 {
		return "", false
	}
	for _, p := range params {
		if first.Ident == p {
			return p, true
		}
	}
	return "", false
}

// Phantom reports whether t is a zero-storage marker such as PhantomData<T>,
// whose formatting never depends on its argument.
func (c *Classifier) Phantom(t *descriptor.TypeExpr) bool {
	last := t.Last()
	return last != nil && t.QSelf == nil && c.phantoms[last.Ident]
}

// IsParam reports whether t is exactly the bare parameter name p.
func IsParam(t *descriptor.TypeExpr, p string) bool {
	return t != nil && t.Kind == descriptor.KindPath && t.QSelf == nil && !t.Global &&
		len(t.Segments) == 1 && len(t.Segments[0].Args) == 0 && t.Segments[0].Ident == p
}
