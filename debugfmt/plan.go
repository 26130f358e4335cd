// Package debugfmt generates a Debug implementation for a record, with
// per-field format templates and inferred generic bounds.
//
// Bound inference works on syntax only:
//
//   - a type parameter P used directly in a field gets `P: Debug`;
//   - uses inside a phantom marker (PhantomData<P>) are ignored;
//   - an associated path P::Value gets `P::Value: Debug` instead of `P: Debug`;
//   - a field with `debug(bound = "...")` contributes that literal instead of
//     its own inferred predicates;
//   - a type-level `debug(bound = "...")` replaces inference entirely.
//
// Bounds are placed on leaf types, never on whole field types, so records
// that contain themselves through Box or Option do not produce cyclic
// obligations.
package debugfmt

import (
	"github.com/teranos/derivegen/annotation"
	"github.com/teranos/derivegen/descriptor"
	"github.com/teranos/derivegen/shape"
)

// Strategy selects how the where-clause is produced.
type Strategy int

const (
	// Inferred derives predicates from field types.
	Inferred Strategy = iota
	// Overridden uses a type-level literal verbatim.
	Overridden
)

func (s Strategy) String() string {
	if s == Overridden {
		return "overridden"
	}
	return "inferred"
}

// Bounds is the where-clause of the generated impl.
type Bounds struct {
	Strategy Strategy
	// Predicates in emission order, declared predicates first.
	Predicates []string
}

// FieldPlan is the plan for one field.
type FieldPlan struct {
	Name string
	// Template is the format template; empty means default formatting.
	Template    string
	HasTemplate bool
	// Bound is the field-level override literal, if any.
	Bound string
}

// Plan is the debug plan for one record.
type Plan struct {
	Fields []FieldPlan
	Bounds Bounds
}

// Plan extracts directives and computes the impl's bounds.
func (g *Generator) Plan(td *descriptor.TypeDescriptor) (*Plan, error) {
	typeDirs, err := annotation.Extract(td.Annotations, annotation.DebugGrammar(g.attr, annotation.TypeScope))
	if err != nil {
		return nil, err
	}

	plan := &Plan{}
	for i := range td.Fields {
		f := &td.Fields[i]
		dirs, err := annotation.Extract(f.Annotations, annotation.DebugGrammar(g.attr, annotation.FieldScope))
		if err != nil {
			return nil, err
		}
		fp := FieldPlan{Name: f.Name}
		if d, ok := dirs.Get(annotation.KeyFormat); ok {
			fp.Template, fp.HasTemplate = d.Value, true
		}
		if d, ok := dirs.Get(annotation.KeyBound); ok {
			fp.Bound = d.Value
		}
		plan.Fields = append(plan.Fields, fp)
	}

	preds := newPredicateSet(td.Where...)
	if d, ok := typeDirs.Get(annotation.KeyBound); ok {
		plan.Bounds.Strategy = Overridden
		preds.add(splitPredicates(d.Value)...)
	} else {
		plan.Bounds.Strategy = Inferred
		g.infer(td, plan, preds)
	}
	plan.Bounds.Predicates = preds.list
	return plan, nil
}

// infer adds parameter predicates in declaration order, then associated and
// field-override predicates in field order.
func (g *Generator) infer(td *descriptor.TypeDescriptor, plan *Plan, preds *predicateSet) {
	params := td.TypeParamNames()
	used := make(map[string]bool, len(params))
	var extra []string

	for i, f := range td.Fields {
		if b := plan.Fields[i].Bound; b != "" {
			extra = append(extra, splitPredicates(b)...)
			continue
		}
		extra = append(extra, g.fieldUsage(f.Type, params, used)...)
	}

	for _, p := range params {
		if used[p] {
			preds.add(p + ": " + g.capability)
		}
	}
	preds.add(extra...)
}

// fieldUsage marks parameters used directly in t and returns the predicates
// for associated paths rooted at a parameter.
func (g *Generator) fieldUsage(t *descriptor.TypeExpr, params []string, used map[string]bool) []string {
	var assoc []string
	t.Walk(func(n *descriptor.TypeExpr) bool {
		if g.classifier.Phantom(n) {
			return false
		}
		if _, ok := g.classifier.AssociatedRoot(n, params); ok {
			assoc = append(assoc, n.String()+": "+g.capability)
			return true
		}
		for _, p := range params {
			if shape.IsParam(n, p) {
				used[p] = true
			}
		}
		return true
	})
	return assoc
}

func splitPredicates(clause string) []string {
	preds, err := descriptor.ParsePredicates(clause)
	if err != nil {
		// Already validated during extraction.
		return []string{clause}
	}
	out := make([]string, len(preds))
	for i, p := range preds {
		out[i] = p.Raw
	}
	return out
}

type predicateSet struct {
	seen map[string]bool
	list []string
}

func newPredicateSet(initial ...string) *predicateSet {
	s := &predicateSet{seen: make(map[string]bool)}
	s.add(initial...)
	return s
}

func (s *predicateSet) add(preds ...string) {
	for _, p := range preds {
		if p == "" || s.seen[p] {
			continue
		}
		s.seen[p] = true
		s.list = append(s.list, p)
	}
}
