// Package builder generates a builder companion for a record: a struct
// holding every field as it is being assembled, one setter per field, an
// append method per repeated field, and a validating build method.
package builder

import (
	"github.com/teranos/derivegen/annotation"
	"github.com/teranos/derivegen/descriptor"
	"github.com/teranos/derivegen/diag"
	"github.com/teranos/derivegen/rust"
	"github.com/teranos/derivegen/shape"
)

// Tag is how a field is stored and finalized.
type Tag int

const (
	// Required fields are absent until set and must be set before build.
	Required Tag = iota
	// Optional fields are absent until set; absence builds as None.
	Optional
	// Repeated fields start as an empty collection and grow by appends.
	Repeated
)

func (t Tag) String() string {
	switch t {
	case Optional:
		return "optional"
	case Repeated:
		return "repeated"
	}
	return "required"
}

// FieldPlan is the plan for one field.
type FieldPlan struct {
	Name string
	Tag  Tag
	// Stored is the type held by the builder: the declared type for Required
	// and Repeated fields, the option's argument for Optional ones.
	Stored *descriptor.TypeExpr
	// Element is the type one append call takes (Repeated only).
	Element string
	// Each names the append method (Repeated only).
	Each string
	// SetAll is false when Each equals the field name, so the append method
	// takes the field's name and no whole-collection setter exists.
	SetAll   bool
	Location descriptor.Location
}

// Plan is the builder plan for one record.
type Plan struct {
	Builder string
	Fields  []FieldPlan
}

// Required returns the names of required fields in declared order.
func (p *Plan) Required() []string {
	var out []string
	for _, f := range p.Fields {
		if f.Tag == Required {
			out = append(out, f.Name)
		}
	}
	return out
}

// Plan classifies every field and validates the builder annotations.
func (g *Generator) Plan(td *descriptor.TypeDescriptor) (*Plan, error) {
	if _, err := annotation.Extract(td.Annotations, annotation.BuilderGrammar(g.attr, annotation.TypeScope)); err != nil {
		return nil, err
	}

	plan := &Plan{Builder: td.Name + g.names.Suffix}
	for i := range td.Fields {
		f := &td.Fields[i]
		fp, err := g.planField(f)
		if err != nil {
			return nil, err
		}
		plan.Fields = append(plan.Fields, fp)
	}
	if err := g.checkMethodNames(plan); err != nil {
		return nil, err
	}
	return plan, nil
}

func (g *Generator) planField(f *descriptor.Field) (FieldPlan, error) {
	dirs, err := annotation.Extract(f.Annotations, annotation.BuilderGrammar(g.attr, annotation.FieldScope))
	if err != nil {
		return FieldPlan{}, err
	}

	fp := FieldPlan{Name: f.Name, Location: f.Location}
	s := g.classifier.Classify(f.Type)

	if s.Kind == shape.Optional {
		fp.Tag = Optional
		fp.Stored = s.Inner
		return fp, nil
	}

	if each, ok := dirs.Get(annotation.KeyEach); ok {
		fp.Tag = Repeated
		fp.Stored = f.Type
		fp.Each = each.Value
		fp.SetAll = rust.Unraw(each.Value) != rust.Unraw(f.Name)
		if s.Kind == shape.Repeated {
			fp.Element = s.Inner.String()
		} else {
			fp.Element = "<" + f.Type.String() + " as ::std::iter::IntoIterator>::Item"
		}
		return fp, nil
	}

	fp.Tag = Required
	fp.Stored = f.Type
	return fp, nil
}

// checkMethodNames rejects plans where two generated methods on the builder
// would share a name.
func (g *Generator) checkMethodNames(plan *Plan) error {
	owner := map[string]string{rust.Unraw(g.names.Build): "the build method"}

	claim := func(name, what string, loc descriptor.Location) error {
		name = rust.Unraw(name)
		if prev, ok := owner[name]; ok {
			return diag.Errorf(diag.ConflictingOverride, loc,
				"method `%s` (%s) collides with %s", name, what, prev)
		}
		owner[name] = what
		return nil
	}

	for _, f := range plan.Fields {
		if f.Tag == Repeated && !f.SetAll {
			continue
		}
		if err := claim(f.Name, "setter of field `"+rust.Unraw(f.Name)+"`", f.Location); err != nil {
			return err
		}
	}
	for _, f := range plan.Fields {
		if f.Tag != Repeated {
			continue
		}
		if err := claim(f.Each, "append method of field `"+rust.Unraw(f.Name)+"`", f.Location); err != nil {
			return err
		}
	}
	return nil
}
