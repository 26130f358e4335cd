package builder

import (
	"github.com/teranos/derivegen/descriptor"
	"github.com/teranos/derivegen/rust"
	"github.com/teranos/derivegen/shape"
)

// Names are the generated names that are not derived from fields.
type Names struct {
	// Suffix is appended to the record name to name the builder.
	Suffix string
	// Constructor is the associated function on the record.
	Constructor string
	// Build is the finalizing method on the builder.
	Build string
}

// DefaultNames are Builder, builder() and build().
var DefaultNames = Names{Suffix: "Builder", Constructor: "builder", Build: "build"}

// Generator generates builders.
type Generator struct {
	classifier *shape.Classifier
	names      Names
	attr       string
}

// Option configures a Generator.
type Option func(*Generator)

// WithClassifier sets the shape classifier.
func WithClassifier(c *shape.Classifier) Option {
	return func(g *Generator) { g.classifier = c }
}

// WithNames overrides generated names; empty entries keep their default.
func WithNames(n Names) Option {
	return func(g *Generator) {
		if n.Suffix != "" {
			g.names.Suffix = n.Suffix
		}
		if n.Constructor != "" {
			g.names.Constructor = n.Constructor
		}
		if n.Build != "" {
			g.names.Build = n.Build
		}
	}
}

// WithAttribute sets the attribute name directives are read from.
func WithAttribute(attr string) Option {
	return func(g *Generator) { g.attr = attr }
}

// New creates a builder generator.
func New(opts ...Option) *Generator {
	g := &Generator{
		classifier: shape.New(),
		names:      DefaultNames,
		attr:       "builder",
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Name identifies the generator in derive lists.
func (g *Generator) Name() string { return "Builder" }

// Generate plans and emits the builder for td.
func (g *Generator) Generate(td *descriptor.TypeDescriptor) (string, error) {
	plan, err := g.Plan(td)
	if err != nil {
		return "", err
	}
	return g.Emit(td, plan), nil
}

// Emit renders the builder described by plan. Every name from the standard
// library is written with its full path so that local items called Option,
// Some, Result or Box cannot change the meaning of the output.
func (g *Generator) Emit(td *descriptor.TypeDescriptor, plan *Plan) string {
	var w rust.Writer
	builderType := plan.Builder + td.TypeGenerics()
	vis := td.Visibility
	if vis != "" {
		vis += " "
	}

	// Builder struct.
	w.Line("/// Builder for [`%s`].", td.Name)
	w.OpenWhere(vis+"struct "+plan.Builder+td.DeclGenerics(), td.Where)
	for _, f := range plan.Fields {
		w.Line("%s: %s,", rust.Ident(f.Name), storageType(f))
	}
	w.Close("")
	w.Blank()

	// Constructor on the record.
	w.OpenWhere("impl"+td.ImplGenerics()+" "+td.SelfType(), td.Where)
	w.Open("%sfn %s() -> %s", vis, rust.Ident(g.names.Constructor), builderType)
	w.Open("%s", plan.Builder)
	for _, f := range plan.Fields {
		init := "::std::option::Option::None"
		if f.Tag == Repeated {
			init = "::std::default::Default::default()"
		}
		w.Line("%s: %s,", rust.Ident(f.Name), init)
	}
	w.Close("")
	w.Close("")
	w.Close("")
	w.Blank()

	// Setters and build.
	w.OpenWhere("impl"+td.ImplGenerics()+" "+builderType, td.Where)
	for _, f := range plan.Fields {
		g.emitSetters(&w, f)
	}
	g.emitBuild(&w, td, plan)
	w.Close("")
	return w.String()
}

func storageType(f FieldPlan) string {
	if f.Tag == Repeated {
		return f.Stored.String()
	}
	return "::std::option::Option<" + f.Stored.String() + ">"
}

func (g *Generator) emitSetters(w *rust.Writer, f FieldPlan) {
	field := rust.Ident(f.Name)

	switch f.Tag {
	case Required, Optional:
		w.Open("pub fn %s(&mut self, %s: %s) -> &mut Self", field, field, f.Stored)
		w.Line("self.%s = ::std::option::Option::Some(%s);", field, field)
		w.Line("self")
		w.Close("")
		w.Blank()

	case Repeated:
		each := rust.Ident(f.Each)
		w.Open("pub fn %s(&mut self, %s: %s) -> &mut Self", each, each, f.Element)
		w.Line("::std::iter::Extend::extend(&mut self.%s, ::std::iter::once(%s));", field, each)
		w.Line("self")
		w.Close("")
		w.Blank()

		if f.SetAll {
			w.Open("pub fn %s(&mut self, %s: %s) -> &mut Self", field, field, f.Stored)
			w.Line("self.%s = %s;", field, field)
			w.Line("self")
			w.Close("")
			w.Blank()
		}
	}
}

func (g *Generator) emitBuild(w *rust.Writer, td *descriptor.TypeDescriptor, plan *Plan) {
	w.Open("pub fn %s(&mut self) -> ::std::result::Result<%s, ::std::boxed::Box<dyn ::std::error::Error>>",
		rust.Ident(g.names.Build), td.SelfType())

	if required := plan.Required(); len(required) > 0 {
		w.Line("let mut missing: ::std::vec::Vec<&'static str> = ::std::vec::Vec::new();")
		for _, name := range required {
			w.Open("if self.%s.is_none()", rust.Ident(name))
			w.Line("missing.push(%s);", rust.Quote(rust.Unraw(name)))
			w.Close("")
		}
		w.Open("if !missing.is_empty()")
		w.Line("return ::std::result::Result::Err(::std::convert::From::from(::std::format!(")
		w.Indent()
		w.Line(`"missing required field(s): {}",`)
		w.Line(`missing.join(", "),`)
		w.Dedent()
		w.Line(")));")
		w.Close("")
	}

	w.Line("::std::result::Result::Ok(%s {", td.Name)
	w.Indent()
	for _, f := range plan.Fields {
		field := rust.Ident(f.Name)
		switch f.Tag {
		case Required:
			w.Line("%s: self.%s.take().unwrap(),", field, field)
		case Optional:
			w.Line("%s: self.%s.take(),", field, field)
		case Repeated:
			w.Line("%s: ::std::mem::take(&mut self.%s),", field, field)
		}
	}
	w.Dedent()
	w.Line("})")
	w.Close("")
}
