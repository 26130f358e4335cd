package debugfmt

import (
	"strings"

	"github.com/teranos/derivegen/descriptor"
	"github.com/teranos/derivegen/rust"
	"github.com/teranos/derivegen/shape"
)

// DefaultCapability is the trait the generated impl provides and requires.
const DefaultCapability = "::std::fmt::Debug"

// Generator generates Debug implementations.
type Generator struct {
	classifier *shape.Classifier
	attr       string
	capability string
}

// Option configures a Generator.
type Option func(*Generator)

// WithClassifier sets the shape classifier.
func WithClassifier(c *shape.Classifier) Option {
	return func(g *Generator) { g.classifier = c }
}

// WithAttribute sets the attribute name directives are read from.
func WithAttribute(attr string) Option {
	return func(g *Generator) { g.attr = attr }
}

// WithCapability sets the Debug trait path, e.g. "::core::fmt::Debug".
// Formatter and Result are taken from the same module.
func WithCapability(path string) Option {
	return func(g *Generator) {
		if path != "" {
			g.capability = path
		}
	}
}

// New creates a debug formatter generator.
func New(opts ...Option) *Generator {
	g := &Generator{
		classifier: shape.New(),
		attr:       "debug",
		capability: DefaultCapability,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Name identifies the generator in derive lists.
func (g *Generator) Name() string { return "CustomDebug" }

// Generate plans and emits the impl for td.
func (g *Generator) Generate(td *descriptor.TypeDescriptor) (string, error) {
	plan, err := g.Plan(td)
	if err != nil {
		return "", err
	}
	return g.Emit(td, plan), nil
}

// Emit renders `impl Debug for Name` producing `Name { f: v, .. }` in
// declared field order.
func (g *Generator) Emit(td *descriptor.TypeDescriptor, plan *Plan) string {
	module := g.module()
	crate := "::std"
	if parts := strings.SplitN(strings.TrimPrefix(module, "::"), "::", 2); parts[0] != "" {
		crate = "::" + parts[0]
	}

	var w rust.Writer
	w.OpenWhere("impl"+td.ImplGenerics()+" "+g.capability+" for "+td.SelfType(), plan.Bounds.Predicates)
	w.Open("fn fmt(&self, f: &mut %s::Formatter<'_>) -> %s::Result", module, module)
	w.Line("f.debug_struct(%s)", rust.Quote(rust.Unraw(td.Name)))
	w.Indent()
	for _, fp := range plan.Fields {
		name := rust.Ident(fp.Name)
		if fp.HasTemplate {
			w.Line(".field(%s, &%s::format_args!(%s, self.%s))",
				rust.Quote(rust.Unraw(fp.Name)), crate, rust.Quote(fp.Template), name)
			continue
		}
		w.Line(".field(%s, &self.%s)", rust.Quote(rust.Unraw(fp.Name)), name)
	}
	w.Line(".finish()")
	w.Dedent()
	w.Close("")
	w.Close("")
	return w.String()
}

// module is the path the capability trait lives in.
func (g *Generator) module() string {
	if i := strings.LastIndex(g.capability, "::"); i > 0 {
		return g.capability[:i]
	}
	return "::std::fmt"
}
