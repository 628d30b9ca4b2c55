package validator

import (
	"errors"
	"log/slog"
	"slices"

	"mercator-hq/sdclint/pkg/component"
	"mercator-hq/sdclint/pkg/lint/diagnostic"
	"mercator-hq/sdclint/pkg/lint/engine"
	"mercator-hq/sdclint/pkg/lint/rules"
	"mercator-hq/sdclint/pkg/lint/schema"
	"mercator-hq/sdclint/pkg/lint/scope"
	"mercator-hq/sdclint/pkg/twig/ast"
	"mercator-hq/sdclint/pkg/twig/parser"
)

// DefaultExcerptLength is the number of source lines kept per diagnostic.
const DefaultExcerptLength = 1

// Parser turns template source into a tree.
type Parser interface {
	Parse(source string) (*ast.Node, error)
}

// Validator lints templates and component definitions. It holds no
// per-call state and is safe for concurrent use.
type Validator struct {
	registry           *engine.Registry
	parser             Parser
	logger             *slog.Logger
	known              []string
	reportUnusedInputs bool
	schema             schema.Checker
	excerptLength      int
	disabled           []string
	engineOpts         []engine.Option

	engine *engine.Engine
}

// Option configures a Validator.
type Option func(*Validator)

// WithRegistry replaces the built-in rules.
func WithRegistry(reg *engine.Registry) Option {
	return func(v *Validator) {
		v.registry = reg
	}
}

// WithParser replaces the template parser.
func WithParser(p Parser) Option {
	return func(v *Validator) {
		v.parser = p
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// WithKnownVariables adds names that templates may use without declaring,
// such as variables injected by a theme preprocess hook.
func WithKnownVariables(names ...string) Option {
	return func(v *Validator) {
		v.known = append(v.known, names...)
	}
}

// WithReportUnusedInputs also reports declared props and slots the
// template never references.
func WithReportUnusedInputs(report bool) Option {
	return func(v *Validator) {
		v.reportUnusedInputs = report
	}
}

// WithSchemaChecker replaces the definition checker. A nil checker turns
// schema checks off.
func WithSchemaChecker(c schema.Checker) Option {
	return func(v *Validator) {
		v.schema = c
	}
}

// WithExcerptLength sets how many source lines are copied into each
// diagnostic. Zero disables excerpts.
func WithExcerptLength(n int) Option {
	return func(v *Validator) {
		v.excerptLength = n
	}
}

// WithDisabledRules turns rules off by name, including the unused
// variables check.
func WithDisabledRules(names ...string) Option {
	return func(v *Validator) {
		v.disabled = append(v.disabled, names...)
	}
}

// WithEngineOptions passes options to the rule engine, such as a failure
// hook.
func WithEngineOptions(opts ...engine.Option) Option {
	return func(v *Validator) {
		v.engineOpts = append(v.engineOpts, opts...)
	}
}

// New creates a validator with the built-in rules unless WithRegistry is
// given.
func New(opts ...Option) (*Validator, error) {
	v := &Validator{
		parser:        parser.NewParser(),
		logger:        slog.New(slog.DiscardHandler),
		schema:        schema.Default,
		excerptLength: DefaultExcerptLength,
	}
	for _, opt := range opts {
		opt(v)
	}

	if v.registry == nil {
		reg, err := rules.Default(rules.Options{})
		if err != nil {
			return nil, err
		}
		v.registry = reg
	}
	if v.parser == nil {
		return nil, errors.New("validator: nil parser")
	}

	engineOpts := append([]engine.Option{
		engine.WithLogger(v.logger),
		engine.WithDisabledRules(v.disabled...),
	}, v.engineOpts...)
	v.engine = engine.New(v.registry, engineOpts...)
	return v, nil
}

// Registry returns the rules in use.
func (v *Validator) Registry() *engine.Registry {
	return v.registry
}

// ValidateSource lints a bare template with no declared inputs.
func (v *Validator) ValidateSource(source string) diagnostic.List {
	return v.validateTemplate("", source, nil).Dedup().Sort()
}

// ValidateComponent lints a component: definition diagnostics first, then
// the template with the declared inputs in scope.
func (v *Validator) ValidateComponent(id string, def *component.Definition) diagnostic.List {
	if def == nil {
		return nil
	}
	if id == "" {
		id = def.ID
	}

	var out diagnostic.List
	if v.schema != nil {
		for _, d := range v.schema.Check(def) {
			out = append(out, d.WithID(id))
		}
	}

	if def.HasTemplate() {
		inputs := make([]engine.Input, 0, len(def.Props)+len(def.Slots))
		for _, in := range def.Inputs() {
			inputs = append(inputs, engine.Input{Name: in.Name, Type: string(in.Type)})
		}
		out = append(out, v.validateTemplate(id, def.Template, inputs)...)
	} else {
		v.logger.Debug("component has no template", "component", id)
	}

	return out.Dedup().Sort()
}

func (v *Validator) validateTemplate(id, source string, inputs []engine.Input) diagnostic.List {
	root, err := v.parser.Parse(source)
	if err != nil {
		return diagnostic.List{v.parseFailure(id, source, err)}
	}

	ctx := engine.NewContext(id, source, inputs, scope.WithReportUnusedInputs(v.reportUnusedInputs))
	for _, name := range v.known {
		ctx.Scope.Inject(name)
	}

	diags := v.engine.Run(root, ctx)
	if !slices.Contains(v.disabled, rules.NameUnused) {
		diags = append(diags, rules.UnusedVariables(ctx)...)
	}

	if v.excerptLength > 0 {
		for i := range diags {
			diags[i] = diags[i].WithExcerpt(source, v.excerptLength)
		}
	}

	v.logger.Debug("template validated",
		"component", id,
		"diagnostics", len(diags),
	)
	return diags
}

// parseFailure turns a parser error into the single diagnostic of the
// call.
func (v *Validator) parseFailure(id, source string, err error) diagnostic.Diagnostic {
	line, column, msg := 0, 0, err.Error()
	var syntaxErr *parser.SyntaxError
	if errors.As(err, &syntaxErr) {
		line, column, msg = syntaxErr.Line, syntaxErr.Column, syntaxErr.Message
	}

	v.logger.Debug("template parse failed", "component", id, "line", line, "error", msg)

	d := diagnostic.New(id, line, diagnostic.Critical, msg)
	d.Column = column
	d.Rule = "parse"
	if v.excerptLength > 0 {
		d = d.WithExcerpt(source, v.excerptLength)
	}
	return d
}
