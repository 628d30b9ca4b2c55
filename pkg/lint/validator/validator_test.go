package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"
	"testing"

	"mercator-hq/sdclint/pkg/component"
	"mercator-hq/sdclint/pkg/lint/diagnostic"
	"mercator-hq/sdclint/pkg/lint/engine"
	"mercator-hq/sdclint/pkg/lint/rules"
	"mercator-hq/sdclint/pkg/twig/ast"
)

func newValidator(t *testing.T, opts ...Option) *Validator {
	t.Helper()
	v, err := New(opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return v
}

func format(diags diagnostic.List) []string {
	var out []string
	for _, d := range diags {
		out = append(out, fmt.Sprintf("%s %d %s %s", d.Kind, d.Line, d.Severity, d.Message))
	}
	return out
}

func TestValidateSource(t *testing.T) {
	source := "{% set unused = 1 %}\n{{ title|render }}\n{{ a ? b : c ? d : e }}"
	got := newValidator(t).ValidateSource(source)

	want := []string{
		"template 0 ERROR Unused variables: unused",
		"template 2 ERROR Forbidden Twig filter: 'render'. Please ensure you are not rendering content too early.",
		"template 2 ERROR Unknown variable: 'title'.",
		"template 3 ERROR No chained ternary",
		"template 3 ERROR Unknown variable: 'a'.",
		"template 3 ERROR Unknown variable: 'b'.",
		"template 3 ERROR Unknown variable: 'c'.",
		"template 3 ERROR Unknown variable: 'd'.",
		"template 3 ERROR Unknown variable: 'e'.",
	}
	if !reflect.DeepEqual(format(got), want) {
		t.Errorf("ValidateSource() = %q, want %q", format(got), want)
	}

	if got[1].SourceExcerpt != "{{ title|render }}" {
		t.Errorf("SourceExcerpt = %q", got[1].SourceExcerpt)
	}
	if got[0].SourceExcerpt != "" {
		t.Errorf("line 0 SourceExcerpt = %q, want empty", got[0].SourceExcerpt)
	}
}

func TestValidateSource_ParseFailure(t *testing.T) {
	got := newValidator(t).ValidateSource("ok\n{{ foo }\n{{ render() }}")
	if len(got) != 1 {
		t.Fatalf("ValidateSource() = %q, want a single diagnostic", format(got))
	}
	d := got[0]
	if d.Severity != diagnostic.Critical || d.Line != 2 || d.Rule != "parse" {
		t.Errorf("parse failure = %+v", d)
	}
	if strings.Contains(d.Message, "at line") {
		t.Errorf("Message = %q, line repeated", d.Message)
	}
}

func TestValidateSource_Idempotent(t *testing.T) {
	v := newValidator(t)
	source := "{% for i in items %}{{ i|e }}{{ loop.parent }}{% endfor %}{{ x.y() }}"
	first := v.ValidateSource(source)
	second := v.ValidateSource(source)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("ValidateSource() not idempotent:\n%q\n%q", format(first), format(second))
	}
}

func TestValidateSource_Options(t *testing.T) {
	tests := []struct {
		name   string
		opts   []Option
		source string
		want   []string
	}{
		{
			name:   "known variables",
			opts:   []Option{WithKnownVariables("site_name")},
			source: "{{ site_name }}",
		},
		{
			name:   "disabled unused",
			opts:   []Option{WithDisabledRules(rules.NameUnused)},
			source: "{% set a = 1 %}",
		},
		{
			name:   "disabled node rule",
			opts:   []Option{WithDisabledRules(rules.NameName)},
			source: "{{ nope }}",
		},
		{
			name:   "no excerpt",
			opts:   []Option{WithExcerptLength(0)},
			source: "{{ nope }}",
			want:   []string{"template 1 ERROR Unknown variable: 'nope'."},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := newValidator(t, tt.opts...).ValidateSource(tt.source)
			if !reflect.DeepEqual(format(got), tt.want) {
				t.Errorf("ValidateSource() = %q, want %q", format(got), tt.want)
			}
			for _, d := range got {
				if d.SourceExcerpt != "" {
					t.Errorf("SourceExcerpt = %q, want empty", d.SourceExcerpt)
				}
			}
		})
	}
}

const definition = `name: Card
variants:
  default: {}
props:
  type: object
  properties:
    title:
      type: string
    flag:
      type: boolean
    subtitle:
      type: string
slots:
  body: {}
`

func card(t *testing.T, template string) *component.Definition {
	t.Helper()
	def, err := component.Parse([]byte(definition), "card.component.yml", "demo")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	def.TemplatePath = "card.twig"
	def.Template = template
	return def
}

func TestValidateComponent(t *testing.T) {
	def := card(t, "{{ title|t }}\n{{ flag|default('x') }}\n{{ body }}")
	got := newValidator(t).ValidateComponent("", def)

	want := []string{
		"schema 2 NOTICE A single variant does not need to be declared.",
		"template 1 NOTICE Filter 'trans' or 't' unsafe translation, do not translate variables!",
		"template 2 ERROR Don't use 'default' filter on boolean.",
	}
	if !reflect.DeepEqual(format(got), want) {
		t.Errorf("ValidateComponent() = %q, want %q", format(got), want)
	}
	for _, d := range got {
		if d.ID != "demo:card" {
			t.Errorf("ID = %q, want demo:card", d.ID)
		}
	}
}

func TestValidateComponent_UnusedInputs(t *testing.T) {
	def := card(t, "{% set local = 1 %}{{ title }}")
	v := newValidator(t, WithReportUnusedInputs(true), WithSchemaChecker(nil))

	got := format(v.ValidateComponent("custom:id", def))
	want := []string{"template 0 ERROR Unused variables: local, flag, subtitle, body"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ValidateComponent() = %q, want %q", got, want)
	}
}

func TestValidateComponent_NoTemplate(t *testing.T) {
	def := card(t, "")
	def.TemplatePath = ""
	got := newValidator(t).ValidateComponent("", def)
	if len(got) != 1 || got[0].Kind != diagnostic.KindSchema {
		t.Errorf("ValidateComponent() = %q", format(got))
	}
	if got := newValidator(t).ValidateComponent("x", nil); got != nil {
		t.Errorf("ValidateComponent(nil) = %v", got)
	}
}

type failingParser struct{}

func (failingParser) Parse(string) (*ast.Node, error) {
	return nil, errors.New("parser unavailable")
}

func TestWithParser(t *testing.T) {
	got := newValidator(t, WithParser(failingParser{})).ValidateSource("{{ x }}")
	if want := []string{"template 0 CRITICAL parser unavailable"}; !reflect.DeepEqual(format(got), want) {
		t.Errorf("ValidateSource() = %q, want %q", format(got), want)
	}

	if _, err := New(WithParser(nil)); err == nil {
		t.Error("New(WithParser(nil)) error = nil")
	}
}

type panicRule struct{}

func (panicRule) Name() string { return "panics" }

func (panicRule) Check(node *ast.Node, ctx *engine.Context) []diagnostic.Diagnostic {
	panic("boom")
}

func TestWithRegistry_FaultIsolation(t *testing.T) {
	reg := engine.NewRegistry()
	reg.MustRegister(ast.KindFilter, panicRule{})

	var failures []string
	v := newValidator(t,
		WithRegistry(reg),
		WithEngineOptions(engine.WithFailureHook(func(rule string, _ *ast.Node, _ any) {
			failures = append(failures, rule)
		})),
	)

	got := format(v.ValidateSource("{{ 'a'|upper }}\n{{ 'b'|lower }}"))
	want := []string{
		"template 1 CRITICAL Rule 'panics' failed: boom",
		"template 2 CRITICAL Rule 'panics' failed: boom",
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ValidateSource() = %q, want %q", got, want)
	}
	if len(failures) != 2 {
		t.Errorf("failure hook calls = %v", failures)
	}
}

func TestValidator_Concurrent(t *testing.T) {
	v := newValidator(t)
	source := "{% set a = 1 %}{{ b|render }}"
	want := format(v.ValidateSource(source))

	var wg sync.WaitGroup
	errs := make(chan string, 16)
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if got := format(v.ValidateSource(source)); !reflect.DeepEqual(got, want) {
				errs <- strings.Join(got, "; ")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Errorf("concurrent result differs: %s", e)
	}
}
