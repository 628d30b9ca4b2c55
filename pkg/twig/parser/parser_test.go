package parser

import (
	"errors"
	"strconv"
	"testing"

	"mercator-hq/sdclint/pkg/twig/ast"
)

func mustParse(t *testing.T, source string) *ast.Node {
	t.Helper()
	root, err := Parse(source)
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", source, err)
	}
	return root
}

// firstExpr returns the expression of the first print statement.
func firstExpr(t *testing.T, source string) *ast.Node {
	t.Helper()
	prints := ast.Find(mustParse(t, source), ast.KindPrint)
	if len(prints) == 0 {
		t.Fatalf("no print statement in %q", source)
	}
	return prints[0].Child(ast.SlotExpr)
}

func TestParse_Filter(t *testing.T) {
	expr := firstExpr(t, "{{ foo|default('bar')|upper }}")

	if expr.Kind() != ast.KindFilter || expr.Name() != "upper" {
		t.Fatalf("outer = %s %q, want filter upper", expr.Kind(), expr.Name())
	}
	inner := expr.Child(ast.SlotNode)
	if inner.Kind() != ast.KindFilter || inner.Name() != "default" {
		t.Fatalf("inner = %s %q, want filter default", inner.Kind(), inner.Name())
	}
	if got := inner.Child(ast.SlotNode).Name(); got != "foo" {
		t.Errorf("piped name = %q, want foo", got)
	}
	args := inner.Child(ast.SlotArguments)
	if args.Len() != 1 || args.Child("0").Attr(ast.AttrValue) != "bar" {
		t.Errorf("default() arguments = %d, want one 'bar' constant", args.Len())
	}
	if expr.Child(ast.SlotArguments).Len() != 0 {
		t.Error("upper should have an empty argument list")
	}
}

func TestParse_FilterBindsTighterThanBinary(t *testing.T) {
	expr := firstExpr(t, "{{ 'foo-' ~ quux|default(random()) }}")
	if expr.Kind() != ast.KindBinary {
		t.Fatalf("Kind() = %s, want binary", expr.Kind())
	}
	right := expr.Child(ast.SlotRight)
	if right.Kind() != ast.KindFilter || right.Name() != "default" {
		t.Errorf("right = %s %q, want filter default", right.Kind(), right.Name())
	}
	fn := right.Child(ast.SlotArguments).Child("0")
	if fn.Kind() != ast.KindFunction || fn.Name() != "random" {
		t.Errorf("argument = %s %q, want function random", fn.Kind(), fn.Name())
	}
}

func TestParse_UnaryMinusWrapsFilter(t *testing.T) {
	expr := firstExpr(t, "{{ -5 | clean_id }}")
	if expr.Kind() != ast.KindUnary {
		t.Fatalf("Kind() = %s, want unary", expr.Kind())
	}
	filter := expr.Child(ast.SlotNode)
	if filter.Kind() != ast.KindFilter || !filter.Child(ast.SlotNode).IsNumber() {
		t.Errorf("operand = %s, want clean_id filter on a number", filter.Kind())
	}
}

func TestParse_Ternary(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		hasExpr3 bool
		sameName bool
	}{
		{"full", "{{ a ? b : c }}", true, false},
		{"no else", "{{ a ? b }}", false, false},
		{"shorthand", "{{ a ?: b }}", true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expr := firstExpr(t, tt.source)
			if expr.Kind() != ast.KindConditional {
				t.Fatalf("Kind() = %s, want conditional", expr.Kind())
			}
			if got := expr.HasChild(ast.SlotExpr3); got != tt.hasExpr3 {
				t.Errorf("HasChild(expr3) = %v, want %v", got, tt.hasExpr3)
			}
			same := expr.Child(ast.SlotExpr1).Name() == expr.Child(ast.SlotExpr2).Name()
			if same != tt.sameName {
				t.Errorf("expr1 and expr2 same name = %v, want %v", same, tt.sameName)
			}
		})
	}
}

func TestParse_ChainedTernaryIsRightNested(t *testing.T) {
	expr := firstExpr(t, "{{ a ? b : c ? d : e }}")
	nested := expr.Child(ast.SlotExpr3)
	if nested.Kind() != ast.KindConditional {
		t.Fatalf("expr3 = %s, want conditional", nested.Kind())
	}
	if nested.Child(ast.SlotExpr1).Name() != "c" {
		t.Errorf("nested test = %q, want c", nested.Child(ast.SlotExpr1).Name())
	}
	if expr.Location().Column == nested.Location().Column {
		t.Error("nested conditional should start at a different column")
	}
}

func TestParse_NullCoalesce(t *testing.T) {
	expr := firstExpr(t, "{{ foo ?? 'bar' }}")
	if expr.Kind() != ast.KindConditional || !expr.BoolAttr(ast.AttrNullCoalesce) {
		t.Fatalf("Kind() = %s, want null-coalescing conditional", expr.Kind())
	}
	test := expr.Child(ast.SlotExpr1)
	if test.Kind() != ast.KindBinary || test.Attr(ast.AttrOperator) != "and" {
		t.Fatalf("expr1 = %s, want and", test.Kind())
	}
	if got := test.Child(ast.SlotLeft).Name(); got != "defined" {
		t.Errorf("left test = %q, want defined", got)
	}
	not := test.Child(ast.SlotRight)
	if not.Kind() != ast.KindUnary || not.Child(ast.SlotNode).Name() != "null" {
		t.Errorf("right = %s, want not(null test)", not.Kind())
	}
}

func TestParse_Tests(t *testing.T) {
	tests := []struct {
		source  string
		name    string
		negated bool
		args    int
	}{
		{"{{ foo is defined }}", "defined", false, 0},
		{"{{ foo is not null }}", "null", true, 0},
		{"{{ foo is same as(false) }}", "same as", false, 1},
		{"{{ foo is divisible by(3) }}", "divisible by", false, 1},
		{"{{ foo is constant('X') }}", "constant", false, 1},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			expr := firstExpr(t, tt.source)
			if tt.negated {
				if expr.Kind() != ast.KindUnary {
					t.Fatalf("Kind() = %s, want unary", expr.Kind())
				}
				expr = expr.Child(ast.SlotNode)
			}
			if expr.Kind() != ast.KindTest {
				t.Fatalf("Kind() = %s, want test", expr.Kind())
			}
			if expr.Name() != tt.name {
				t.Errorf("Name() = %q, want %q", expr.Name(), tt.name)
			}
			if got := expr.Child(ast.SlotArguments).Len(); got != tt.args {
				t.Errorf("arguments = %d, want %d", got, tt.args)
			}
		})
	}
}

func TestParse_GetAttr(t *testing.T) {
	tests := []struct {
		source   string
		callType string
		attr     any
	}{
		{"{{ foo.bar }}", ast.CallTypeAny, "bar"},
		{"{{ foo.bar() }}", ast.CallTypeMethod, "bar"},
		{"{{ foo['#bar'] }}", ast.CallTypeArray, "#bar"},
		{"{{ foo.0 }}", ast.CallTypeAny, int64(0)},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			expr := firstExpr(t, tt.source)
			if expr.Kind() != ast.KindGetAttr {
				t.Fatalf("Kind() = %s, want get_attr", expr.Kind())
			}
			if got, _ := expr.StringAttr(ast.AttrCallType); got != tt.callType {
				t.Errorf("call type = %q, want %q", got, tt.callType)
			}
			if got := expr.Child(ast.SlotAttribute).Attr(ast.AttrValue); got != tt.attr {
				t.Errorf("attribute = %v, want %v", got, tt.attr)
			}
		})
	}
}

func TestParse_Literals(t *testing.T) {
	expr := firstExpr(t, "{{ {a: 1, 'b': [true, null, 1.5], (c): d, e} }}")
	if expr.Kind() != ast.KindHash {
		t.Fatalf("Kind() = %s, want hash", expr.Kind())
	}
	if expr.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", expr.Len())
	}
	arr := expr.Child("1").Child(ast.SlotValue)
	if arr.Kind() != ast.KindArray || arr.Len() != 3 {
		t.Fatalf("second value = %s len %d, want array of 3", arr.Kind(), arr.Len())
	}
	if !arr.Child("0").IsBool() || !arr.Child("1").IsNull() || !arr.Child("2").IsNumber() {
		t.Error("array literal types do not match")
	}
	if expr.Child("2").Child(ast.SlotKey).Kind() != ast.KindName {
		t.Error("parenthesized key should be an expression")
	}
	short := expr.Child("3").Child(ast.SlotValue)
	if short.Kind() != ast.KindName || short.Name() != "e" {
		t.Errorf("shorthand value = %s %q, want name e", short.Kind(), short.Name())
	}
}

func TestParse_ArrowFunction(t *testing.T) {
	expr := firstExpr(t, "{{ items|map((v, k) => k ~ v)|filter(x => x) }}")
	mapFilter := expr.Child(ast.SlotNode)
	arrow := mapFilter.Child(ast.SlotArguments).Child("0")
	if arrow.Kind() != ast.KindArrow {
		t.Fatalf("map argument = %s, want arrow", arrow.Kind())
	}
	if got := arrow.Child(ast.SlotParams).Len(); got != 2 {
		t.Errorf("params = %d, want 2", got)
	}
	if expr.Child(ast.SlotArguments).Child("0").Kind() != ast.KindArrow {
		t.Error("filter argument should be an arrow function")
	}
}

func TestParse_NamedArguments(t *testing.T) {
	expr := firstExpr(t, "{{ include('x', with_context = false) }}")
	arg := expr.Child(ast.SlotArguments).Child("1")
	if arg.Kind() != ast.KindNamedArgument || arg.Name() != "with_context" {
		t.Errorf("argument = %s %q, want named with_context", arg.Kind(), arg.Name())
	}
}

func TestParse_Slice(t *testing.T) {
	expr := firstExpr(t, "{{ foo[1:2] }}")
	if expr.Kind() != ast.KindFilter || expr.Name() != "slice" {
		t.Errorf("foo[1:2] = %s %q, want slice filter", expr.Kind(), expr.Name())
	}
}

func TestParse_Spread(t *testing.T) {
	expr := firstExpr(t, "{{ [1, ...items] ~ {...defaults, a: 1}|length }}")
	arr := expr.Child(ast.SlotLeft)
	if spread := arr.Child("1"); spread.Kind() != ast.KindSpread || spread.Child(ast.SlotNode).Name() != "items" {
		t.Errorf("array element = %s, want spread of items", spread.Kind())
	}
	hash := expr.Child(ast.SlotRight).Child(ast.SlotNode)
	if hash.Len() != 2 || hash.Child("0").Kind() != ast.KindSpread || hash.Child("1").Kind() != ast.KindPair {
		t.Errorf("hash = %d elements, want spread then pair", hash.Len())
	}
}

func TestParse_Macros(t *testing.T) {
	src := `{% import 'forms.twig' as forms %}
{% from _self import input as field, label %}
{% macro card(heading, level = 2) %}<h{{ level }}>{{ heading }}</h{{ level }}>{% endmacro card %}`

	root := mustParse(t, src)

	imp := ast.Find(root, ast.KindImport)
	if len(imp) != 1 || imp[0].Child(ast.SlotTargets).Child("0").Name() != "forms" {
		t.Fatal("import alias not parsed")
	}

	from := ast.Find(root, ast.KindFrom)
	if len(from) != 1 {
		t.Fatalf("from nodes = %d, want 1", len(from))
	}
	if from[0].Line() != 2 || from[0].Child(ast.SlotTemplate).Name() != "_self" {
		t.Errorf("from = line %d template %q", from[0].Line(), from[0].Child(ast.SlotTemplate).Name())
	}
	targets := from[0].Child(ast.SlotTargets)
	for i, want := range [][2]string{{"field", "input"}, {"label", "label"}} {
		target := targets.Child(strconv.Itoa(i))
		if macro, _ := target.StringAttr(ast.AttrMacro); target.Name() != want[0] || macro != want[1] {
			t.Errorf("target[%d] = %q from %q, want %q from %q", i, target.Name(), macro, want[0], want[1])
		}
	}

	macros := ast.Find(root, ast.KindMacro)
	if len(macros) != 1 || macros[0].Name() != "card" {
		t.Fatal("macro not parsed")
	}
	params := macros[0].Child(ast.SlotTargets)
	if params.Len() != 2 || params.Child("0").Name() != "heading" {
		t.Fatalf("params = %d, want heading and level", params.Len())
	}
	if !params.Child("1").Child(ast.SlotValue).IsNumber() {
		t.Error("level default not parsed")
	}
	if len(ast.Find(macros[0], ast.KindPrint)) != 3 {
		t.Error("macro body not parsed")
	}
}

func TestParse_Statements(t *testing.T) {
	src := `{% set a, b = 1, 2 %}
{% set c %}captured{% endset %}
{% for key, item in items %}{{ loop.index }}{% else %}none{% endfor %}
{% if a %}x{% elseif b %}y{% else %}z{% endif %}
{% do a ? b : c %}
{% flush %}
{% sandbox %}{% include 'x.twig' %}{% endsandbox %}
{% embed 'y.twig' with {a: 1} only %}{% block content %}inner{% endblock content %}{% endembed %}
{% block title 'Short' %}
{% trans %}One {{ a }}{% plural b %}Many{% endtrans %}
{% apply upper|trim %}text{% endapply %}
{% with {d: 1} only %}{{ d }}{% endwith %}
{% autoescape 'html' %}{{ a }}{% endautoescape %}
{% extends 'base.twig' %}`

	root := mustParse(t, src)
	kinds := map[ast.Kind]int{}
	ast.Inspect(root, func(n *ast.Node) bool {
		kinds[n.Kind()]++
		return true
	})

	for _, k := range []ast.Kind{
		ast.KindSet, ast.KindFor, ast.KindIf, ast.KindDo, ast.KindFlush, ast.KindSandbox,
		ast.KindInclude, ast.KindEmbed, ast.KindBlock, ast.KindTrans, ast.KindApply,
		ast.KindWith, ast.KindAutoescape, ast.KindExtends,
	} {
		if kinds[k] == 0 {
			t.Errorf("no %s node parsed", k)
		}
	}
	if kinds[ast.KindSet] != 2 {
		t.Errorf("set nodes = %d, want 2", kinds[ast.KindSet])
	}

	forNode := ast.Find(root, ast.KindFor)[0]
	if forNode.Line() != 3 {
		t.Errorf("for Line() = %d, want 3", forNode.Line())
	}
	if forNode.Child(ast.SlotKeyTarget).Name() != "key" || forNode.Child(ast.SlotValueTarget).Name() != "item" {
		t.Error("for targets not parsed as key, item")
	}
	if !forNode.HasChild(ast.SlotElse) {
		t.Error("for else branch missing")
	}
	wantSlots := []string{ast.SlotSeq, ast.SlotKeyTarget, ast.SlotValueTarget, ast.SlotBody, ast.SlotElse}
	for i, s := range forNode.Slots() {
		if s != wantSlots[i] {
			t.Errorf("for slot[%d] = %q, want %q", i, s, wantSlots[i])
		}
	}

	ifNode := ast.Find(root, ast.KindIf)[0]
	if ifNode.Child(ast.SlotTests).Len() != 2 || !ifNode.HasChild(ast.SlotElse) {
		t.Error("if should have two branches and an else")
	}

	set := ast.Find(root, ast.KindSet)[0]
	if set.Slots()[0] != ast.SlotValues {
		t.Error("set should list values before targets")
	}

	embed := ast.Find(root, ast.KindEmbed)[0]
	if !embed.BoolAttr(ast.AttrOnly) || !embed.HasChild(ast.SlotVariables) {
		t.Error("embed options not parsed")
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name    string
		source  string
		message string
		line    int
	}{
		{"unknown tag", "\n{% foo %}", `Unknown "foo" tag.`, 2},
		{"unexpected end tag", "{% endif %}", `Unexpected "endif" tag.`, 1},
		{"unclosed if", "{% if a %}\nfoo", `Unclosed "if" block.`, 1},
		{"set count mismatch", "{% set a, b = 1 %}", "When using set, you must have the same number of variables and assignments.", 1},
		{"reserved target", "{% set true = 1 %}", `You cannot assign a value to "true".`, 1},
		{"array comma", "{{ [1 2] }}", "An array element must be followed by a comma.", 1},
		{"hash colon", "{{ {a 1} }}", "A hash key must be followed by a colon (:).", 1},
		{"missing expression", "{{ }}", `Unexpected end of print statement "}}".`, 1},
		{"bad endblock", "{% block a %}{% endblock b %}", `Expected endblock for block "a" (but "b" given).`, 1},
		{"lexer error", "{{ 'x }}", "Unclosed string.", 1},
		{"import aliases", "{% import 'x' as a, b %}", "An import must have exactly one alias.", 1},
		{"bad endmacro", "{% macro a() %}{% endmacro b %}", `Expected endmacro for macro "a" (but "b" given).`, 1},
		{"reserved macro param", "{% macro a(null) %}{% endmacro %}", `You cannot assign a value to "null".`, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.source)
			var se *SyntaxError
			if !errors.As(err, &se) {
				t.Fatalf("Parse() error = %v, want *SyntaxError", err)
			}
			if se.Message != tt.message {
				t.Errorf("Message = %q, want %q", se.Message, tt.message)
			}
			if se.Line != tt.line {
				t.Errorf("Line = %d, want %d", se.Line, tt.line)
			}
		})
	}
}

func TestParser_WithMaxDepth(t *testing.T) {
	_, err := NewParser().WithMaxDepth(4).Parse("{{ ((((((a)))))) }}")
	if err == nil {
		t.Fatal("Parse() error = nil, want depth error")
	}

	if _, err := NewParser().Parse("{{ ((((((a)))))) }}"); err != nil {
		t.Errorf("Parse() with default depth error = %v", err)
	}
}
