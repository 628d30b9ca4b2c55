package schema

import (
	"fmt"
	"reflect"
	"testing"

	"mercator-hq/sdclint/pkg/component"
	"mercator-hq/sdclint/pkg/lint/diagnostic"
)

func parse(t *testing.T, data string) *component.Definition {
	t.Helper()
	def, err := component.Parse([]byte(data), "error.component.yml", "demo")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return def
}

func format(diags diagnostic.List) []string {
	var out []string
	for _, d := range diags {
		out = append(out, fmt.Sprintf("%d %s %s", d.Line, d.Severity, d.Message))
	}
	return out
}

func TestCheck(t *testing.T) {
	def := parse(t, `name: Error
variants:
  default:
    title: Default
slots:
  body:
    required: true
  footer: {}
props:
  type: object
  required: [label]
  properties:
    label:
      type: string
    size:
      type: string
      enum: [small, large]
      default: medium
    untyped:
      title: Untyped
    nothing:
      type: object
    array:
      type: array
    array_object:
      type: array
      items:
        type: object
    links:
      type: array
      $ref: ui-patterns://links
    ok_object:
      type: object
      properties:
        a:
          type: string
`)

	want := []string{
		"2 NOTICE A single variant does not need to be declared.",
		"6 WARNING Required slots are not recommended.",
		"11 WARNING Required props are not recommended. Use default values instead.",
		"15 ERROR Default value must be in the enum.",
		"19 ERROR Missing type for this property.",
		"21 WARNING Empty object.",
		"23 WARNING Empty array.",
		"25 WARNING Array of empty object.",
	}
	got := Check(def)
	if !reflect.DeepEqual(format(got), want) {
		t.Errorf("Check() = %q, want %q", format(got), want)
	}
	for _, d := range got {
		if d.Kind != diagnostic.KindSchema || d.ID != "demo:error" {
			t.Errorf("diagnostic %+v: want schema kind and id demo:error", d)
		}
	}
}

func TestCheck_Clean(t *testing.T) {
	def := parse(t, `name: Clean
variants:
  primary: {}
  secondary: {}
props:
  type: object
  properties:
    level:
      type: integer
      enum: [2, 3]
      default: 2
`)
	if got := Check(def); len(got) != 0 {
		t.Errorf("Check() = %q, want none", format(got))
	}
	if got := Check(nil); got != nil {
		t.Errorf("Check(nil) = %v", got)
	}
}

func TestDefault(t *testing.T) {
	def := parse(t, "variants:\n  only: {}\n")
	if got := Default.Check(def); len(got) != 1 {
		t.Errorf("Default.Check() = %q", format(got))
	}
}
