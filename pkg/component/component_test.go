package component

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"golang.org/x/tools/txtar"
)

// extract writes a txtar archive into a temporary directory.
func extract(t *testing.T, archive string) string {
	t.Helper()
	dir := t.TempDir()
	for _, f := range txtar.Parse([]byte(archive)).Files {
		path := filepath.Join(dir, f.Name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, f.Data, 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

const project = `
-- components/card/card.component.yml --
name: Card
props:
  type: object
  required:
    - title
  properties:
    title:
      type: string
    level:
      type: integer
      enum: [2, 3]
      default: 2
    flag:
      type: [boolean, "null"]
    attributes:
      type: Drupal\Core\Template\Attribute
    links:
      $ref: ui-patterns://links
slots:
  body:
    title: Body
    required: true
variants:
  default:
    title: Default
-- components/card/card.twig --
<h{{ level }}>{{ title }}</h{{ level }}>
-- components/badge/badge.component.yml --
name: Badge
-- node_modules/skip/skip.component.yml --
name: Skipped
-- README.md --
not a component
`

func TestDiscover(t *testing.T) {
	dir := extract(t, project)

	defs, err := Discover(dir, "demo")
	if err != nil {
		t.Fatalf("Discover() error = %v", err)
	}

	var ids []string
	for _, d := range defs {
		ids = append(ids, d.ID)
	}
	if want := []string{"demo:badge", "demo:card"}; !reflect.DeepEqual(ids, want) {
		t.Fatalf("Discover() ids = %v, want %v", ids, want)
	}

	badge, card := defs[0], defs[1]
	if badge.HasTemplate() {
		t.Error("badge HasTemplate() = true")
	}
	if !card.HasTemplate() || card.Template != "<h{{ level }}>{{ title }}</h{{ level }}>\n" {
		t.Errorf("card template = %q", card.Template)
	}
	if card.Label != "Card" {
		t.Errorf("Label = %q, want Card", card.Label)
	}
}

func TestParse_Inputs(t *testing.T) {
	dir := extract(t, project)
	def, err := Load(filepath.Join(dir, "components/card/card.component.yml"), "demo")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := []Input{
		{Name: "title", Type: TypeString},
		{Name: "level", Type: TypeEnum},
		{Name: "flag", Type: TypeBoolean},
		{Name: "attributes", Type: TypeObject},
		{Name: "links", Type: TypeList},
		{Name: "body", Type: TypeSlot},
	}
	if got := def.Inputs(); !reflect.DeepEqual(got, want) {
		t.Errorf("Inputs() = %v, want %v", got, want)
	}

	if def.RequiredLine != 4 || !reflect.DeepEqual(def.RequiredProps, []string{"title"}) {
		t.Errorf("required = %v at line %d", def.RequiredProps, def.RequiredLine)
	}
	if !def.Props[0].Required || def.Props[1].Required {
		t.Error("Required not taken from props.required")
	}

	level := def.Props[1]
	if level.Line != 9 || !level.HasDefault || level.Default != 2 || len(level.Enum) != 2 {
		t.Errorf("level = %+v", level)
	}
	if !def.Slots[0].Required || def.Slots[0].Line != 20 {
		t.Errorf("slot = %+v", def.Slots[0])
	}
	if len(def.Variants) != 1 || def.VariantsLine != 23 {
		t.Errorf("variants = %+v at line %d", def.Variants, def.VariantsLine)
	}
}

func TestProp_Type(t *testing.T) {
	tests := []struct {
		name string
		prop Prop
		want InputType
	}{
		{"string", Prop{Types: []string{"string"}}, TypeString},
		{"integer", Prop{Types: []string{"integer"}}, TypeNumber},
		{"nullable boolean", Prop{Types: []string{"null", "boolean"}}, TypeBoolean},
		{"array", Prop{Types: []string{"array"}}, TypeList},
		{"enum wins", Prop{Types: []string{"string"}, Enum: []any{"a"}}, TypeEnum},
		{"class name", Prop{Types: []string{`Drupal\Core\Url`}}, TypeObject},
		{"ref", Prop{Ref: "ui-patterns://attributes"}, TypeObject},
		{"ref url", Prop{Ref: "ui-patterns://url"}, TypeString},
		{"foreign ref", Prop{Ref: "#/definitions/x"}, TypeObject},
		{"nothing", Prop{}, TypeUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.prop.Type(); got != tt.want {
				t.Errorf("Type() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		wantLine int
	}{
		{"not yaml", "name: [", 0},
		{"not a mapping", "- a\n- b\n", 1},
		{"props not a mapping", "name: x\nprops: 3\n", 2},
		{"property not a mapping", "props:\n  properties:\n    title: string\n", 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), "x.component.yml", "demo")
			var loadErr *LoadError
			if !errors.As(err, &loadErr) {
				t.Fatalf("Parse() error = %v, want *LoadError", err)
			}
			if loadErr.Line != tt.wantLine {
				t.Errorf("Line = %d, want %d", loadErr.Line, tt.wantLine)
			}
		})
	}
}

func TestParse_Empty(t *testing.T) {
	def, err := Parse(nil, "dir/empty.component.yml", "demo")
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if def.ID != "demo:empty" || len(def.Inputs()) != 0 {
		t.Errorf("Parse() = %+v", def)
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.component.yml"), "demo")
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Load() error = %v, want fs.ErrNotExist", err)
	}
}

func TestFind(t *testing.T) {
	defs := []*Definition{{ID: "demo:a"}, {ID: "demo:b"}}
	if d, err := Find(defs, "demo:b"); err != nil || d != defs[1] {
		t.Errorf("Find(demo:b) = %v, %v", d, err)
	}
	if _, err := Find(defs, "demo:c"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Find(demo:c) error = %v, want ErrNotFound", err)
	}
}

func TestDefinitionFor(t *testing.T) {
	tests := map[string]string{
		"a/card.component.yml": "a/card.component.yml",
		"a/card.twig":          "a/card.component.yml",
		"a/card.css":           "",
	}
	for in, want := range tests {
		if got := DefinitionFor(in); got != want {
			t.Errorf("DefinitionFor(%q) = %q, want %q", in, got, want)
		}
	}
}
