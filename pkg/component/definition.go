package component

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrNotFound is returned when a component id matches no definition.
var ErrNotFound = errors.New("component not found")

// InputType classifies a declared input for the lint rules.
type InputType string

const (
	TypeString  InputType = "string"
	TypeNumber  InputType = "number"
	TypeBoolean InputType = "boolean"
	TypeEnum    InputType = "enum"
	TypeList    InputType = "list"
	TypeObject  InputType = "object"
	TypeSlot    InputType = "slot"
	TypeUnknown InputType = ""
)

// refTypes maps the "ui-patterns://" schema references to a classifier.
var refTypes = map[string]InputType{
	"attributes":   TypeObject,
	"boolean":      TypeBoolean,
	"enum":         TypeEnum,
	"enum_list":    TypeList,
	"identifier":   TypeString,
	"links":        TypeList,
	"list":         TypeList,
	"machine_name": TypeString,
	"number":       TypeNumber,
	"slot":         TypeSlot,
	"string":       TypeString,
	"url":          TypeString,
}

// Definition is a component as declared by its *.component.yml file.
type Definition struct {
	// ID is "<provider>:<machine name>".
	ID       string
	Provider string
	Name     string
	Label    string

	Path         string
	TemplatePath string
	Template     string

	Props    []Prop
	Slots    []Slot
	Variants []Variant

	// PropsLine, RequiredLine and VariantsLine locate the "props",
	// "props.required" and "variants" keys; zero when absent.
	PropsLine     int
	RequiredLine  int
	VariantsLine  int
	RequiredProps []string
}

// Prop is one entry of props.properties, as a subset of JSON Schema.
type Prop struct {
	Name  string
	Title string
	Line  int

	Types      []string
	Ref        string
	Enum       []any
	Default    any
	HasDefault bool

	// Properties is nil when the schema has no "properties" key.
	Properties []string
	Items      *Prop
	Required   bool
}

// Slot is one entry of slots.
type Slot struct {
	Name     string
	Title    string
	Line     int
	Required bool
}

// Variant is one entry of variants.
type Variant struct {
	Name  string
	Title string
	Line  int
}

// Input is a declared prop or slot with its classifier.
type Input struct {
	Name string
	Type InputType
}

// Inputs lists props then slots in definition order.
func (d *Definition) Inputs() []Input {
	out := make([]Input, 0, len(d.Props)+len(d.Slots))
	for _, p := range d.Props {
		out = append(out, Input{Name: p.Name, Type: p.Type()})
	}
	for _, s := range d.Slots {
		out = append(out, Input{Name: s.Name, Type: TypeSlot})
	}
	return out
}

// HasTemplate reports whether a template file was found.
func (d *Definition) HasTemplate() bool {
	return d.TemplatePath != ""
}

// Type classifies the prop. Enums win over the declared type; a "null"
// alternative is ignored.
func (p Prop) Type() InputType {
	if len(p.Enum) > 0 {
		return TypeEnum
	}
	for _, t := range p.Types {
		switch t {
		case "null":
			continue
		case "boolean":
			return TypeBoolean
		case "integer", "number":
			return TypeNumber
		case "string":
			return TypeString
		case "array":
			return TypeList
		default:
			// object and PHP class names such as Drupal\Core\Template\Attribute
			return TypeObject
		}
	}
	if scheme, name, ok := strings.Cut(p.Ref, "://"); ok && scheme == "ui-patterns" {
		return refTypes[name]
	}
	if p.Ref != "" {
		return TypeObject
	}
	return TypeUnknown
}

// HasType reports whether the prop declares a type or a reference.
func (p Prop) HasType() bool {
	return len(p.Types) > 0 || p.Ref != ""
}

// IsType reports whether t is one of the declared types.
func (p Prop) IsType(t string) bool {
	return slices.Contains(p.Types, t)
}

// Find returns the definition with id.
func Find(defs []*Definition, id string) (*Definition, error) {
	for _, d := range defs {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
}
