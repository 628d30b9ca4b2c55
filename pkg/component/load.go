package component

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefinitionSuffix is the file name suffix of component definitions.
const DefinitionSuffix = ".component.yml"

// LoadError reports a definition that could not be read or decoded.
type LoadError struct {
	Path string
	Line int
	Err  error
}

func (e *LoadError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s:%d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// MachineName derives the component name from a definition path:
// "card/card.component.yml" gives "card".
func MachineName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), DefinitionSuffix)
}

// Load reads the definition at path and the template next to it,
// "<name>.twig". A missing template is not an error.
func Load(path, provider string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	def, err := Parse(data, path, provider)
	if err != nil {
		return nil, err
	}

	tpl := filepath.Join(filepath.Dir(path), def.Name+".twig")
	source, err := os.ReadFile(tpl)
	switch {
	case err == nil:
		def.TemplatePath = tpl
		def.Template = string(source)
	case !errors.Is(err, fs.ErrNotExist):
		return nil, &LoadError{Path: tpl, Err: err}
	}
	return def, nil
}

// Parse decodes definition data. path is used for the machine name and
// error messages only.
func Parse(data []byte, path, provider string) (*Definition, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	name := MachineName(path)
	def := &Definition{
		ID:       provider + ":" + name,
		Provider: provider,
		Name:     name,
		Path:     path,
	}

	// An empty file is a component without inputs.
	if len(doc.Content) == 0 {
		return def, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, &LoadError{Path: path, Line: root.Line, Err: errors.New("definition must be a mapping")}
	}

	d := decoder{path: path}
	for _, kv := range pairs(root) {
		key, value := kv[0], kv[1]
		switch key.Value {
		case "name":
			def.Label = value.Value
		case "props":
			def.PropsLine = key.Line
			d.props(def, value)
		case "slots":
			def.Slots = d.slots(value)
		case "variants":
			def.VariantsLine = key.Line
			def.Variants = d.variants(value)
		}
	}
	if d.err != nil {
		return nil, d.err
	}
	return def, nil
}

// decoder keeps the first structural error so parsing reads straight.
type decoder struct {
	path string
	err  error
}

func (d *decoder) fail(node *yaml.Node, format string, args ...any) {
	if d.err == nil {
		d.err = &LoadError{Path: d.path, Line: node.Line, Err: fmt.Errorf(format, args...)}
	}
}

func (d *decoder) mapping(node *yaml.Node, what string) bool {
	if node.Kind == yaml.MappingNode {
		return true
	}
	// "slots:" with nothing under it
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		return false
	}
	d.fail(node, "%s must be a mapping", what)
	return false
}

func (d *decoder) props(def *Definition, node *yaml.Node) {
	if !d.mapping(node, "props") {
		return
	}

	var properties *yaml.Node
	for _, kv := range pairs(node) {
		key, value := kv[0], kv[1]
		switch key.Value {
		case "required":
			def.RequiredLine = key.Line
			if err := value.Decode(&def.RequiredProps); err != nil {
				d.fail(value, "props.required: %v", err)
			}
		case "properties":
			properties = value
		}
	}
	if properties == nil || !d.mapping(properties, "props.properties") {
		return
	}

	for _, kv := range pairs(properties) {
		prop := d.prop(kv[0].Value, kv[0], kv[1])
		prop.Required = slices.Contains(def.RequiredProps, prop.Name)
		def.Props = append(def.Props, prop)
	}
}

func (d *decoder) prop(name string, key, node *yaml.Node) Prop {
	p := Prop{Name: name, Line: key.Line}
	if !d.mapping(node, "property "+name) {
		return p
	}

	for _, kv := range pairs(node) {
		k, v := kv[0], kv[1]
		switch k.Value {
		case "title":
			p.Title = v.Value
		case "type":
			if v.Kind == yaml.SequenceNode {
				if err := v.Decode(&p.Types); err != nil {
					d.fail(v, "property %s type: %v", name, err)
				}
			} else {
				p.Types = []string{v.Value}
			}
		case "$ref":
			p.Ref = v.Value
		case "enum":
			if err := v.Decode(&p.Enum); err != nil {
				d.fail(v, "property %s enum: %v", name, err)
			}
		case "default":
			p.HasDefault = true
			if err := v.Decode(&p.Default); err != nil {
				d.fail(v, "property %s default: %v", name, err)
			}
		case "properties":
			p.Properties = []string{}
			if v.Kind == yaml.MappingNode {
				for _, sub := range pairs(v) {
					p.Properties = append(p.Properties, sub[0].Value)
				}
			}
		case "items":
			items := d.prop(name+".items", k, v)
			p.Items = &items
		}
	}
	return p
}

func (d *decoder) slots(node *yaml.Node) []Slot {
	if !d.mapping(node, "slots") {
		return nil
	}
	var out []Slot
	for _, kv := range pairs(node) {
		s := Slot{Name: kv[0].Value, Line: kv[0].Line}
		if kv[1].Kind == yaml.MappingNode {
			for _, f := range pairs(kv[1]) {
				switch f[0].Value {
				case "title":
					s.Title = f[1].Value
				case "required":
					s.Required = f[1].Value == "true"
				}
			}
		}
		out = append(out, s)
	}
	return out
}

func (d *decoder) variants(node *yaml.Node) []Variant {
	if !d.mapping(node, "variants") {
		return nil
	}
	var out []Variant
	for _, kv := range pairs(node) {
		v := Variant{Name: kv[0].Value, Line: kv[0].Line}
		if kv[1].Kind == yaml.MappingNode {
			for _, f := range pairs(kv[1]) {
				if f[0].Value == "title" {
					v.Title = f[1].Value
				}
			}
		}
		out = append(out, v)
	}
	return out
}

// pairs splits a mapping node into key/value pairs.
func pairs(node *yaml.Node) [][2]*yaml.Node {
	out := make([][2]*yaml.Node, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		out = append(out, [2]*yaml.Node{node.Content[i], node.Content[i+1]})
	}
	return out
}
