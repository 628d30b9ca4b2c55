// Package component loads single directory component definitions.
//
// A component lives in its own directory as "<name>.component.yml" with an
// optional "<name>.twig" template next to it. Load decodes the definition
// through yaml.Node so every prop, slot and variant keeps its source line
// for schema diagnostics.
//
//	defs, err := component.Discover("themes/custom/mytheme", "")
//	card, err := component.Find(defs, "mytheme:card")
package component
