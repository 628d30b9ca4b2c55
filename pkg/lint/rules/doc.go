// Package rules provides the built-in lint rules for component templates.
//
// Each rule is bound to one node kind. Rules keyed on names (filter,
// function, name) classify the name through a policy.Table first, then run
// structural checks:
//
//	filter       abs, add_class, clean_id, default, set_attribute, t/trans
//	function     random() outside a default filter
//	conditional  chained, shorthand and boolean ternaries
//	test         constant, same as, null, defined, empty
//	statement    sandbox, do, flush, extends, include, embed
//	get_attr     method calls, renderable keys, loop.parent
//	name         unknown variables, with a suggestion
//
// UnusedVariables runs once the walk is over and aggregates every unused
// local binding in a single diagnostic.
//
// Default builds the registry; Options overlays the name tables from
// configuration and disables rules by name.
package rules
