// Package engine dispatches lint rules over a template tree.
//
// # Registry
//
// Rules are registered per node kind, or for every node with ast.KindAny,
// then the registry is sealed. A sealed registry is read-only and the rule
// list of each kind is computed once at sealing time.
//
//	reg := engine.NewRegistry()
//	reg.MustRegister(ast.KindFilter, myRule)
//	eng := engine.New(reg)
//
// # Walk
//
// Engine.Run performs a pre-order depth-first walk. Nodes carry no parent
// pointers; the engine keeps the ancestor stack in the Context so rules
// can look upwards with Parent, Ancestors and NearestAncestor.
//
// The scope tracker of the Context is updated before the rules of a node
// run, so a rule checking a name sees whether it was declared.
//
// # Fault isolation
//
// A rule that panics contributes a single CRITICAL diagnostic,
// "Rule '<name>' failed: <panic>", located at the node being checked.
// Other rules and other nodes are unaffected.
package engine
