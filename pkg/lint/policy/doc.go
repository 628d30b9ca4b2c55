// Package policy implements the name policy tables used by lint rules.
//
// A Table sorts symbolic names into five buckets. Ignore and Allow are
// silent. Deprecate, Warn and Forbid carry a hint that ends up in the
// diagnostic message:
//
//	Forbidden Twig function: 'path'. Keep components sandboxed by avoiding functions calling Drupal application.
//
// Lookup order is ignore, allow, deprecate, warn, forbid. Names in no bucket
// are neutral unless the table runs in graylist mode.
//
// Tables are shared between concurrent validations and must not be
// modified after construction. Configuration overrides go through Merge,
// which copies.
package policy
