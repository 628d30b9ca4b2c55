// Package watch re-validates components while their files change.
//
// A Watcher runs one full validation at start, then watches the project
// directories with fsnotify. Changes to *.twig and *.component.yml files
// are collected until the debounce period passes without another change,
// and the affected definitions are validated together. An optional cron
// schedule (robfig/cron syntax, including "@every 1h") adds periodic full
// runs, which catch changes the file system did not report.
//
// Runs never overlap. A failed run is logged and watching continues.
package watch
