// Package project validates every component of one or more project
// directories.
//
// A project is a directory holding *.component.yml definitions, usually a
// Drupal module or theme. Its base name is the provider part of the
// component ids. The Runner discovers the definitions, validates them on a
// bounded worker pool and returns a Report whose results keep discovery
// order:
//
//	v, err := project.NewValidator(&cfg.Lint, tel)
//	if err != nil {
//		return err
//	}
//	runner := project.NewRunner(v, project.WithWorkers(cfg.Workers), project.WithTelemetry(tel))
//	report, err := runner.Run(ctx, project.Request{Projects: cfg.Projects})
//
// Each run gets a UUID that is attached to its logs and its trace span.
package project
