// Package gitscope restricts a lint run to the components touched since a
// Git revision.
//
// A file counts as changed when the tree diff between the revision and
// HEAD lists it, or when the worktree status reports it as modified, added,
// deleted or untracked. Changed templates and definitions map to the
// definition path of their component, which is the key set a
// project.Request filters on:
//
//	only, err := gitscope.Changed(ctx, ".", "origin/main")
//	if err != nil {
//		return err
//	}
//	report, err := runner.Run(ctx, project.Request{Projects: dirs, Only: only})
//
// Repositories are opened with go-git; no git binary is required.
package gitscope
