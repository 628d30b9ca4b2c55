package gitscope

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"mercator-hq/sdclint/pkg/component"
)

// CommitInfo contains metadata about a Git commit.
type CommitInfo struct {
	SHA       string    `json:"sha"`
	Author    string    `json:"author"`
	Email     string    `json:"email"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

// Repository is a local Git repository holding one or more projects.
type Repository struct {
	repo *gogit.Repository
	root string
}

// Open opens the repository containing path. Parent directories are
// searched for the .git directory.
func Open(path string) (*Repository, error) {
	repo, err := gogit.PlainOpenWithOptions(path, &gogit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open repository at %s: %w", path, err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}

	root, err := filepath.Abs(worktree.Filesystem.Root())
	if err != nil {
		return nil, fmt.Errorf("failed to resolve worktree root: %w", err)
	}

	return &Repository{
		repo: repo,
		root: root,
	}, nil
}

// Root returns the top directory of the worktree.
func (r *Repository) Root() string {
	return r.root
}

// Resolve returns the commit a revision such as "main", "HEAD~2" or a SHA
// points to.
func (r *Repository) Resolve(rev string) (*CommitInfo, error) {
	commit, err := r.commit(rev)
	if err != nil {
		return nil, err
	}
	return &CommitInfo{
		SHA:       commit.Hash.String(),
		Author:    commit.Author.Name,
		Email:     commit.Author.Email,
		Timestamp: commit.Author.When,
		Message:   commit.Message,
	}, nil
}

func (r *Repository) commit(rev string) (*object.Commit, error) {
	hash, err := r.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve revision %q: %w", rev, err)
	}
	commit, err := r.repo.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("failed to get commit %s: %w", hash, err)
	}
	return commit, nil
}

// ChangedFiles returns the absolute paths of files changed since rev:
// committed changes up to HEAD plus uncommitted and untracked files. The
// result is sorted and free of duplicates.
func (r *Repository) ChangedFiles(ctx context.Context, rev string) ([]string, error) {
	from, err := r.commit(rev)
	if err != nil {
		return nil, err
	}
	head, err := r.commit(plumbing.HEAD.String())
	if err != nil {
		return nil, err
	}

	fromTree, err := from.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to get from tree: %w", err)
	}
	headTree, err := head.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to get HEAD tree: %w", err)
	}

	changes, err := fromTree.DiffContext(ctx, headTree)
	if err != nil {
		return nil, fmt.Errorf("failed to diff trees: %w", err)
	}

	var files []string
	for _, change := range changes {
		// Renames report both sides.
		if change.To.Name != "" {
			files = append(files, change.To.Name)
		}
		if change.From.Name != "" && change.From.Name != change.To.Name {
			files = append(files, change.From.Name)
		}
	}

	worktree, err := r.repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}
	status, err := worktree.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree status: %w", err)
	}
	for name, st := range status {
		if st.Worktree != gogit.Unmodified || st.Staging != gogit.Unmodified {
			files = append(files, name)
		}
	}

	for i, name := range files {
		files[i] = filepath.Join(r.root, filepath.FromSlash(name))
	}
	slices.Sort(files)
	return slices.Compact(files), nil
}

// Components maps changed files to the definition paths of their
// components. Files that belong to no component are dropped.
func Components(files []string) map[string]bool {
	only := make(map[string]bool)
	for _, f := range files {
		if def := component.DefinitionFor(f); def != "" {
			only[def] = true
		}
	}
	return only
}

// Changed opens the repository containing dir and returns the definition
// paths of the components changed since rev.
func Changed(ctx context.Context, dir, rev string) (map[string]bool, error) {
	repo, err := Open(dir)
	if err != nil {
		return nil, err
	}
	files, err := repo.ChangedFiles(ctx, rev)
	if err != nil {
		return nil, err
	}
	return Components(files), nil
}
