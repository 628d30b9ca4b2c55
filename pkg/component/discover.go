package component

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// skipDirs are never searched for definitions.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
}

// Provider returns the provider name of a project directory: its base name.
func Provider(root string) string {
	abs, err := filepath.Abs(root)
	if err != nil {
		return filepath.Base(root)
	}
	return filepath.Base(abs)
}

// Discover loads every definition under root, in lexical path order. An
// empty provider defaults to Provider(root). The first load error stops the
// walk.
func Discover(root, provider string) ([]*Definition, error) {
	if provider == "" {
		provider = Provider(root)
	}

	var defs []*Definition
	err := filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if path != root && skipDirs[entry.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(entry.Name(), DefinitionSuffix) {
			return nil
		}

		def, err := Load(path, provider)
		if err != nil {
			return err
		}
		defs = append(defs, def)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discover components in %s: %w", root, err)
	}
	return defs, nil
}

// IsDefinition reports whether path names a definition file.
func IsDefinition(path string) bool {
	return strings.HasSuffix(path, DefinitionSuffix)
}

// DefinitionFor maps a changed file to the definition path it belongs to:
// the definition itself, or "<dir>/<name>.component.yml" for "<name>.twig".
// It returns "" for unrelated files.
func DefinitionFor(path string) string {
	switch {
	case IsDefinition(path):
		return path
	case strings.HasSuffix(path, ".twig"):
		return strings.TrimSuffix(path, ".twig") + DefinitionSuffix
	}
	return ""
}
