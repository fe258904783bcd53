package project

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Resolver finds projects by name under a set of search paths. A project
// named N is found at <searchPath>/N/project.json.
type Resolver struct {
	searchPaths []string

	mu       sync.Mutex
	projects map[string]*Project
}

// NewResolver builds a resolver for the project in projectDir. The search
// paths are the parent of projectDir plus every "projects" entry of the
// nearest global.json.
func NewResolver(projectDir string) (*Resolver, error) {
	abs, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, err
	}

	paths := []string{filepath.Dir(abs)}
	settings, err := FindGlobalSettings(abs)
	if err != nil {
		return nil, err
	}
	if settings != nil {
		for _, p := range settings.ProjectSearchPaths {
			paths = append(paths, filepath.Join(settings.Directory(), p))
		}
	}
	return NewResolverWithSearchPaths(paths...), nil
}

// NewResolverWithSearchPaths builds a resolver over explicit search paths.
// Duplicates are dropped, keeping the first occurrence.
func NewResolverWithSearchPaths(paths ...string) *Resolver {
	seen := make(map[string]bool, len(paths))
	var unique []string
	for _, p := range paths {
		p = filepath.Clean(p)
		if !seen[p] {
			seen[p] = true
			unique = append(unique, p)
		}
	}
	return &Resolver{searchPaths: unique, projects: make(map[string]*Project)}
}

// SearchPaths returns the search paths in lookup order.
func (r *Resolver) SearchPaths() []string {
	return append([]string(nil), r.searchPaths...)
}

// SortedSearchPaths returns the search paths sorted, the form recorded in
// lock files.
func (r *Resolver) SortedSearchPaths() []string {
	paths := r.SearchPaths()
	sort.Strings(paths)
	return paths
}

// TryResolve looks up the project called name. It reports false when no
// search path holds it. Loaded projects are cached.
func (r *Resolver) TryResolve(name string) (*Project, bool, error) {
	key := strings.ToLower(name)

	r.mu.Lock()
	p, ok := r.projects[key]
	r.mu.Unlock()
	if ok {
		return p, p != nil, nil
	}

	for _, sp := range r.searchPaths {
		path := filepath.Join(sp, name, FileName)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		p, err := Load(path)
		if err != nil {
			return nil, false, err
		}
		p.Name = name
		r.store(key, p)
		return p, true, nil
	}

	r.store(key, nil)
	return nil, false, nil
}

func (r *Resolver) store(key string, p *Project) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.projects[key]; !exists {
		r.projects[key] = p
	}
}
