package language

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// ErrUnsupportedLanguage is returned for any language outside the registry.
// It is raised before any checker process is spawned.
var ErrUnsupportedLanguage = errors.New("unsupported language")

// aliases maps common alternate spellings onto registered names.
var aliases = map[string]Name{
	"c++":        CPP,
	"cxx":        CPP,
	"cc":         CPP,
	"py":         Python,
	"python3":    Python,
	"js":         JavaScript,
	"node":       JavaScript,
	"nodejs":     JavaScript,
	"ecmascript": JavaScript,
}

// Registry resolves language names and filenames to profiles.
type Registry struct {
	profiles map[Name]Profile
	globs    map[Name]glob.Glob
	order    []Name
}

// NewRegistry builds a registry from profiles. Names must be unique and
// every FileGlob must compile.
func NewRegistry(profiles ...Profile) (*Registry, error) {
	r := &Registry{
		profiles: make(map[Name]Profile, len(profiles)),
		globs:    make(map[Name]glob.Glob, len(profiles)),
	}

	for _, p := range profiles {
		if p.Name == "" {
			return nil, errors.New("profile name is required")
		}
		if _, dup := r.profiles[p.Name]; dup {
			return nil, fmt.Errorf("duplicate profile: %s", p.Name)
		}
		if p.Compiler.Binary == "" {
			return nil, fmt.Errorf("profile %s: compiler binary is required", p.Name)
		}
		if p.FileGlob != "" {
			g, err := glob.Compile(p.FileGlob)
			if err != nil {
				return nil, fmt.Errorf("profile %s: invalid file glob %q: %w", p.Name, p.FileGlob, err)
			}
			r.globs[p.Name] = g
		}
		r.profiles[p.Name] = p
		r.order = append(r.order, p.Name)
	}

	return r, nil
}

// DefaultRegistry returns the registry of built-in profiles.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(defaultProfiles()...)
	if err != nil {
		panic(fmt.Sprintf("language: invalid built-in profiles: %v", err))
	}
	return r
}

// Resolve looks up a profile by name (case-insensitive, aliases allowed).
func (r *Registry) Resolve(name string) (Profile, error) {
	key := Name(strings.ToLower(strings.TrimSpace(name)))
	if alias, ok := aliases[string(key)]; ok {
		key = alias
	}

	p, ok := r.profiles[key]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedLanguage, name, r.supportedList())
	}
	return p, nil
}

// Detect infers the profile from a file path's base name.
func (r *Registry) Detect(path string) (Profile, error) {
	base := strings.ToLower(filepath.Base(path))
	for _, name := range r.order {
		g, ok := r.globs[name]
		if ok && g.Match(base) {
			return r.profiles[name], nil
		}
	}
	return Profile{}, fmt.Errorf("%w: cannot infer language from %q (supported: %s)", ErrUnsupportedLanguage, filepath.Base(path), r.supportedList())
}

// Profiles returns all profiles in registration order.
func (r *Registry) Profiles() []Profile {
	out := make([]Profile, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.profiles[name])
	}
	return out
}

func (r *Registry) supportedList() string {
	names := make([]string, len(r.order))
	for i, n := range r.order {
		names[i] = string(n)
	}
	return strings.Join(names, ", ")
}
