package lockfile

import (
	"fmt"
	"io"
	"strings"

	"github.com/willibrandon/gorestore/frameworks"
	"github.com/willibrandon/gorestore/internal/jsonorder"
	"github.com/willibrandon/gorestore/version"
)

// Reader decodes lock file documents.
type Reader struct{}

// Read decodes a lock file. It never returns a nil lock file: when the
// document cannot be read the result is unlocked with Version set to
// InvalidVersion, and the error is a *FormatError.
func (Reader) Read(r io.Reader) (*LockFile, error) {
	doc, err := jsonorder.Decode(r)
	if err != nil {
		return invalidLockFile(), &FormatError{Message: err.Error()}
	}
	lf, err := readLockFile(doc)
	if err != nil {
		return invalidLockFile(), err
	}
	return lf, nil
}

// Read decodes a lock file with a zero Reader.
func Read(r io.Reader) (*LockFile, error) {
	return Reader{}.Read(r)
}

// keyPath renders the location of a value for error messages.
type keyPath string

func (p keyPath) field(name string) keyPath {
	if p == "" {
		return keyPath(name)
	}
	return p + "." + keyPath(name)
}

func (p keyPath) key(k string) keyPath {
	return p + keyPath(fmt.Sprintf("[%q]", k))
}

func formatErr(p keyPath, format string, args ...any) error {
	return &FormatError{Path: string(p), Message: fmt.Sprintf(format, args...)}
}

func expect(v *jsonorder.Value, kind jsonorder.Kind, p keyPath) error {
	if v.Kind != kind {
		return formatErr(p, "expected %s, got %s", kind, v.Kind)
	}
	return nil
}

func readLockFile(doc *jsonorder.Value) (*LockFile, error) {
	if err := expect(doc, jsonorder.Object, ""); err != nil {
		return nil, err
	}

	lf := &LockFile{Version: InvalidVersion}
	if v := doc.Get("locked"); v != nil {
		if err := expect(v, jsonorder.Bool, "locked"); err != nil {
			return nil, err
		}
		lf.Locked = v.Bool
	}
	if v := doc.Get("version"); v != nil {
		n, err := v.Number.Int64()
		if v.Kind != jsonorder.Number || err != nil {
			return nil, formatErr("version", "expected integer")
		}
		lf.Version = int(n)
	}

	var err error
	if v := doc.Get("globalSearchPaths"); v != nil {
		if lf.GlobalSearchPaths, err = readStrings(v, "globalSearchPaths"); err != nil {
			return nil, err
		}
	}
	if v := doc.Get("targets"); v != nil {
		if lf.Targets, err = readTargets(v, "targets"); err != nil {
			return nil, err
		}
	}
	if v := doc.Get("libraries"); v != nil {
		if lf.Libraries, err = readLibraries(v, "libraries"); err != nil {
			return nil, err
		}
	}
	if v := doc.Get("projectFileDependencyGroups"); v != nil {
		if lf.ProjectFileDependencyGroups, err = readGroups(v, "projectFileDependencyGroups"); err != nil {
			return nil, err
		}
	}
	return lf, nil
}

func readTargets(v *jsonorder.Value, p keyPath) ([]*Target, error) {
	if err := expect(v, jsonorder.Object, p); err != nil {
		return nil, err
	}
	targets := make([]*Target, 0, len(v.Members))
	for _, m := range v.Members {
		tp := p.key(m.Key)
		fwName, rid, _ := strings.Cut(m.Key, "/")
		fw, err := frameworks.ParseFramework(fwName)
		if err != nil {
			return nil, formatErr(tp, "invalid framework %q", fwName)
		}
		if err := expect(m.Value, jsonorder.Object, tp); err != nil {
			return nil, err
		}

		target := &Target{Framework: fw, RuntimeIdentifier: rid}
		for _, lm := range m.Value.Members {
			lib, err := readTargetLibrary(lm.Key, lm.Value, tp.key(lm.Key))
			if err != nil {
				return nil, err
			}
			target.Libraries = append(target.Libraries, lib)
		}
		targets = append(targets, target)
	}
	return targets, nil
}

func readTargetLibrary(key string, v *jsonorder.Value, p keyPath) (*TargetLibrary, error) {
	name, ver, err := parseLibraryKey(key, p)
	if err != nil {
		return nil, err
	}
	if err := expect(v, jsonorder.Object, p); err != nil {
		return nil, err
	}

	lib := &TargetLibrary{Name: name, Version: ver}
	if deps := v.Get("dependencies"); deps != nil {
		dp := p.field("dependencies")
		if err := expect(deps, jsonorder.Object, dp); err != nil {
			return nil, err
		}
		for _, m := range deps.Members {
			if err := expect(m.Value, jsonorder.String, dp.key(m.Key)); err != nil {
				return nil, err
			}
			dep := PackageDependency{ID: m.Key, Spec: m.Value.String}
			if m.Value.String != "" {
				if dep.VersionRange, err = version.ParseRange(m.Value.String); err != nil {
					return nil, formatErr(dp.key(m.Key), "invalid version range %q", m.Value.String)
				}
			}
			lib.Dependencies = append(lib.Dependencies, dep)
		}
	}
	if fa := v.Get("frameworkAssemblies"); fa != nil {
		if lib.FrameworkAssemblies, err = readStrings(fa, p.field("frameworkAssemblies")); err != nil {
			return nil, err
		}
	}

	items := []struct {
		key  string
		dest *[]FileItem
	}{
		{"compile", &lib.CompileTimeAssemblies},
		{"runtime", &lib.RuntimeAssemblies},
		{"resource", &lib.ResourceAssemblies},
		{"native", &lib.NativeLibraries},
	}
	for _, it := range items {
		if fv := v.Get(it.key); fv != nil {
			if *it.dest, err = readFileItems(fv, p.field(it.key)); err != nil {
				return nil, err
			}
		}
	}
	return lib, nil
}

func readFileItems(v *jsonorder.Value, p keyPath) ([]FileItem, error) {
	if err := expect(v, jsonorder.Object, p); err != nil {
		return nil, err
	}
	items := make([]FileItem, 0, len(v.Members))
	for _, m := range v.Members {
		ip := p.key(m.Key)
		if err := expect(m.Value, jsonorder.Object, ip); err != nil {
			return nil, err
		}
		item := FileItem{Path: m.Key}
		for _, prop := range m.Value.Members {
			if err := expect(prop.Value, jsonorder.String, ip.key(prop.Key)); err != nil {
				return nil, err
			}
			item.Properties = append(item.Properties, Property{Name: prop.Key, Value: prop.Value.String})
		}
		items = append(items, item)
	}
	return items, nil
}

func readLibraries(v *jsonorder.Value, p keyPath) ([]*Library, error) {
	if err := expect(v, jsonorder.Object, p); err != nil {
		return nil, err
	}
	libs := make([]*Library, 0, len(v.Members))
	for _, m := range v.Members {
		lp := p.key(m.Key)
		name, ver, err := parseLibraryKey(m.Key, lp)
		if err != nil {
			return nil, err
		}
		if err := expect(m.Value, jsonorder.Object, lp); err != nil {
			return nil, err
		}

		lib := &Library{Name: name, Version: ver}
		if s := m.Value.Get("serviceable"); s != nil {
			if err := expect(s, jsonorder.Bool, lp.field("serviceable")); err != nil {
				return nil, err
			}
			lib.IsServiceable = s.Bool
		}
		if s := m.Value.Get("sha512"); s != nil {
			if err := expect(s, jsonorder.String, lp.field("sha512")); err != nil {
				return nil, err
			}
			lib.Sha512 = s.String
		}
		if f := m.Value.Get("files"); f != nil {
			if lib.Files, err = readStrings(f, lp.field("files")); err != nil {
				return nil, err
			}
		}
		libs = append(libs, lib)
	}
	return libs, nil
}

func readGroups(v *jsonorder.Value, p keyPath) ([]*DependencyGroup, error) {
	if err := expect(v, jsonorder.Object, p); err != nil {
		return nil, err
	}
	groups := make([]*DependencyGroup, 0, len(v.Members))
	for _, m := range v.Members {
		deps, err := readStrings(m.Value, p.key(m.Key))
		if err != nil {
			return nil, err
		}
		groups = append(groups, &DependencyGroup{FrameworkName: m.Key, Dependencies: deps})
	}
	return groups, nil
}

func readStrings(v *jsonorder.Value, p keyPath) ([]string, error) {
	if err := expect(v, jsonorder.Array, p); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(v.Items))
	for i, item := range v.Items {
		if err := expect(item, jsonorder.String, p+keyPath(fmt.Sprintf("[%d]", i))); err != nil {
			return nil, err
		}
		out = append(out, item.String)
	}
	return out, nil
}

func parseLibraryKey(key string, p keyPath) (string, *version.NuGetVersion, error) {
	name, verText, ok := strings.Cut(key, "/")
	if !ok || name == "" {
		return "", nil, formatErr(p, "expected \"name/version\"")
	}
	ver, err := version.Parse(verText)
	if err != nil {
		return "", nil, formatErr(p, "invalid version %q", verText)
	}
	return name, ver, nil
}
