package lockfile

import (
	"bytes"
	"io"

	"github.com/willibrandon/gorestore/internal/jsonorder"
)

// Writer encodes lock files in canonical form: fixed key order and
// two-space indentation. Empty optional collections and empty hashes are
// left out.
type Writer struct{}

// Write encodes lf to w.
func (Writer) Write(w io.Writer, lf *LockFile) error {
	return jsonorder.Encode(w, document(lf), "  ")
}

// Write encodes lf with a zero Writer.
func Write(w io.Writer, lf *LockFile) error {
	return Writer{}.Write(w, lf)
}

// Marshal returns the canonical encoding of lf.
func Marshal(lf *LockFile) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, lf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func document(lf *LockFile) *jsonorder.Value {
	doc := jsonorder.NewObject().
		Set("locked", jsonorder.BoolValue(lf.Locked)).
		Set("version", jsonorder.IntValue(lf.Version))

	if len(lf.GlobalSearchPaths) > 0 {
		doc.Set("globalSearchPaths", jsonorder.StringArray(lf.GlobalSearchPaths))
	}

	targets := jsonorder.NewObject()
	for _, t := range lf.Targets {
		libs := jsonorder.NewObject()
		for _, tl := range t.Libraries {
			libs.Set(tl.Key(), targetLibrary(tl))
		}
		targets.Set(t.Key(), libs)
	}
	doc.Set("targets", targets)

	libraries := jsonorder.NewObject()
	for _, lib := range lf.Libraries {
		entry := jsonorder.NewObject()
		if lib.IsServiceable {
			entry.Set("serviceable", jsonorder.BoolValue(true))
		}
		if lib.Sha512 != "" {
			entry.Set("sha512", jsonorder.StringValue(lib.Sha512))
		}
		if len(lib.Files) > 0 {
			entry.Set("files", jsonorder.StringArray(lib.Files))
		}
		libraries.Set(lib.Key(), entry)
	}
	doc.Set("libraries", libraries)

	groups := jsonorder.NewObject()
	for _, g := range lf.ProjectFileDependencyGroups {
		groups.Set(g.FrameworkName, jsonorder.StringArray(g.Dependencies))
	}
	doc.Set("projectFileDependencyGroups", groups)

	return doc
}

func targetLibrary(tl *TargetLibrary) *jsonorder.Value {
	entry := jsonorder.NewObject()
	if len(tl.Dependencies) > 0 {
		deps := jsonorder.NewObject()
		for _, dep := range tl.Dependencies {
			deps.Set(dep.ID, jsonorder.StringValue(dependencySpec(dep)))
		}
		entry.Set("dependencies", deps)
	}
	if len(tl.FrameworkAssemblies) > 0 {
		entry.Set("frameworkAssemblies", jsonorder.StringArray(tl.FrameworkAssemblies))
	}
	setFileItems(entry, "compile", tl.CompileTimeAssemblies)
	setFileItems(entry, "runtime", tl.RuntimeAssemblies)
	setFileItems(entry, "resource", tl.ResourceAssemblies)
	setFileItems(entry, "native", tl.NativeLibraries)
	return entry
}

func dependencySpec(dep PackageDependency) string {
	switch {
	case dep.Spec != "":
		return dep.Spec
	case dep.VersionRange != nil:
		return dep.VersionRange.String()
	default:
		return ""
	}
}

func setFileItems(entry *jsonorder.Value, key string, items []FileItem) {
	if len(items) == 0 {
		return
	}
	obj := jsonorder.NewObject()
	for _, item := range items {
		props := jsonorder.NewObject()
		for _, p := range item.Properties {
			props.Set(p.Name, jsonorder.StringValue(p.Value))
		}
		obj.Set(item.Path, props)
	}
	entry.Set(key, obj)
}
