package library

import (
	"fmt"
	"strings"
)

// DependencyType controls whether an edge flows into consuming projects.
type DependencyType uint8

const (
	// TypeDefault - the edge behaves like a normal dependency
	TypeDefault DependencyType = 1 << iota
	// TypePrivate - the edge is not exposed to consumers
	TypePrivate
	// TypeBuild - needed only while building
	TypeBuild
	// TypeDevelopment - needed only at development time
	TypeDevelopment
	// TypePreprocess - contributes source preprocessing
	TypePreprocess
	// TypeBecomesPackageDependency - recorded as a dependency when packed
	TypeBecomesPackageDependency
)

// DefaultDependencyType is the type of an edge declared without a "type".
const DefaultDependencyType = TypeDefault | TypeBecomesPackageDependency

// BuildDependencyType is the type of an edge declared with type "build".
const BuildDependencyType = TypeBuild | TypePrivate | TypeDevelopment | TypePreprocess

var typeKeywords = map[string]DependencyType{
	"default":                    DefaultDependencyType,
	"build":                      BuildDependencyType,
	"private":                    TypePrivate,
	"dev":                        TypeDevelopment,
	"development":                TypeDevelopment,
	"preprocess":                 TypePreprocess,
	"becomesnupkgdependency":     TypeBecomesPackageDependency,
	"becomespackagedependency":   TypeBecomesPackageDependency,
	"buildtime":                  TypeBuild,
	"developmenttime":            TypeDevelopment,
	"becomes-package-dependency": TypeBecomesPackageDependency,
}

var typeNames = []struct {
	flag DependencyType
	name string
}{
	{TypeDefault, "default"},
	{TypePrivate, "private"},
	{TypeBuild, "build"},
	{TypeDevelopment, "dev"},
	{TypePreprocess, "preprocess"},
	{TypeBecomesPackageDependency, "becomesnupkgdependency"},
}

// ParseDependencyType maps comma separated keywords onto a type. An empty
// string yields DefaultDependencyType.
func ParseDependencyType(s string) (DependencyType, error) {
	if strings.TrimSpace(s) == "" {
		return DefaultDependencyType, nil
	}
	var t DependencyType
	for _, keyword := range strings.Split(s, ",") {
		flag, ok := typeKeywords[strings.ToLower(strings.TrimSpace(keyword))]
		if !ok {
			return 0, fmt.Errorf("unknown dependency type %q", keyword)
		}
		t = t.Union(flag)
	}
	return t, nil
}

// Union returns t with every flag of other set.
func (t DependencyType) Union(other DependencyType) DependencyType {
	return t | other
}

// Except returns t with every flag of other cleared.
func (t DependencyType) Except(other DependencyType) DependencyType {
	return t &^ other
}

// Contains reports whether every flag of other is set in t.
func (t DependencyType) Contains(other DependencyType) bool {
	return t&other == other
}

func (t DependencyType) String() string {
	var names []string
	for _, n := range typeNames {
		if t.Contains(n.flag) {
			names = append(names, n.name)
		}
	}
	return strings.Join(names, ",")
}

// Dependency is an edge from a resolved node to a requested library.
type Dependency struct {
	Range    Range
	Resolved *Identity
	Type     DependencyType
}

// Name returns the name of the requested library.
func (d Dependency) Name() string {
	return d.Range.Name
}

func (d Dependency) String() string {
	return d.Range.String()
}
