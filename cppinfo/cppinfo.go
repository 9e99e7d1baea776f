// Package cppinfo models the dependency graph reported by "conan install
// --format json" and flattens it into link/include metadata.
package cppinfo

import "strings"

// Define is one preprocessor definition, with or without a value.
type Define struct {
	Key      string
	Value    string
	HasValue bool // distinguishes "KEY" from "KEY="
}

// String renders the definition the way conan reported it.
func (d Define) String() string {
	if d.HasValue {
		return d.Key + "=" + d.Value
	}
	return d.Key
}

func parseDefine(s string) Define {
	key, value, ok := strings.Cut(s, "=")
	return Define{Key: key, Value: value, HasValue: ok}
}

// Package is one resolved conan package, its cpp_info fields merged
// across components in traversal order. Packages are produced solely by
// ParseReport; absent report fields stay empty.
type Package struct {
	Name    string
	Version string

	IncludeDirs     []string
	LibDirs         []string
	Libs            []string
	SystemLibs      []string
	Frameworks      []string
	Defines         []Define
	ExeLinkFlags    []string
	SharedLinkFlags []string
}

func (p *Package) isEmpty() bool {
	return len(p.IncludeDirs) == 0 && len(p.LibDirs) == 0 &&
		len(p.Libs) == 0 && len(p.SystemLibs) == 0 &&
		len(p.Frameworks) == 0 && len(p.Defines) == 0 &&
		len(p.ExeLinkFlags) == 0 && len(p.SharedLinkFlags) == 0
}

// Graph is the resolved dependency graph. Packages keep the traversal
// order embedded in the report; that order determines link order
// downstream and must not be rearranged.
type Graph struct {
	Packages []*Package
}
