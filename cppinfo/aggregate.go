package cppinfo

import "slices"

// Metadata is the flattened union of all package fields, deduplicated per
// kind with first-occurrence order preserved. A value linked late must
// not silently move earlier: search-path precedence and symbol resolution
// both depend on it.
type Metadata struct {
	includeDirs     []string
	libDirs         []string
	libs            []string
	systemLibs      []string
	frameworks      []string
	defines         []Define
	exeLinkFlags    []string
	sharedLinkFlags []string
	watch           []string
}

// Aggregate flattens the graph into per-kind collections. It is a pure
// function of the graph: no I/O, fully deterministic.
func (g *Graph) Aggregate() *Metadata {
	md := &Metadata{}
	for _, p := range g.Packages {
		md.includeDirs = appendUnique(md.includeDirs, p.IncludeDirs)
		md.libDirs = appendUnique(md.libDirs, p.LibDirs)
		md.libs = appendUnique(md.libs, p.Libs)
		md.systemLibs = appendUnique(md.systemLibs, p.SystemLibs)
		md.frameworks = appendUnique(md.frameworks, p.Frameworks)
		md.exeLinkFlags = appendUnique(md.exeLinkFlags, p.ExeLinkFlags)
		md.sharedLinkFlags = appendUnique(md.sharedLinkFlags, p.SharedLinkFlags)
		for _, d := range p.Defines {
			if !slices.Contains(md.defines, d) {
				md.defines = append(md.defines, d)
			}
		}
	}
	return md
}

func appendUnique(dst, src []string) []string {
	for _, s := range src {
		if !slices.Contains(dst, s) {
			dst = append(dst, s)
		}
	}
	return dst
}

// AddWatch registers extra paths whose modification should re-trigger
// the bridge (the report artifact, the recipe, a settings file).
func (md *Metadata) AddWatch(paths ...string) {
	md.watch = appendUnique(md.watch, paths)
}

// IncludeDirs returns all include directories in first-occurrence order.
func (md *Metadata) IncludeDirs() []string { return slices.Clone(md.includeDirs) }

// LibDirs returns all library search directories in first-occurrence order.
func (md *Metadata) LibDirs() []string { return slices.Clone(md.libDirs) }

// Libs returns all package library names in first-occurrence order.
func (md *Metadata) Libs() []string { return slices.Clone(md.libs) }

// SystemLibs returns all system library names in first-occurrence order.
func (md *Metadata) SystemLibs() []string { return slices.Clone(md.systemLibs) }

// Frameworks returns all framework names in first-occurrence order.
func (md *Metadata) Frameworks() []string { return slices.Clone(md.frameworks) }

// Defines returns all preprocessor definitions in first-occurrence order.
func (md *Metadata) Defines() []Define { return slices.Clone(md.defines) }

// ExeLinkFlags returns all executable linker flags in first-occurrence order.
func (md *Metadata) ExeLinkFlags() []string { return slices.Clone(md.exeLinkFlags) }

// SharedLinkFlags returns all shared-library linker flags in
// first-occurrence order.
func (md *Metadata) SharedLinkFlags() []string { return slices.Clone(md.sharedLinkFlags) }

// WatchPaths returns the registered re-invocation trigger paths.
func (md *Metadata) WatchPaths() []string { return slices.Clone(md.watch) }
