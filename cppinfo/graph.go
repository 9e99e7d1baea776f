package cppinfo

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/goplus/conandeps"
)

// rootNodeID is the consumer recipe's node id in the conan graph.
const rootNodeID = "0"

type reportDoc struct {
	Graph *graphDoc `json:"graph"`
}

type graphDoc struct {
	Nodes map[string]json.RawMessage `json:"nodes"`
}

type nodeDoc struct {
	Name         string        `json:"name"`
	Version      string        `json:"version"`
	Dependencies orderedObject `json:"dependencies"`
	CppInfo      orderedObject `json:"cpp_info"`
}

type componentDoc struct {
	IncludeDirs     []string `json:"includedirs"`
	LibDirs         []string `json:"libdirs"`
	Libs            []string `json:"libs"`
	SystemLibs      []string `json:"system_libs"`
	Frameworks      []string `json:"frameworks"`
	Defines         []string `json:"defines"`
	ExeLinkFlags    []string `json:"exelinkflags"`
	SharedLinkFlags []string `json:"sharedlinkflags"`
	Requires        []string `json:"requires"`
}

// orderedObject is a JSON object whose members keep document order. The
// conan report encodes traversal order in object member order, which a
// plain map would destroy.
type orderedObject []member

type member struct {
	key   string
	value json.RawMessage
}

func (o *orderedObject) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = nil
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.New("JSON object expected")
	}
	var members []member
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return errors.New("JSON object key expected")
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return err
		}
		members = append(members, member{key: key, value: raw})
	}
	*o = members
	return nil
}

// ParseReport decodes the JSON graph document produced by
// "conan install --format json".
//
// Structural shape is checked strictly: the top-level "graph.nodes"
// object must be present, and every dependency node must carry a name.
// Everything inside cpp_info is optional, so header-only packages decode
// to empty lists rather than errors. An empty graph yields an empty
// Graph, not an error.
func ParseReport(data []byte) (*Graph, error) {
	var doc reportDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, parseErr(fmt.Errorf("decoding report: %w", err))
	}
	if doc.Graph == nil {
		return nil, parseErr(errors.New(`missing "graph" object`))
	}
	if doc.Graph.Nodes == nil {
		return nil, parseErr(errors.New(`missing "graph.nodes" object`))
	}

	g := &Graph{}
	w := &walker{nodes: doc.Graph.Nodes, seen: make(map[string]bool)}
	if err := w.visit(rootNodeID, g); err != nil {
		return nil, err
	}
	return g, nil
}

// walker performs a root-first depth-first traversal over the report
// nodes, following each node's dependency references in document order.
// Diamond dependencies are visited once.
type walker struct {
	nodes map[string]json.RawMessage
	seen  map[string]bool
}

func (w *walker) visit(id string, g *Graph) error {
	if w.seen[id] {
		return nil
	}
	w.seen[id] = true

	raw, ok := w.nodes[id]
	if !ok {
		if id == rootNodeID {
			// No dependencies declared at all.
			return nil
		}
		return parseErr(fmt.Errorf("node %q referenced but not present", id))
	}

	var n nodeDoc
	if err := json.Unmarshal(raw, &n); err != nil {
		return parseErr(fmt.Errorf("decoding node %q: %w", id, err))
	}
	if id != rootNodeID && n.Name == "" {
		return parseErr(fmt.Errorf(`node %q: missing required field "name"`, id))
	}

	pkg, err := mergeComponents(id, &n)
	if err != nil {
		return err
	}
	if pkg != nil {
		g.Packages = append(g.Packages, pkg)
	}

	for _, dep := range n.Dependencies {
		if err := w.visit(dep.key, g); err != nil {
			return err
		}
	}
	return nil
}

// mergeComponents folds a node's cpp_info components into one Package.
// Components are visited in document order; a component's same-package
// "requires" entries are folded in recursively right after it.
// Cross-package requirements ("pkg::comp") are already covered by the
// graph traversal and are skipped here.
//
// The root node is the consumer recipe: it only becomes a Package when
// its cpp_info actually contributes something.
func mergeComponents(id string, n *nodeDoc) (*Package, error) {
	pkg := &Package{Name: n.Name, Version: n.Version}
	if len(n.CppInfo) == 0 {
		if id == rootNodeID {
			return nil, nil
		}
		return pkg, nil
	}

	comps := make(map[string]*componentDoc, len(n.CppInfo))
	order := make([]string, 0, len(n.CppInfo))
	for _, m := range n.CppInfo {
		var c componentDoc
		if err := json.Unmarshal(m.value, &c); err != nil {
			return nil, parseErr(fmt.Errorf("node %q: component %q: %w", id, m.key, err))
		}
		comps[m.key] = &c
		order = append(order, m.key)
	}

	merged := make(map[string]bool, len(order))
	for _, name := range order {
		mergeComponent(pkg, comps, name, merged)
	}

	if id == rootNodeID && pkg.isEmpty() {
		return nil, nil
	}
	return pkg, nil
}

func mergeComponent(pkg *Package, comps map[string]*componentDoc, name string, merged map[string]bool) {
	if merged[name] {
		return
	}
	merged[name] = true

	c, ok := comps[name]
	if !ok {
		return
	}

	pkg.IncludeDirs = append(pkg.IncludeDirs, c.IncludeDirs...)
	for _, d := range c.Defines {
		pkg.Defines = append(pkg.Defines, parseDefine(d))
	}

	// Header-only components contribute include dirs and defines only.
	// Link metadata from a component that provides no libraries would
	// produce bogus link directives, so it is dropped.
	if len(c.Libs) > 0 {
		pkg.LibDirs = append(pkg.LibDirs, c.LibDirs...)
		pkg.Libs = append(pkg.Libs, c.Libs...)
		pkg.SystemLibs = append(pkg.SystemLibs, c.SystemLibs...)
		pkg.Frameworks = append(pkg.Frameworks, c.Frameworks...)
		pkg.ExeLinkFlags = append(pkg.ExeLinkFlags, c.ExeLinkFlags...)
		pkg.SharedLinkFlags = append(pkg.SharedLinkFlags, c.SharedLinkFlags...)
	}

	for _, req := range c.Requires {
		if strings.Contains(req, "::") {
			continue
		}
		mergeComponent(pkg, comps, req, merged)
	}
}

func parseErr(err error) error {
	return &conandeps.Error{Op: "parse report", Kind: conandeps.ErrParse, Err: err}
}
