package conan

import (
	"fmt"
	"strings"
)

// Scope is the granularity at which an option applies: the whole
// dependency graph, every package matching a name pattern, or one exact
// package. The zero value is the global scope.
type Scope struct {
	pattern string
	name    string
	version string
}

// Global applies an option to every package in the graph.
var Global = Scope{}

// Pattern scopes an option to all packages matching a conan name pattern
// such as "*" or "boost*".
func Pattern(pattern string) Scope {
	return Scope{pattern: pattern}
}

// Package scopes an option to one exact package, optionally pinned to a
// version. An empty version leaves the version open.
func Package(name, version string) Scope {
	return Scope{name: name, version: version}
}

// ParseScope parses the textual scope form used in settings files:
// "" for the global scope, a pattern containing "*", or "name[/version]".
func ParseScope(s string) (Scope, error) {
	if s == "" {
		return Global, nil
	}
	if strings.Contains(s, "*") {
		scope := Pattern(s)
		return scope, scope.validate()
	}
	name, version, _ := strings.Cut(s, "/")
	scope := Package(name, version)
	return scope, scope.validate()
}

func (s Scope) validate() error {
	switch {
	case s.pattern != "":
		if strings.ContainsAny(s.pattern, "=:") {
			return fmt.Errorf("invalid scope pattern %q", s.pattern)
		}
	case s.version != "" && s.name == "":
		return fmt.Errorf("scope version %q requires a package name", s.version)
	case s.name != "":
		if strings.ContainsAny(s.name, "=:*") {
			return fmt.Errorf("invalid scope package name %q", s.name)
		}
		if strings.ContainsAny(s.version, "=:*") {
			return fmt.Errorf("invalid scope package version %q", s.version)
		}
	}
	return nil
}

// prefix returns the option prefix this scope renders to, e.g. "*:" or
// "zlib/1.3:". The global scope renders to "".
func (s Scope) prefix() string {
	switch {
	case s.pattern != "":
		return s.pattern + ":"
	case s.name != "" && s.version != "":
		return s.name + "/" + s.version + ":"
	case s.name != "":
		return s.name + ":"
	}
	return ""
}

// String returns a diagnostic form of the scope.
func (s Scope) String() string {
	if p := s.prefix(); p != "" {
		return strings.TrimSuffix(p, ":")
	}
	return "global"
}
