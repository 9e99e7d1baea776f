// Package directive renders aggregated conan metadata as the directive
// lines the host build pipeline consumes, one line per directive.
package directive

import (
	"bytes"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/goplus/conandeps"
	"github.com/goplus/conandeps/cppinfo"
	"github.com/goplus/conandeps/internal/env"
)

// prefix marks a line as a conandeps directive; the pipeline ignores
// anything else on the channel.
const prefix = "conandeps:"

// Directive keys recognized by the host build pipeline.
const (
	KeyLinkSearch       = "link-search"
	KeyLinkLib          = "link-lib"
	KeyLinkArg          = "link-arg"
	KeyInclude          = "include"
	KeyDefine           = "define"
	KeyFramework        = "framework"
	KeyRerunIfChanged   = "rerun-if-changed"
	KeyRerunIfEnvChange = "rerun-if-env-changed"
)

// Set is an immutable batch of directive lines plus the query surface
// over the metadata that produced it. Re-emitting a Set writes identical
// bytes, so emission is idempotent in effect.
type Set struct {
	md  *cppinfo.Metadata
	out []byte
}

// FromMetadata renders the full directive set for md. Lines are grouped
// per kind with the metadata's first-occurrence order preserved inside
// each kind; watch directives come last.
func FromMetadata(md *cppinfo.Metadata) *Set {
	var buf bytes.Buffer
	put := func(key, value string) {
		fmt.Fprintf(&buf, "%s%s=%s\n", prefix, key, value)
	}

	for _, dir := range md.LibDirs() {
		put(KeyLinkSearch, dir)
	}
	for _, lib := range md.Libs() {
		put(KeyLinkLib, lib)
	}
	for _, lib := range md.SystemLibs() {
		put(KeyLinkLib, lib)
	}
	for _, dir := range md.IncludeDirs() {
		put(KeyInclude, dir)
	}
	for _, def := range md.Defines() {
		put(KeyDefine, def.String())
	}
	for _, flag := range md.ExeLinkFlags() {
		put(KeyLinkArg, flag)
	}
	for _, flag := range md.SharedLinkFlags() {
		put(KeyLinkArg, flag)
	}
	for _, fw := range md.Frameworks() {
		put(KeyFramework, fw)
	}
	put(KeyRerunIfEnvChange, env.ConanEnv)
	for _, p := range md.WatchPaths() {
		put(KeyRerunIfChanged, p)
	}
	return &Set{md: md, out: buf.Bytes()}
}

// Emit writes the directive lines to the pipeline's output channel in
// one shot.
func (s *Set) Emit(w io.Writer) error {
	if _, err := w.Write(s.out); err != nil {
		return &conandeps.Error{Op: "emit directives", Kind: conandeps.ErrEmit, Err: err}
	}
	return nil
}

// Bytes returns the rendered directive lines.
func (s *Set) Bytes() []byte {
	return slices.Clone(s.out)
}

// Lines returns the rendered directive lines without trailing newlines.
func (s *Set) Lines() []string {
	return strings.Split(strings.TrimSuffix(string(s.out), "\n"), "\n")
}

// IncludePaths returns the aggregated include directories, for callers
// composing compiler flags before emission.
func (s *Set) IncludePaths() []string {
	return s.md.IncludeDirs()
}

// LibPaths returns the aggregated library search directories.
func (s *Set) LibPaths() []string {
	return s.md.LibDirs()
}

// Libs returns the aggregated package library names.
func (s *Set) Libs() []string {
	return s.md.Libs()
}

// SystemLibs returns the aggregated system library names.
func (s *Set) SystemLibs() []string {
	return s.md.SystemLibs()
}

// Defines returns the aggregated preprocessor definitions.
func (s *Set) Defines() []cppinfo.Define {
	return s.md.Defines()
}
