package cppinfo

import (
	"errors"
	"os"
	"slices"
	"testing"

	"github.com/goplus/conandeps"
)

func parseTestdata(t *testing.T) *Graph {
	t.Helper()
	data, err := os.ReadFile("testdata/report.json")
	if err != nil {
		t.Fatalf("reading testdata: %v", err)
	}
	g, err := ParseReport(data)
	if err != nil {
		t.Fatalf("ParseReport failed: %v", err)
	}
	return g
}

func TestParseReport(t *testing.T) {
	g := parseTestdata(t)

	if len(g.Packages) != 2 {
		t.Fatalf("got %d packages, want 2: %+v", len(g.Packages), g.Packages)
	}

	openssl, zlib := g.Packages[0], g.Packages[1]
	if openssl.Name != "openssl" || openssl.Version != "3.1.3" {
		t.Errorf("packages[0] = %s/%s, want openssl/3.1.3", openssl.Name, openssl.Version)
	}
	if zlib.Name != "zlib" || zlib.Version != "1.3" {
		t.Errorf("packages[1] = %s/%s, want zlib/1.3", zlib.Name, zlib.Version)
	}

	if want := []string{"crypto", "ssl"}; !slices.Equal(openssl.Libs, want) {
		t.Errorf("openssl libs = %v, want %v", openssl.Libs, want)
	}
	if want := []string{"dl", "pthread", "dl"}; !slices.Equal(openssl.SystemLibs, want) {
		t.Errorf("openssl system libs = %v, want %v", openssl.SystemLibs, want)
	}
	if want := []string{"-Wl,--as-needed"}; !slices.Equal(openssl.ExeLinkFlags, want) {
		t.Errorf("openssl exe link flags = %v, want %v", openssl.ExeLinkFlags, want)
	}
	if want := []string{"z"}; !slices.Equal(zlib.Libs, want) {
		t.Errorf("zlib libs = %v, want %v", zlib.Libs, want)
	}
	if want := []string{"/pkg/zlib/lib"}; !slices.Equal(zlib.LibDirs, want) {
		t.Errorf("zlib lib dirs = %v, want %v", zlib.LibDirs, want)
	}

	wantDefines := []Define{
		{Key: "OPENSSL_NO_DEPRECATED"},
		{Key: "OPENSSL_API_LEVEL", Value: "30100", HasValue: true},
	}
	if !slices.Equal(openssl.Defines, wantDefines) {
		t.Errorf("openssl defines = %v, want %v", openssl.Defines, wantDefines)
	}
}

func TestParseReportDiamondVisitedOnce(t *testing.T) {
	// zlib is a dependency of both the root and openssl; it must appear
	// exactly once, after its dependent.
	g := parseTestdata(t)

	var names []string
	for _, p := range g.Packages {
		names = append(names, p.Name)
	}
	if want := []string{"openssl", "zlib"}; !slices.Equal(names, want) {
		t.Errorf("package order = %v, want %v", names, want)
	}
}

func TestParseReportEmptyGraph(t *testing.T) {
	for _, report := range []string{
		`{"graph": {"nodes": {}}}`,
		`{"graph": {"nodes": {"0": {"ref": "conanfile", "dependencies": {}}}}}`,
	} {
		g, err := ParseReport([]byte(report))
		if err != nil {
			t.Fatalf("ParseReport(%s) failed: %v", report, err)
		}
		if len(g.Packages) != 0 {
			t.Errorf("ParseReport(%s) = %d packages, want 0", report, len(g.Packages))
		}
	}
}

func TestParseReportHeaderOnly(t *testing.T) {
	report := `{"graph": {"nodes": {
		"0": {"dependencies": {"1": {}}},
		"1": {"name": "rapidjson", "version": "1.1.0", "cpp_info": {
			"root": {"includedirs": ["/pkg/rapidjson/include"]}
		}}
	}}}`

	g, err := ParseReport([]byte(report))
	if err != nil {
		t.Fatalf("ParseReport failed: %v", err)
	}
	if len(g.Packages) != 1 {
		t.Fatalf("got %d packages, want 1", len(g.Packages))
	}
	p := g.Packages[0]
	if len(p.Libs) != 0 || len(p.LibDirs) != 0 {
		t.Errorf("header-only package has libs %v, lib dirs %v; want none", p.Libs, p.LibDirs)
	}
	if want := []string{"/pkg/rapidjson/include"}; !slices.Equal(p.IncludeDirs, want) {
		t.Errorf("include dirs = %v, want %v", p.IncludeDirs, want)
	}
}

func TestHeaderOnlyComponentKeepsIncludesOnly(t *testing.T) {
	// A component without libs must not contribute link metadata, even
	// when the report lists lib dirs, system libs or link flags for it.
	// Include dirs and defines still come through.
	report := `{"graph": {"nodes": {
		"0": {"dependencies": {"1": {}}},
		"1": {"name": "boost", "version": "1.84.0", "cpp_info": {
			"headers": {
				"includedirs": ["/pkg/boost/include"],
				"libdirs": ["/pkg/boost/lib"],
				"system_libs": ["m"],
				"frameworks": ["CoreFoundation"],
				"sharedlinkflags": ["-Wl,-undefined,dynamic_lookup"],
				"defines": ["BOOST_ALL_NO_LIB"]
			},
			"filesystem": {
				"includedirs": ["/pkg/boost/include"],
				"libdirs": ["/pkg/boost/lib"],
				"libs": ["boost_filesystem"]
			}
		}}
	}}}`

	g, err := ParseReport([]byte(report))
	if err != nil {
		t.Fatalf("ParseReport failed: %v", err)
	}
	p := g.Packages[0]

	if want := []string{"/pkg/boost/include", "/pkg/boost/include"}; !slices.Equal(p.IncludeDirs, want) {
		t.Errorf("include dirs = %v, want %v", p.IncludeDirs, want)
	}
	if want := []Define{{Key: "BOOST_ALL_NO_LIB"}}; !slices.Equal(p.Defines, want) {
		t.Errorf("defines = %v, want %v", p.Defines, want)
	}
	if want := []string{"/pkg/boost/lib"}; !slices.Equal(p.LibDirs, want) {
		t.Errorf("lib dirs = %v, want %v", p.LibDirs, want)
	}
	if want := []string{"boost_filesystem"}; !slices.Equal(p.Libs, want) {
		t.Errorf("libs = %v, want %v", p.Libs, want)
	}
	if len(p.SystemLibs) != 0 {
		t.Errorf("system libs = %v, want none", p.SystemLibs)
	}
	if len(p.Frameworks) != 0 {
		t.Errorf("frameworks = %v, want none", p.Frameworks)
	}
	if len(p.SharedLinkFlags) != 0 {
		t.Errorf("shared link flags = %v, want none", p.SharedLinkFlags)
	}
}

func TestParseReportErrors(t *testing.T) {
	for name, report := range map[string]string{
		"not json":      `conan crashed`,
		"missing graph": `{}`,
		"missing nodes": `{"graph": {}}`,
		"missing name": `{"graph": {"nodes": {
			"0": {"dependencies": {"1": {}}},
			"1": {"version": "1.0", "cpp_info": {}}
		}}}`,
		"dangling dependency": `{"graph": {"nodes": {
			"0": {"dependencies": {"7": {}}}
		}}}`,
	} {
		_, err := ParseReport([]byte(report))
		if err == nil {
			t.Errorf("%s: ParseReport succeeded, want error", name)
			continue
		}
		if !errors.Is(err, conandeps.ErrParse) {
			t.Errorf("%s: error %v is not ErrParse", name, err)
		}
		if errors.Is(err, conandeps.ErrInvoke) {
			t.Errorf("%s: error %v wrongly matches ErrInvoke", name, err)
		}
	}
}

func TestComponentRequiresOrder(t *testing.T) {
	// Component b requires a; with b first in the document, a's fields
	// must fold in right after b's, and not twice.
	report := `{"graph": {"nodes": {
		"0": {"dependencies": {"1": {}}},
		"1": {"name": "pkg", "version": "1.0", "cpp_info": {
			"b": {"libs": ["b"], "requires": ["a", "other::far"]},
			"a": {"libs": ["a"]}
		}}
	}}}`

	g, err := ParseReport([]byte(report))
	if err != nil {
		t.Fatalf("ParseReport failed: %v", err)
	}
	if want := []string{"b", "a"}; !slices.Equal(g.Packages[0].Libs, want) {
		t.Errorf("libs = %v, want %v", g.Packages[0].Libs, want)
	}
}
