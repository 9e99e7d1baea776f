package conan

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/qiniu/x/log"

	"github.com/goplus/conandeps"
	"github.com/goplus/conandeps/cppinfo"
	"github.com/goplus/conandeps/directive"
	"github.com/goplus/conandeps/internal/env"
)

// reportFile names the report artifact kept under the output folder so
// the host pipeline can watch it for changes.
const reportFile = "conan-graph.json"

// Run holds the captured result of one successful conan install.
type Run struct {
	report []byte   // raw JSON report, captured from the isolated stdout stream
	watch  []string // paths whose change should re-trigger the bridge
}

// Run invokes conan install with the finalized argument vector.
//
// The JSON report stream is captured byte-exact for parsing while the
// human-readable progress stream is forwarded to stderr as it arrives.
// A non-zero exit status aborts with an invocation error before any
// parsing happens: a failed resolution cannot yield trustworthy link
// metadata. The caller controls cancellation through ctx; no timeout is
// applied here.
func (c *Install) Run(ctx context.Context) (*Run, error) {
	args, recipe, outDir, err := c.finalize()
	if err != nil {
		return nil, err
	}
	conanExe := env.Conan()

	if c.detectProfile {
		if err := detectProfile(ctx, conanExe, c.hostProfile); err != nil {
			return nil, err
		}
		if c.buildProfile != c.hostProfile {
			if err := detectProfile(ctx, conanExe, c.buildProfile); err != nil {
				return nil, err
			}
		}
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, &conandeps.Error{Op: "conan install", Kind: conandeps.ErrInvoke, Err: err}
	}

	log.Debugf("running %s %s", conanExe, strings.Join(args, " "))
	cmd := exec.CommandContext(ctx, conanExe, args...)
	var report bytes.Buffer
	cmd.Stdout = &report
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		var exit *exec.ExitError
		if errors.As(err, &exit) {
			err = fmt.Errorf("exit status %d", exit.ExitCode())
		}
		return nil, &conandeps.Error{Op: "conan install", Kind: conandeps.ErrInvoke, Err: err}
	}

	reportPath := filepath.Join(outDir, reportFile)
	if err := os.WriteFile(reportPath, report.Bytes(), 0644); err != nil {
		return nil, &conandeps.Error{Op: "save report", Kind: conandeps.ErrInvoke, Err: err}
	}

	watch := []string{reportPath}
	if p := recipeWatchPath(recipe); p != "" {
		watch = append(watch, p)
	}
	watch = append(watch, c.watch...)
	return &Run{report: report.Bytes(), watch: watch}, nil
}

// detectProfile runs "conan profile detect --exist-ok", which succeeds
// when the profile already exists; only genuine detection failures are
// fatal. Its output goes to stderr to keep stdout clean for directives.
func detectProfile(ctx context.Context, conanExe, profile string) error {
	args := []string{"profile", "detect", "--exist-ok"}
	if profile != "" {
		log.Infof("running 'conan profile detect' for profile %q", profile)
		args = append(args, "--name", profile)
	} else {
		log.Info("running 'conan profile detect' for the default profile")
	}
	cmd := exec.CommandContext(ctx, conanExe, args...)
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return &conandeps.Error{Op: "conan profile detect", Kind: conandeps.ErrInvoke, Err: err}
	}
	return nil
}

// recipeWatchPath resolves the conanfile to watch for dependency
// declaration changes. Returns "" when none exists on disk.
func recipeWatchPath(recipe string) string {
	info, err := os.Stat(recipe)
	if err != nil {
		return ""
	}
	if !info.IsDir() {
		return recipe
	}
	for _, name := range []string{"conanfile.py", "conanfile.txt"} {
		p := filepath.Join(recipe, name)
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// Report returns the captured JSON report, for callers that want to walk
// the graph themselves.
func (r *Run) Report() []byte {
	return r.report
}

// Parse decodes the captured report, aggregates the per-package metadata
// and renders the directive set, registering the run's watch targets.
func (r *Run) Parse() (*directive.Set, error) {
	graph, err := cppinfo.ParseReport(r.report)
	if err != nil {
		return nil, err
	}
	md := graph.Aggregate()
	md.AddWatch(r.watch...)
	return directive.FromMetadata(md), nil
}
