// Package conan wraps the conan install workflow: a fluent settings
// builder, the derived command line, and the process invocation that
// captures the JSON dependency report.
package conan

import (
	"errors"
	"fmt"
	"strings"

	"github.com/goplus/conandeps"
	"github.com/goplus/conandeps/internal/env"
)

// BuildType is a value for the conan build_type setting. Any non-empty
// string is passed through; the constants cover the stock vocabulary.
type BuildType string

const (
	Debug          BuildType = "Debug"
	Release        BuildType = "Release"
	RelWithDebInfo BuildType = "RelWithDebInfo"
	MinSizeRel     BuildType = "MinSizeRel"
)

// Verbosity selects the -v level of the conan command output.
type Verbosity string

const (
	Quiet      Verbosity = "quiet"
	ErrorLevel Verbosity = "error"
	Warning    Verbosity = "warning" // conan's own default
	Notice     Verbosity = "notice"
	Status     Verbosity = "status"
	Verbose    Verbosity = "verbose"
	DebugLevel Verbosity = "debug"
	Trace      Verbosity = "trace"
)

type option struct {
	scope Scope
	key   string
	value string
}

type configEntry struct {
	key   string
	value string
}

// Install builds one "conan install" invocation. Configure it with the
// fluent setters, then Run it; the settings are frozen into the argument
// vector at that point and equal settings always produce byte-identical
// vectors.
type Install struct {
	recipePath    string
	outputFolder  string
	hostProfile   string
	buildProfile  string
	buildType     BuildType
	buildPolicy   []string
	verbosity     Verbosity
	detectProfile bool
	options       []option
	configs       []configEntry
	watch         []string // extra watch targets, e.g. a settings file
}

// New returns an install for the recipe in the current directory.
func New() *Install {
	return &Install{}
}

// WithRecipe returns an install for the recipe at the given path, either
// a conanfile or a directory containing one.
func WithRecipe(path string) *Install {
	return &Install{recipePath: path}
}

// OutputFolder sets the conan generators output directory. Defaults to
// the host pipeline's OUT_DIR.
func (c *Install) OutputFolder(dir string) *Install {
	c.outputFolder = dir
	return c
}

// Profile sets the host profile name. Alias for HostProfile.
func (c *Install) Profile(name string) *Install {
	return c.HostProfile(name)
}

// HostProfile sets the --profile:host name.
func (c *Install) HostProfile(name string) *Install {
	c.hostProfile = name
	return c
}

// BuildProfile sets the --profile:build name.
func (c *Install) BuildProfile(name string) *Install {
	c.buildProfile = name
	return c
}

// DetectProfile schedules "conan profile detect --exist-ok" to run before
// the install, once per distinct configured profile name. An already
// existing profile is not an error.
func (c *Install) DetectProfile() *Install {
	c.detectProfile = true
	return c
}

// SetBuildType sets the build_type setting explicitly. When left unset it
// is inferred from the host pipeline's active build profile.
func (c *Install) SetBuildType(bt BuildType) *Install {
	c.buildType = bt
	return c
}

// Build adds a --build policy value such as "missing" or a package
// reference. Repeated values accumulate in call order.
func (c *Install) Build(policy string) *Install {
	c.buildPolicy = append(c.buildPolicy, policy)
	return c
}

// Verbosity sets the conan output verbosity level.
func (c *Install) Verbosity(v Verbosity) *Install {
	c.verbosity = v
	return c
}

// Option adds a -o option at the given scope. Insertion order is kept;
// a later option with the same scope and key overrides an earlier one
// (explicit last-write-wins).
func (c *Install) Option(scope Scope, key, value string) *Install {
	c.options = append(c.options, option{scope: scope, key: key, value: value})
	return c
}

// Config adds a -c configuration override such as "tools.build:jobs".
// Insertion order is kept, with the same last-write-wins rule as Option.
func (c *Install) Config(key, value string) *Install {
	c.configs = append(c.configs, configEntry{key: key, value: value})
	return c
}

// Args returns the finalized argument vector for the conan executable.
// Equal settings yield byte-identical vectors.
func (c *Install) Args() ([]string, error) {
	args, _, _, err := c.finalize()
	return args, err
}

// finalize validates the settings, applies the defaulting rules and
// renders the canonical argument vector.
func (c *Install) finalize() (args []string, recipe, outDir string, err error) {
	if err := c.validate(); err != nil {
		return nil, "", "", &conandeps.Error{Op: "conan install", Kind: conandeps.ErrConfig, Err: err}
	}

	recipe = c.recipePath
	if recipe == "" {
		recipe = "."
	}
	outDir = c.outputFolder
	if outDir == "" {
		outDir = env.OutputDir()
	}
	if outDir == "" {
		err := errors.New("no output folder set and OUT_DIR is empty")
		return nil, "", "", &conandeps.Error{Op: "conan install", Kind: conandeps.ErrConfig, Err: err}
	}
	verbosity := c.verbosity
	if verbosity == "" {
		verbosity = Warning
	}

	args = []string{"install", recipe, "-v" + string(verbosity), "--format", "json", "--output-folder", outDir}
	if c.hostProfile != "" {
		args = append(args, "--profile:host", c.hostProfile)
	}
	if c.buildProfile != "" {
		args = append(args, "--profile:build", c.buildProfile)
	}
	for _, policy := range c.buildPolicy {
		args = append(args, "--build", policy)
	}
	buildType := c.buildType
	if buildType == "" {
		buildType = BuildType(env.HostBuildType())
	}
	if buildType != "" {
		args = append(args, "-s", "build_type="+string(buildType))
	}
	for _, o := range lastWriteWins(c.options, func(o option) string { return o.scope.prefix() + o.key }) {
		args = append(args, "-o", o.scope.prefix()+o.key+"="+o.value)
	}
	for _, kv := range lastWriteWins(c.configs, func(kv configEntry) string { return kv.key }) {
		args = append(args, "-c", kv.key+"="+kv.value)
	}
	return args, recipe, outDir, nil
}

func (c *Install) validate() error {
	for _, o := range c.options {
		if err := o.scope.validate(); err != nil {
			return err
		}
		if err := validateKey(o.key); err != nil {
			return fmt.Errorf("option %s: %w", o.scope, err)
		}
	}
	for _, kv := range c.configs {
		if err := validateKey(kv.key); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	return nil
}

func validateKey(key string) error {
	if key == "" {
		return errors.New("empty key")
	}
	if strings.ContainsAny(key, "= \t") {
		return fmt.Errorf("invalid key %q", key)
	}
	return nil
}

// lastWriteWins drops entries overridden by a later entry with the same
// rendering key, keeping the survivors in the order of their final
// occurrence.
func lastWriteWins[T any](entries []T, keyOf func(T) string) []T {
	kept := make([]bool, len(entries))
	seen := make(map[string]bool, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		key := keyOf(entries[i])
		if !seen[key] {
			seen[key] = true
			kept[i] = true
		}
	}
	out := make([]T, 0, len(entries))
	for i, entry := range entries {
		if kept[i] {
			out = append(out, entry)
		}
	}
	return out
}
