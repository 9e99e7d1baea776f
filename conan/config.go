package conan

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/goplus/conandeps"
)

// Config mirrors a conandeps.yaml settings file. Every field maps to the
// fluent setter of the same name, so defaulting and override rules are
// identical either way.
type Config struct {
	Recipe        string        `yaml:"recipe"`
	OutputFolder  string        `yaml:"output_folder"`
	Profile       string        `yaml:"profile"`
	HostProfile   string        `yaml:"host_profile"`
	BuildProfile  string        `yaml:"build_profile"`
	BuildType     string        `yaml:"build_type"`
	DetectProfile bool          `yaml:"detect_profile"`
	Verbosity     string        `yaml:"verbosity"`
	Build         []string      `yaml:"build"`
	Options       []OptionEntry `yaml:"options"`
	Configs       []ConfEntry   `yaml:"configs"`
}

// OptionEntry is one scoped option in a settings file. Scope uses the
// textual form understood by ParseScope.
type OptionEntry struct {
	Scope string `yaml:"scope"`
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

// ConfEntry is one -c configuration override in a settings file.
type ConfEntry struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

// LoadConfig builds an Install from a YAML settings file. The file
// itself becomes a watch target so edits re-trigger the bridge.
func LoadConfig(path string) (*Install, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &conandeps.Error{Op: "load config", Kind: conandeps.ErrConfig, Err: err}
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &conandeps.Error{Op: "load config", Kind: conandeps.ErrConfig,
			Err: fmt.Errorf("parsing %s: %w", path, err)}
	}
	c, err := cfg.Install()
	if err != nil {
		return nil, err
	}
	c.watch = append(c.watch, path)
	return c, nil
}

// Install applies the file settings through the fluent builder.
func (cfg *Config) Install() (*Install, error) {
	c := New()
	if cfg.Recipe != "" {
		c.recipePath = cfg.Recipe
	}
	if cfg.OutputFolder != "" {
		c.OutputFolder(cfg.OutputFolder)
	}
	if cfg.Profile != "" {
		c.Profile(cfg.Profile)
	}
	if cfg.HostProfile != "" {
		c.HostProfile(cfg.HostProfile)
	}
	if cfg.BuildProfile != "" {
		c.BuildProfile(cfg.BuildProfile)
	}
	if cfg.BuildType != "" {
		c.SetBuildType(BuildType(cfg.BuildType))
	}
	if cfg.DetectProfile {
		c.DetectProfile()
	}
	if cfg.Verbosity != "" {
		c.Verbosity(Verbosity(cfg.Verbosity))
	}
	for _, policy := range cfg.Build {
		c.Build(policy)
	}
	for _, o := range cfg.Options {
		scope, err := ParseScope(o.Scope)
		if err != nil {
			return nil, &conandeps.Error{Op: "load config", Kind: conandeps.ErrConfig, Err: err}
		}
		c.Option(scope, o.Key, o.Value)
	}
	for _, kv := range cfg.Configs {
		c.Config(kv.Key, kv.Value)
	}
	return c, nil
}
