package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/tristendillon/amdbutler/core/logger"
	"gopkg.in/yaml.v3"
)

const FileName = "amdbutler.yaml"

type Config struct {
	BaseFolders          []string          `yaml:"base_folders"`
	RequireJSConfigFile  string            `yaml:"requirejs_config_file"`
	ExcludePathsMatching []string          `yaml:"exclude_paths_matching"`
	CrawlExcludes        []string          `yaml:"crawl_excludes"`
	ModuleGlob           string            `yaml:"module_glob"`
	SeparatePackages     bool              `yaml:"separate_packages"`
	Indentation          string            `yaml:"indentation"`
	Quote                string            `yaml:"quote"`
	PreferredAliases     map[string]string `yaml:"preferred_aliases"`

	// Root is the directory the config file was found in; empty for defaults.
	Root string `yaml:"-"`
}

func Default() *Config {
	return &Config{
		BaseFolders:          []string{"src"},
		RequireJSConfigFile:  "config.json",
		ExcludePathsMatching: []string{},
		CrawlExcludes:        []string{"**/nls/**", "**/tests/**"},
		ModuleGlob:           "**/*.js",
		Indentation:          "    ",
		Quote:                "'",
		PreferredAliases:     map[string]string{},
	}
}

// Load looks for amdbutler.yaml in dir and its ancestors.
func Load(dir string) (*Config, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve directory %s: %w", dir, err)
	}

	for current := abs; ; {
		candidate := filepath.Join(current, FileName)
		if _, err := os.Stat(candidate); err == nil {
			return LoadFile(candidate)
		}
		parent := filepath.Dir(current)
		if parent == current {
			break
		}
		current = parent
	}

	logger.Debug("No config file found above %s, using default config", abs)
	return Default(), nil
}

func LoadFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filePath, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}
	cfg.Root = filepath.Dir(filePath)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", filePath, err)
	}

	logger.Debug("Config file found: %s", filePath)
	logger.Debug("Config: %+v", *cfg)
	return cfg, nil
}

// applyDefaults fills fields an explicit empty value in the file would leave unusable.
func (c *Config) applyDefaults() {
	def := Default()
	if c.RequireJSConfigFile == "" {
		c.RequireJSConfigFile = def.RequireJSConfigFile
	}
	if c.ModuleGlob == "" {
		c.ModuleGlob = def.ModuleGlob
	}
	if c.Quote == "" {
		c.Quote = def.Quote
	}
	if c.PreferredAliases == nil {
		c.PreferredAliases = map[string]string{}
	}
}

func (c *Config) Validate() error {
	if len(c.BaseFolders) == 0 {
		return errors.New("base_folders must name at least one folder")
	}
	for _, name := range c.BaseFolders {
		if name == "" {
			return errors.New("base_folders contains an empty name")
		}
	}
	if c.Quote != "'" && c.Quote != `"` {
		return fmt.Errorf("quote must be ' or \", got %q", c.Quote)
	}

	patterns := append([]string{c.ModuleGlob}, c.CrawlExcludes...)
	patterns = append(patterns, c.ExcludePathsMatching...)
	for _, pattern := range patterns {
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf("invalid glob pattern %q", pattern)
		}
	}
	return nil
}

// RequireJSConfigPath resolves the RequireJS config file. Relative paths are
// taken from Root, falling back to fallbackRoot when no config file was found.
func (c *Config) RequireJSConfigPath(fallbackRoot string) string {
	if filepath.IsAbs(c.RequireJSConfigFile) {
		return c.RequireJSConfigFile
	}
	root := c.Root
	if root == "" {
		root = fallbackRoot
	}
	return filepath.Join(root, c.RequireJSConfigFile)
}

// Write stores cfg as amdbutler.yaml inside dir.
func Write(dir string, cfg *Config) (string, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to encode config: %w", err)
	}
	target := filepath.Join(dir, FileName)
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write config file %s: %w", target, err)
	}
	return target, nil
}
