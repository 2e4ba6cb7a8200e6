// Package config loads the rename_kernels/global_postfix/keep_names
// configuration of spec §6 from a JSON file, searched upward from a
// starting directory the way the teacher's config.Load walks parent
// directories looking for wgslmin.json/.wgslminrc. CLI flags, when
// present, override the file.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/starbytesoftware/oclminify/internal/minifier"
)

// Config represents the configuration file structure. All fields are
// optional pointers so Merge can tell "not specified" apart from a
// false/empty value explicitly set in the file.
type Config struct {
	RenameKernels *bool    `json:"renameKernels,omitempty"`
	GlobalPostfix *string  `json:"globalPostfix,omitempty"`
	KeepNames     []string `json:"keepNames,omitempty"`
}

// ConfigFileNames are the names searched for, in order of preference.
var ConfigFileNames = []string{
	"oclminify.json",
	".oclminifyrc",
	".oclminifyrc.json",
}

// Load searches for a config file starting from startDir and walking up
// to parent directories. Returns a nil Config if none is found.
func Load(startDir string) (*Config, string, error) {
	dir := startDir
	for {
		for _, name := range ConfigFileNames {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				cfg, err := LoadFile(path)
				return cfg, path, err
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, "", nil
		}
		dir = parent
	}
}

// LoadFile loads configuration from a specific file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ToOptions converts a Config to minifier.Options, applying defaults
// for unset fields and the config-conflict normalization of spec §7: a
// non-empty postfix with rename_kernels explicitly false is treated as
// rename_kernels=true, since a postfix the rewriter would never apply
// is not a meaningful configuration to honor silently.
func (c *Config) ToOptions() minifier.Options {
	opts := minifier.DefaultOptions()
	if c.RenameKernels != nil {
		opts.RenameKernels = *c.RenameKernels
	}
	if c.GlobalPostfix != nil {
		opts.GlobalPostfix = *c.GlobalPostfix
	}
	if len(c.KeepNames) > 0 {
		opts.KeepNames = c.KeepNames
	}
	if opts.GlobalPostfix != "" && !opts.RenameKernels {
		opts.RenameKernels = true
	}
	return opts
}

// MergeOptions carries CLI flag overrides; nil pointers mean "not
// specified on the CLI".
type MergeOptions struct {
	RenameKernels *bool
	GlobalPostfix *string
	KeepNames     []string
}

// Merge combines config-file options with CLI options, CLI taking
// precedence, mirroring the teacher's Config.Merge.
func (c *Config) Merge(cli MergeOptions) minifier.Options {
	opts := c.ToOptions()
	if cli.RenameKernels != nil {
		opts.RenameKernels = *cli.RenameKernels
	}
	if cli.GlobalPostfix != nil {
		opts.GlobalPostfix = *cli.GlobalPostfix
	}
	if len(cli.KeepNames) > 0 {
		opts.KeepNames = append(opts.KeepNames, cli.KeepNames...)
	}
	if opts.GlobalPostfix != "" && !opts.RenameKernels {
		opts.RenameKernels = true
	}
	return opts
}
