package main

import (
	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"x86disasm/disasm"
)

// fileConfig mirrors disasm.Options as loaded from a TOML config file.
// Fields left absent from the file keep their zero value and are then
// subject to override by explicit CLI flags in loadOptions.
type fileConfig struct {
	OnlyCodeSections bool `toml:"only_code_sections"`
	Verbosity        int  `toml:"verbosity"`
}

// loadConfig reads a TOML options file. An empty path is not an error: it
// yields zero-value options for the caller to override from flags.
func loadConfig(path string) (disasm.Options, error) {
	if path == "" {
		return disasm.Options{}, nil
	}
	var cfg fileConfig
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return disasm.Options{}, errors.Wrapf(err, "config: %s", path)
	}
	return disasm.Options{OnlyCodeSections: cfg.OnlyCodeSections, Verbosity: cfg.Verbosity}, nil
}
