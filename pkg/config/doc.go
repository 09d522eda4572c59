// Package config loads storekeep's configuration.
//
// Layers, lowest priority first:
//
//  1. embedded/defaults.toml
//  2. the config file: --config, else ./storekeep.toml, else
//     $XDG_CONFIG_HOME/storekeep/config.toml
//  3. STOREKEEP_* environment variables, "__" separating levels
//  4. key=value overrides passed in LoadOptions (the --set flag)
//
// The cleaning pattern lists are deliberately absent: they are part of the
// tool's contract and live in pkg/patterns.
package config
