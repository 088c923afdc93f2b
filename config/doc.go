// Package config loads and validates the application configuration.
//
// Configuration comes from a YAML file with ${VAR} environment
// substitution; a missing file falls back to defaults. Validation is
// eager: a configuration error surfaces at load time, never mid-run.
package config
