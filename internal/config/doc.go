// Package config loads, normalizes, and validates Subtext configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment overrides such as
// SUBTEXT_INDEX_URL. The Config type centralizes every knob the CLI needs,
// allowing the state directory, caption language policy, and search index
// credentials to be discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
