// Package config loads, normalizes, and validates vidplan configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// VIDPLAN_GENERATION_API_KEY. The Config type centralizes every knob the CLI
// needs, so the run store, log sink, preload cache and generation client are
// all configured in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
