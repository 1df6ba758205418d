// Package config loads, normalizes, and validates annodocs configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours the ANNODOCS_DOCUMENT environment fallback. Every
// command obtains its settings through Load so downstream code receives
// absolute paths, canonical log settings, and clear validation errors.
package config
