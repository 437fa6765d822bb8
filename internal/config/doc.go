// Package config loads, normalizes, and validates qaueue configuration data.
//
// It supplies repository defaults, reads an optional .env file, parses TOML,
// expands user paths, and honours environment fallbacks such as
// REDIS_ADDRESS. The resulting Config is built once at startup and handed to
// the store, engine, and CLI explicitly; nothing re-reads settings from the
// backing store at runtime.
package config
