// Package config handles loading and parsing of configuration from YAML files
// and environment variables. It defines the application configuration structure
// including server settings, asset source selection (local filesystem or
// upstream origin), health check intervals, and logging.
package config
