// Package config defines the application configuration structure and the
// loading logic that populates it from environment variables and an
// optional YAML file.
package config
