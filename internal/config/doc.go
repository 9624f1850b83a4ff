// Package config defines the application's configuration structures and
// loading logic. Configuration is read from an optional YAML file and
// TASKFLOW_-prefixed environment variables, then validated before use.
package config
