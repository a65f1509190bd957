// Package config holds the filesystem layout the plugin engine operates on.
//
// The host application owns an application-data directory; plugins install
// under its "pykrita" subdirectory and action definition files live under
// its "actions" subdirectory. Configuration is loaded from environment
// variables with optional YAML file overrides.
package config
