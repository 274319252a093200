// Package file provides file-based implementations of driven port interfaces.
// These adapters persist data to the local filesystem.
//
// ConfigStore stores application configuration as TOML under the
// application home directory.
package file
