// Package config defines the release-feed and package-manager settings used
// by the binary and provides helpers to load, validate and save them in YAML
// format.
//
// Every field has a built-in default, so running without a settings file
// manages the upstream Thorium browser package out of the box.
package config
