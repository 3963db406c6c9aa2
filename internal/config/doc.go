// Package config provides configuration loading and validation for the VMC keymap service.
// It reads YAML files and validates server, keyboard, binding and logging settings.
package config
