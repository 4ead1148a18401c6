// Package config defines the editor configuration and its normalization.
//
// A host may pass a bare holder id, a Config value or a *Config pointer to
// Normalize. The result is always fully defaulted before any module sees
// it, and modules treat it as read-only afterwards.
//
// # Deprecated fields
//
// HolderID is accepted in place of Holder and InitialBlock in place of
// DefaultBlock. Each deprecated field is reported once per process.
//
// # Sub-packages
//
//   - loader: TOML and YAML configuration files
package config
