package config

import _ "embed"

// DefaultTOML holds the raw bytes of config.default.toml, embedded at build
// time. The daemon copies this file to the data directory on first run so
// users start from a commented template instead of bare encoder output.
//
//go:embed config.default.toml
var DefaultTOML []byte
