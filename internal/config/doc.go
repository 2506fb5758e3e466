// Package config loads, generates and persists the TOML configuration of
// the host (laptev-host.toml) and the viewer (laptev.toml).
//
// Load variants apply defaults and validate; most callers want LoadFile or
// one of the LoadOrGenerate helpers.
package config
