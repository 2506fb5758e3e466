// Package commands defines the laptev-host CLI.
//
// Commands
//
//   - serve          Run the host (HTTP and stream listeners, sweeper, metrics)
//   - config init    Write a fresh config with a random password
//   - config show    Print the effective config and password fingerprint
//   - import         Add a recording (thumbnail and video) to the data dir
//
// The config path comes from --config, then LAPTEV_HOST_CONFIG, then
// laptev-host.toml in the working directory.
package commands
