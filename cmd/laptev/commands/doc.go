// Package commands defines the laptev viewer CLI.
//
// Commands
//
//   - hosts add      Store the pre-shared password for a host
//   - hosts remove   Forget a host
//   - hosts list     Show known hosts with password fingerprints
//   - status         Connect to a host and report the session state
//   - list           Show the host's recordings, newest first, one page at a time
//   - download       Fetch a recording's video into the download dir
//   - delete         Remove a recording from the host
//
// # Implementation
//
// The root command loads the viewer config before any subcommand runs. Every
// network command opens a fresh session (key exchange, password proof and
// one synchronize) through client.Controller, so a host that restarted or
// expired the previous session is handled the same as a first contact.
package commands
