// Package client implements the viewer's session controller.
//
// A Controller moves between three states. Idle has no session. Handshaking
// runs the key exchange and password proof. Ready holds the session cipher
// and accepts Refresh, Download and Delete. Disconnect returns to Idle from
// anywhere and cancels a handshake in flight; the host is not told and lets
// the session expire on its own.
package client
