// Package web carries the session protocol over HTTP.
//
// Routes:
//
//	GET    /               status: 200 "online" when authenticated, else 403
//	PUT    /handshake/0    32-byte public key in, 32-byte public key out
//	PUT    /handshake/1    sealed password in, 200 or 403
//	GET    /synchronize    sealed recording index out
//	GET    /download/{id}  sealed video out
//	DELETE /delete/{id}    200 or 500
//
// Bodies are raw bytes (application/octet-stream). Failures carry no body:
// 403 for authentication problems, 400 for malformed input and 500 for
// anything on the host side.
package web
