package domain

import (
	interfaces "laptev/internal/domain/interfaces"
	types "laptev/internal/domain/types"
)

// Type aliases expose domain types from the types subpackage for compact imports.
type (
	RecordingID     = types.RecordingID
	Recording       = types.Recording
	SessionIdentity = types.SessionIdentity
	SessionKey      = types.SessionKey
	X25519Public    = types.X25519Public
	X25519Private   = types.X25519Private
)

// Interface aliases expose domain interfaces from the interfaces subpackage.
type (
	RecordingStore = interfaces.RecordingStore
	PasswordBook   = interfaces.PasswordBook
	HostService    = interfaces.HostService
	HostTransport  = interfaces.HostTransport
	Dialer         = interfaces.Dialer
)

// Function re-exports for the identity and id helpers.
var (
	ParseRecordingID       = types.ParseRecordingID
	IdentityFromAddr       = types.IdentityFromAddr
	IdentityFromRemoteAddr = types.IdentityFromRemoteAddr
)
