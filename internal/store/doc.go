// Package store holds the host's state.
//
// SessionStore is the in-memory table of negotiated sessions keyed by the
// viewer's network identity. Entries never touch disk and expire after the
// configured lifetime. RecordingFileStore serves recordings from a data
// directory where every recording is a pair of files named by its id:
// <id>.jpg (thumbnail) and <id>.h264 (video). Writes go through
// WriteFileAtomic so readers never observe a half-written artifact.
package store
