package types

// Recording is one entry of the recording index: the id plus the thumbnail
// artifact. Video bytes are fetched separately by id.
type Recording struct {
	ID        RecordingID `cbor:"1,keyasint" json:"id"`
	Thumbnail []byte      `cbor:"2,keyasint" json:"thumbnail"`
}
