package types

import (
	"math"
	"strconv"
	"time"
)

// RecordingID identifies one recording. It is the unix timestamp (seconds) at
// which the recording started, so ordering by id is ordering by age.
type RecordingID uint64

// String returns the decimal form of the identifier, as used in file names
// and URL paths.
func (id RecordingID) String() string { return strconv.FormatUint(uint64(id), 10) }

// Time returns the recording start time. Ids beyond the int64 range are
// clamped to the latest representable second.
func (id RecordingID) Time() time.Time {
	if id > math.MaxInt64 {
		return time.Unix(math.MaxInt64, 0)
	}
	return time.Unix(int64(id), 0)
}

// ParseRecordingID parses the decimal form produced by String.
func ParseRecordingID(s string) (RecordingID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return RecordingID(v), nil
}
