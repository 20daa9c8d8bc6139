package util

import (
	"encoding/base64"
	"encoding/binary"
	"time"

	"github.com/google/uuid"
)

// ResetTokenLength is the encoded length of a reset token: 16+16+8 bytes in
// unpadded base64url.
const ResetTokenLength = 54

// GenerateResetToken builds a URL-safe single-use token from two random
// UUIDv4 values and the issue time in milliseconds.
func GenerateResetToken(now time.Time) (string, error) {
	first, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	second, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}

	raw := make([]byte, 0, 40)
	raw = append(raw, first[:]...)
	raw = append(raw, second[:]...)
	raw = binary.BigEndian.AppendUint64(raw, uint64(now.UnixMilli()))

	return base64.RawURLEncoding.EncodeToString(raw), nil
}
