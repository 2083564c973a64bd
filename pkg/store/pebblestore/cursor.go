package pebblestore

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"
	"hash/crc32"

	"github.com/userhub/userhub/pkg/models"
)

// Cursor tokens frame the last-evaluated store key as
// [CRC32(4)][KeyLen(4)][Key] and base64-encode the frame. The checksum
// rejects tokens that were truncated or edited in transit. Tokens carry no
// meaning beyond "resume exactly where this page stopped".
const cursorHeaderLen = 8

var cursorEncoding = base64.RawURLEncoding

func encodeCursor(lastKey []byte) string {
	buf := make([]byte, cursorHeaderLen+len(lastKey))
	binary.LittleEndian.PutUint32(buf[0:], crc32.ChecksumIEEE(lastKey))
	binary.LittleEndian.PutUint32(buf[4:], uint32(len(lastKey)))
	copy(buf[cursorHeaderLen:], lastKey)
	return cursorEncoding.EncodeToString(buf)
}

func decodeCursor(token string) ([]byte, error) {
	buf, err := cursorEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("undecodable pagination token: %w", models.ErrInvalidCursor)
	}
	if len(buf) < cursorHeaderLen {
		return nil, fmt.Errorf("pagination token too short: %w", models.ErrInvalidCursor)
	}

	sum := binary.LittleEndian.Uint32(buf[0:4])
	keyLen := binary.LittleEndian.Uint32(buf[4:8])
	if int(keyLen) != len(buf)-cursorHeaderLen {
		return nil, fmt.Errorf("pagination token length mismatch: %w", models.ErrInvalidCursor)
	}

	key := buf[cursorHeaderLen:]
	if crc32.ChecksumIEEE(key) != sum {
		return nil, fmt.Errorf("pagination token checksum mismatch: %w", models.ErrInvalidCursor)
	}
	if len(key) <= len(userKeyPrefix) || string(key[:len(userKeyPrefix)]) != userKeyPrefix {
		return nil, fmt.Errorf(
			"pagination token key outside the user keyspace: %w",
			models.ErrInvalidCursor,
		)
	}

	return key, nil
}
