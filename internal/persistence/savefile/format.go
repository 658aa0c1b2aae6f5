// Package savefile implements the on-disk save format: a small binary header
// wrapping an optionally LZ4-compressed payload, with an xxh32 checksum and a
// JSON metadata block that can be read without touching the payload.
//
// Layout:
//
//	[magic:4][format_version:u32 LE][flags:u32 LE][timestamp:u64 LE]
//	[uncompressed_size:u32 LE][checksum:u32 LE][metadata_size:u32 LE]
//	[metadata bytes][payload bytes]
//
// Files that do not start with the magic are treated as legacy version-0
// payloads and passed through untouched.
package savefile

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/pierrec/lz4/v4"
	"github.com/pierrec/xxHash/xxHash32"
)

const Magic = "MEGA"

const headerSize = 4 + 4 + 4 + 8 + 4 + 4 + 4

const FlagCompressed uint32 = 1 << 0

// Metadata is the standalone summary block readable without decoding the
// payload. Shown in load menus and by the saveinfo tool.
type Metadata struct {
	CityName        string  `json:"city_name"`
	Population      int     `json:"population"`
	Treasury        float64 `json:"treasury"`
	Day             int     `json:"day"`
	Hour            float64 `json:"hour"`
	PlayTimeSeconds float64 `json:"play_time_seconds"`
}

// Unwrapped is the result of parsing a save file's envelope.
type Unwrapped struct {
	Legacy    bool
	Version   uint32
	Flags     uint32
	Timestamp uint64
	Meta      Metadata
	Payload   []byte
}

type TruncatedError struct {
	Need, Have int
}

func (e *TruncatedError) Error() string {
	return fmt.Sprintf("savefile: truncated: need %d bytes, have %d", e.Need, e.Have)
}

type ChecksumError struct {
	Want, Got uint32
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("savefile: checksum mismatch: want %08x, got %08x", e.Want, e.Got)
}

type VersionMismatchError struct {
	ExpectedMax uint32
	Found       uint32
}

func (e *VersionMismatchError) Error() string {
	return fmt.Sprintf("savefile: version %d is newer than supported %d", e.Found, e.ExpectedMax)
}

// Wrap envelopes a payload. When compress is set the payload is LZ4
// block-compressed; the checksum always covers the on-disk payload bytes.
func Wrap(payload []byte, version uint32, meta Metadata, timestamp uint64, compress bool) ([]byte, error) {
	metaBytes, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("savefile: encode metadata: %w", err)
	}

	disk := payload
	var flags uint32
	if compress {
		var c lz4.Compressor
		buf := make([]byte, lz4.CompressBlockBound(len(payload)))
		n, err := c.CompressBlock(payload, buf)
		if err != nil {
			return nil, fmt.Errorf("savefile: lz4: %w", err)
		}
		// n == 0 means incompressible; store raw.
		if n > 0 && n < len(payload) {
			disk = buf[:n]
			flags |= FlagCompressed
		}
	}

	out := make([]byte, 0, headerSize+len(metaBytes)+len(disk))
	out = append(out, Magic...)
	out = binary.LittleEndian.AppendUint32(out, version)
	out = binary.LittleEndian.AppendUint32(out, flags)
	out = binary.LittleEndian.AppendUint64(out, timestamp)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(payload)))
	out = binary.LittleEndian.AppendUint32(out, xxHash32.Checksum(disk, 0))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(metaBytes)))
	out = append(out, metaBytes...)
	out = append(out, disk...)
	return out, nil
}

// Unwrap parses the envelope, verifies the checksum, and decompresses the
// payload. Data without the magic is returned as a legacy payload.
func Unwrap(data []byte) (Unwrapped, error) {
	var u Unwrapped
	if len(data) < 4 || string(data[:4]) != Magic {
		u.Legacy = true
		u.Payload = data
		return u, nil
	}
	if len(data) < headerSize {
		return u, &TruncatedError{Need: headerSize, Have: len(data)}
	}

	u.Version = binary.LittleEndian.Uint32(data[4:8])
	u.Flags = binary.LittleEndian.Uint32(data[8:12])
	u.Timestamp = binary.LittleEndian.Uint64(data[12:20])
	uncompressed := binary.LittleEndian.Uint32(data[20:24])
	checksum := binary.LittleEndian.Uint32(data[24:28])
	metaSize := binary.LittleEndian.Uint32(data[28:32])

	if len(data) < headerSize+int(metaSize) {
		return u, &TruncatedError{Need: headerSize + int(metaSize), Have: len(data)}
	}
	metaBytes := data[headerSize : headerSize+int(metaSize)]
	if err := json.Unmarshal(metaBytes, &u.Meta); err != nil {
		return u, fmt.Errorf("savefile: decode metadata: %w", err)
	}

	disk := data[headerSize+int(metaSize):]
	if got := xxHash32.Checksum(disk, 0); got != checksum {
		return u, &ChecksumError{Want: checksum, Got: got}
	}

	if u.Flags&FlagCompressed != 0 {
		dst := make([]byte, uncompressed)
		n, err := lz4.UncompressBlock(disk, dst)
		if err != nil {
			return u, fmt.Errorf("savefile: lz4 decompress: %w", err)
		}
		if n != int(uncompressed) {
			return u, &TruncatedError{Need: int(uncompressed), Have: n}
		}
		u.Payload = dst
	} else {
		u.Payload = disk
	}
	return u, nil
}

// ReadMetadata parses only the header and metadata block. The payload is not
// checksummed or decompressed, so this is safe on large files.
func ReadMetadata(data []byte) (Metadata, uint32, error) {
	var meta Metadata
	if len(data) < 4 || string(data[:4]) != Magic {
		return meta, 0, fmt.Errorf("savefile: legacy file has no metadata")
	}
	if len(data) < headerSize {
		return meta, 0, &TruncatedError{Need: headerSize, Have: len(data)}
	}
	version := binary.LittleEndian.Uint32(data[4:8])
	metaSize := binary.LittleEndian.Uint32(data[28:32])
	if len(data) < headerSize+int(metaSize) {
		return meta, version, &TruncatedError{Need: headerSize + int(metaSize), Have: len(data)}
	}
	if err := json.Unmarshal(data[headerSize:headerSize+int(metaSize)], &meta); err != nil {
		return meta, version, fmt.Errorf("savefile: decode metadata: %w", err)
	}
	return meta, version, nil
}
