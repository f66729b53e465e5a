package gitstate

import (
	"bytes"
	"encoding/binary"
)

// Layout of the 128-byte status record. All integers are little-endian.
const (
	RecordSize = 128

	recordMagic          = "CCST"
	recordVersion uint32 = 1
	oidLen               = 40

	offMagic       = 0
	offVersion     = 4
	offIndexMtime  = 8
	offHeadOID     = 16
	offFiles       = 56
	offLinesAdded  = 60
	offLinesDelete = 64
	offAhead       = 68
	offBehind      = 72
	// The upstream oid lives in the reserved tail so readers that only know
	// the first 76 bytes still accept the record.
	offUpstreamOID = 76
)

// StatsRecord is the decoded status cache record.
type StatsRecord struct {
	IndexMtime   uint64
	HeadOID      [oidLen]byte
	FilesChanged uint32
	LinesAdded   uint32
	LinesDeleted uint32
	Ahead        uint32
	Behind       uint32
	// UpstreamOID is the upstream commit Ahead and Behind were counted
	// against, all zero when there was none.
	UpstreamOID [oidLen]byte
}

// Encode serialises r into the fixed layout.
func (r StatsRecord) Encode() [RecordSize]byte {
	var buf [RecordSize]byte
	copy(buf[offMagic:], recordMagic)
	binary.LittleEndian.PutUint32(buf[offVersion:], recordVersion)
	binary.LittleEndian.PutUint64(buf[offIndexMtime:], r.IndexMtime)
	copy(buf[offHeadOID:offHeadOID+oidLen], r.HeadOID[:])
	binary.LittleEndian.PutUint32(buf[offFiles:], r.FilesChanged)
	binary.LittleEndian.PutUint32(buf[offLinesAdded:], r.LinesAdded)
	binary.LittleEndian.PutUint32(buf[offLinesDelete:], r.LinesDeleted)
	binary.LittleEndian.PutUint32(buf[offAhead:], r.Ahead)
	binary.LittleEndian.PutUint32(buf[offBehind:], r.Behind)
	copy(buf[offUpstreamOID:offUpstreamOID+oidLen], r.UpstreamOID[:])
	return buf
}

// DecodeStatsRecord parses data, rejecting a wrong size, magic or version.
func DecodeStatsRecord(data []byte) (StatsRecord, bool) {
	if len(data) != RecordSize || string(data[offMagic:offMagic+4]) != recordMagic {
		return StatsRecord{}, false
	}
	if binary.LittleEndian.Uint32(data[offVersion:]) != recordVersion {
		return StatsRecord{}, false
	}
	var r StatsRecord
	r.IndexMtime = binary.LittleEndian.Uint64(data[offIndexMtime:])
	copy(r.HeadOID[:], data[offHeadOID:offHeadOID+oidLen])
	r.FilesChanged = binary.LittleEndian.Uint32(data[offFiles:])
	r.LinesAdded = binary.LittleEndian.Uint32(data[offLinesAdded:])
	r.LinesDeleted = binary.LittleEndian.Uint32(data[offLinesDelete:])
	r.Ahead = binary.LittleEndian.Uint32(data[offAhead:])
	r.Behind = binary.LittleEndian.Uint32(data[offBehind:])
	copy(r.UpstreamOID[:], data[offUpstreamOID:offUpstreamOID+oidLen])
	return r, true
}

// SetOID stores oid into a fixed oid buffer, truncating past 40 bytes and
// zero padding the rest.
func SetOID(dst *[oidLen]byte, oid string) {
	*dst = [oidLen]byte{}
	copy(dst[:], oid)
}

// HeadMatches reports whether the stored head oid agrees with live. A live
// oid may be abbreviated; it matches when its bytes are a prefix of the
// stored oid. An empty live oid only matches an empty stored oid.
func (r StatsRecord) HeadMatches(live string) bool {
	return oidMatches(r.HeadOID, live)
}

// UpstreamMatches is HeadMatches for the upstream oid.
func (r StatsRecord) UpstreamMatches(live string) bool {
	return oidMatches(r.UpstreamOID, live)
}

func oidMatches(stored [oidLen]byte, live string) bool {
	if len(live) > oidLen {
		return false
	}
	if live == "" {
		return stored == [oidLen]byte{}
	}
	return bytes.Equal(stored[:len(live)], []byte(live))
}
