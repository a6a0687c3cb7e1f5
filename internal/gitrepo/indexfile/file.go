package indexfile

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"
	"time"
)

const (
	// layoutFlagMaskConstant covers the extended, stage, and name length bits of the flag word.
	layoutFlagMaskConstant            = 0x7fff
	protectedFlagBitsMessageConstant  = "flag mask overlaps index layout bits"
	entryRangeMessageConstant         = "index entry out of range"
	protectedFlagBitsTemplateConstant = "%w: %#04x"
	entryRangeTemplateConstant        = "%w: %d"
	modifiedSecondsOffsetConstant     = 8
	modifiedNanosecondsOffsetConstant = 12
	fileSizeOffsetConstant            = 36
	statFieldLengthConstant           = 4
)

var (
	// ErrProtectedFlagBits indicates an attempt to modify bits that describe the entry layout.
	ErrProtectedFlagBits = errors.New(protectedFlagBitsMessageConstant)
	// ErrEntryIndexOutOfRange indicates an entry position outside the decoded entries.
	ErrEntryIndexOutOfRange = errors.New(entryRangeMessageConstant)
)

// Entry is the flag view of a single index entry.
type Entry struct {
	Path          string
	Stage         int
	Flags         uint16
	ExtendedFlags uint16
	statOffset    int
	flagsOffset   int
}

// HasFlags reports whether every bit of mask is set in the entry flag word.
func (entry Entry) HasFlags(mask uint16) bool {
	return entry.Flags&mask == mask
}

type entryKey struct {
	path  string
	stage int
}

// File is a decoded index that can patch entry flag words in place.
type File struct {
	Version       uint32
	Entries       []Entry
	content       []byte
	hashSize      int
	entryPosition map[entryKey]int
	modified      bool
}

// Lookup returns the position of the entry for path at the given merge stage.
func (indexFile *File) Lookup(path string, stage int) (int, bool) {
	position, exists := indexFile.entryPosition[entryKey{path: path, stage: stage}]
	return position, exists
}

// SetFlags sets or clears the bits of mask in the flag word of the entry at position.
// Bits outside mask keep their value.
func (indexFile *File) SetFlags(position int, mask uint16, enabled bool) error {
	if mask&layoutFlagMaskConstant != 0 {
		return fmt.Errorf(protectedFlagBitsTemplateConstant, ErrProtectedFlagBits, mask)
	}

	if position < 0 || position >= len(indexFile.Entries) {
		return fmt.Errorf(entryRangeTemplateConstant, ErrEntryIndexOutOfRange, position)
	}

	entry := &indexFile.Entries[position]
	updatedFlags := entry.Flags &^ mask
	if enabled {
		updatedFlags |= mask
	}

	if updatedFlags == entry.Flags {
		return nil
	}

	entry.Flags = updatedFlags
	binary.BigEndian.PutUint16(indexFile.content[entry.flagsOffset:entry.flagsOffset+flagWordLengthConstant], updatedFlags)
	indexFile.modified = true

	return nil
}

// Modified reports whether any flag word changed since decoding.
func (indexFile *File) Modified() bool {
	return indexFile.modified
}

// SmudgeRacilyClean zeroes the recorded file size of every entry whose modification time is not
// earlier than indexModificationTime, so the next status check compares content instead of
// trusting stat data captured in the same instant as the previous index write. It returns the
// number of entries smudged.
func (indexFile *File) SmudgeRacilyClean(indexModificationTime time.Time) int {
	indexSeconds := uint32(indexModificationTime.Unix())
	indexNanoseconds := uint32(indexModificationTime.Nanosecond())

	smudgedEntries := 0
	for _, entry := range indexFile.Entries {
		entrySeconds := indexFile.statField(entry, modifiedSecondsOffsetConstant)
		entryNanoseconds := indexFile.statField(entry, modifiedNanosecondsOffsetConstant)

		racy := entrySeconds > indexSeconds ||
			(entrySeconds == indexSeconds && (indexNanoseconds == 0 || entryNanoseconds >= indexNanoseconds))
		if !racy || indexFile.statField(entry, fileSizeOffsetConstant) == 0 {
			continue
		}

		sizeOffset := entry.statOffset + fileSizeOffsetConstant
		binary.BigEndian.PutUint32(indexFile.content[sizeOffset:sizeOffset+statFieldLengthConstant], 0)
		smudgedEntries++
	}

	return smudgedEntries
}

func (indexFile *File) statField(entry Entry, fieldOffset int) uint32 {
	offset := entry.statOffset + fieldOffset
	return binary.BigEndian.Uint32(indexFile.content[offset : offset+statFieldLengthConstant])
}

// Encode returns the index content with a recomputed trailing checksum.
// Indexes written with a zeroed checksum (index.skipHash) keep it zeroed.
func (indexFile *File) Encode() []byte {
	encodedContent := make([]byte, len(indexFile.content))
	copy(encodedContent, indexFile.content)

	bodyLength := len(encodedContent) - indexFile.hashSize
	if isZeroChecksum(encodedContent[bodyLength:]) {
		return encodedContent
	}

	copy(encodedContent[bodyLength:], computeChecksum(encodedContent[:bodyLength], indexFile.hashSize))
	return encodedContent
}

func computeChecksum(body []byte, hashSize int) []byte {
	if hashSize == SHA256HashSize {
		checksum := sha256.Sum256(body)
		return checksum[:]
	}
	checksum := sha1.Sum(body)
	return checksum[:]
}

func isZeroChecksum(trailer []byte) bool {
	for _, trailerByte := range trailer {
		if trailerByte != 0 {
			return false
		}
	}
	return true
}
