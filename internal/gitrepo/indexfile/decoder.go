package indexfile

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	signatureConstant                     = "DIRC"
	headerLengthConstant                  = 12
	minimumSupportedVersionConstant       = 2
	maximumSupportedVersionConstant       = 4
	extendedFlagsMinimumVersionConstant   = 3
	prefixCompressedVersionConstant       = 4
	statFieldsLengthConstant              = 40
	flagWordLengthConstant                = 2
	extendedFlagWordLengthConstant        = 2
	nameLengthMaskConstant                = 0x0fff
	stageMaskConstant                     = 0x3000
	stageShiftConstant                    = 12
	extendedFlagMaskConstant              = 0x4000
	entryAlignmentConstant                = 8
	malformedSignatureMessageConstant     = "malformed index signature"
	unsupportedVersionMessageConstant     = "unsupported index version"
	truncatedIndexMessageConstant         = "truncated index"
	checksumMismatchMessageConstant       = "index checksum mismatch"
	malformedEntryMessageConstant         = "malformed index entry"
	unsupportedHashSizeMessageConstant    = "unsupported index hash size"
	versionErrorTemplateConstant          = "%w: %d"
	entryErrorTemplateConstant            = "%w: entry %d: %s"
	legacyExtendedFlagReasonConstant      = "extended flag set in a version 2 index"
	prefixStripExceedsNameReasonConstant  = "prefix strip length exceeds previous name"
	unterminatedEntryNameReasonConstant   = "entry name is not NUL terminated"
	entryExceedsIndexBodyReasonConstant   = "entry extends past the index body"
	malformedVarintReasonConstant         = "malformed prefix strip length"
	hashSizeErrorTemplateConstant         = "%w: %d"
	shortIndexErrorTemplateConstant       = "%w: %d bytes"
	headerEntryCountErrorTemplateConstant = "%w: header declares %d entries"
)

// Hash sizes of the object formats Git supports.
const (
	SHA1HashSize   = 20
	SHA256HashSize = 32
)

var (
	// ErrMalformedSignature indicates the content does not start with DIRC.
	ErrMalformedSignature = errors.New(malformedSignatureMessageConstant)
	// ErrUnsupportedVersion indicates an index version other than 2, 3, or 4.
	ErrUnsupportedVersion = errors.New(unsupportedVersionMessageConstant)
	// ErrTruncatedIndex indicates the content ends before the declared data.
	ErrTruncatedIndex = errors.New(truncatedIndexMessageConstant)
	// ErrChecksumMismatch indicates the trailing checksum does not match the content.
	ErrChecksumMismatch = errors.New(checksumMismatchMessageConstant)
	// ErrMalformedEntry indicates an entry that violates the index format.
	ErrMalformedEntry = errors.New(malformedEntryMessageConstant)
	// ErrUnsupportedHashSize indicates a hash size other than SHA-1 or SHA-256.
	ErrUnsupportedHashSize = errors.New(unsupportedHashSizeMessageConstant)
)

// Decode parses index content produced for an object format with the given hash size.
func Decode(content []byte, hashSize int) (*File, error) {
	if hashSize != SHA1HashSize && hashSize != SHA256HashSize {
		return nil, fmt.Errorf(hashSizeErrorTemplateConstant, ErrUnsupportedHashSize, hashSize)
	}

	if len(content) < headerLengthConstant+hashSize {
		return nil, fmt.Errorf(shortIndexErrorTemplateConstant, ErrTruncatedIndex, len(content))
	}

	if !bytes.Equal(content[:len(signatureConstant)], []byte(signatureConstant)) {
		return nil, ErrMalformedSignature
	}

	version := binary.BigEndian.Uint32(content[4:8])
	if version < minimumSupportedVersionConstant || version > maximumSupportedVersionConstant {
		return nil, fmt.Errorf(versionErrorTemplateConstant, ErrUnsupportedVersion, version)
	}

	bodyLength := len(content) - hashSize
	trailer := content[bodyLength:]
	if !isZeroChecksum(trailer) {
		expectedChecksum := computeChecksum(content[:bodyLength], hashSize)
		if !bytes.Equal(expectedChecksum, trailer) {
			return nil, ErrChecksumMismatch
		}
	}

	entryCount := binary.BigEndian.Uint32(content[8:12])
	if uint64(entryCount)*uint64(statFieldsLengthConstant+hashSize+flagWordLengthConstant) > uint64(bodyLength) {
		return nil, fmt.Errorf(headerEntryCountErrorTemplateConstant, ErrTruncatedIndex, entryCount)
	}

	duplicatedContent := make([]byte, len(content))
	copy(duplicatedContent, content)

	decodedFile := &File{
		Version:       version,
		Entries:       make([]Entry, 0, entryCount),
		content:       duplicatedContent,
		hashSize:      hashSize,
		entryPosition: make(map[entryKey]int, entryCount),
	}

	entryDecoder := entryDecoder{
		content:    duplicatedContent,
		bodyLength: bodyLength,
		hashSize:   hashSize,
		version:    version,
		offset:     headerLengthConstant,
	}

	for entryIndex := 0; entryIndex < int(entryCount); entryIndex++ {
		decodedEntry, decodeError := entryDecoder.next(entryIndex)
		if decodeError != nil {
			return nil, decodeError
		}
		decodedFile.Entries = append(decodedFile.Entries, decodedEntry)
		decodedFile.entryPosition[entryKey{path: decodedEntry.Path, stage: decodedEntry.Stage}] = entryIndex
	}

	return decodedFile, nil
}

type entryDecoder struct {
	content      []byte
	bodyLength   int
	hashSize     int
	version      uint32
	offset       int
	previousName string
}

func (decoder *entryDecoder) next(entryIndex int) (Entry, error) {
	entryStart := decoder.offset
	flagsOffset := entryStart + statFieldsLengthConstant + decoder.hashSize
	cursor := flagsOffset + flagWordLengthConstant
	if cursor > decoder.bodyLength {
		return Entry{}, decoder.entryError(entryIndex, entryExceedsIndexBodyReasonConstant)
	}

	flags := binary.BigEndian.Uint16(decoder.content[flagsOffset:cursor])

	var extendedFlags uint16
	if flags&extendedFlagMaskConstant != 0 {
		if decoder.version < extendedFlagsMinimumVersionConstant {
			return Entry{}, decoder.entryError(entryIndex, legacyExtendedFlagReasonConstant)
		}
		if cursor+extendedFlagWordLengthConstant > decoder.bodyLength {
			return Entry{}, decoder.entryError(entryIndex, entryExceedsIndexBodyReasonConstant)
		}
		extendedFlags = binary.BigEndian.Uint16(decoder.content[cursor : cursor+extendedFlagWordLengthConstant])
		cursor += extendedFlagWordLengthConstant
	}

	var entryName string
	if decoder.version == prefixCompressedVersionConstant {
		stripLength, consumedBytes, varintError := readPrefixStripLength(decoder.content[cursor:decoder.bodyLength])
		if varintError != nil {
			return Entry{}, decoder.entryError(entryIndex, malformedVarintReasonConstant)
		}
		cursor += consumedBytes
		if stripLength > len(decoder.previousName) {
			return Entry{}, decoder.entryError(entryIndex, prefixStripExceedsNameReasonConstant)
		}
		terminatorIndex := bytes.IndexByte(decoder.content[cursor:decoder.bodyLength], 0)
		if terminatorIndex < 0 {
			return Entry{}, decoder.entryError(entryIndex, unterminatedEntryNameReasonConstant)
		}
		entryName = decoder.previousName[:len(decoder.previousName)-stripLength] + string(decoder.content[cursor:cursor+terminatorIndex])
		decoder.offset = cursor + terminatorIndex + 1
	} else {
		nameLength := int(flags & nameLengthMaskConstant)
		if nameLength == nameLengthMaskConstant {
			terminatorIndex := bytes.IndexByte(decoder.content[cursor:decoder.bodyLength], 0)
			if terminatorIndex < 0 {
				return Entry{}, decoder.entryError(entryIndex, unterminatedEntryNameReasonConstant)
			}
			nameLength = terminatorIndex
		}
		if cursor+nameLength > decoder.bodyLength {
			return Entry{}, decoder.entryError(entryIndex, entryExceedsIndexBodyReasonConstant)
		}
		entryName = string(decoder.content[cursor : cursor+nameLength])

		// Entries are NUL padded to a multiple of eight bytes, always at least one NUL.
		paddedLength := (cursor - entryStart + nameLength + entryAlignmentConstant) &^ (entryAlignmentConstant - 1)
		decoder.offset = entryStart + paddedLength
		if decoder.offset > decoder.bodyLength {
			return Entry{}, decoder.entryError(entryIndex, entryExceedsIndexBodyReasonConstant)
		}
	}

	decoder.previousName = entryName

	return Entry{
		Path:          entryName,
		Stage:         int(flags&stageMaskConstant) >> stageShiftConstant,
		Flags:         flags,
		ExtendedFlags: extendedFlags,
		statOffset:    entryStart,
		flagsOffset:   flagsOffset,
	}, nil
}

func (decoder *entryDecoder) entryError(entryIndex int, reason string) error {
	return fmt.Errorf(entryErrorTemplateConstant, ErrMalformedEntry, entryIndex, reason)
}

// readPrefixStripLength decodes the offset-style variable length integer used by version 4 entries.
func readPrefixStripLength(data []byte) (int, int, error) {
	if len(data) == 0 {
		return 0, 0, ErrTruncatedIndex
	}

	consumedBytes := 1
	currentByte := data[0]
	value := uint64(currentByte & 0x7f)
	for currentByte&0x80 != 0 {
		if consumedBytes >= len(data) || consumedBytes > 9 {
			return 0, 0, ErrTruncatedIndex
		}
		currentByte = data[consumedBytes]
		consumedBytes++
		value = ((value + 1) << 7) | uint64(currentByte&0x7f)
	}

	return int(value), consumedBytes, nil
}
