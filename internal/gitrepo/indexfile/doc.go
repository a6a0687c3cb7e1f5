// Package indexfile reads and patches the flag words of a Git index file
// without re-encoding it.
//
// The index is a DIRC file: a 12 byte header (signature, version, entry
// count), the entries, optional extensions, and a trailing checksum of
// everything before it. Each entry carries a 16 bit flag word laid out as
// assume-valid (bit 15), extended (bit 14), stage (bits 12-13), and name
// length (bits 0-11). Versions 3 and 4 may follow the flag word with a second
// 16 bit word of extended flags; version 4 prefix-compresses entry names.
//
// File keeps the original bytes and records where each flag word lives, so
// toggling a flag changes exactly two bytes of entry data plus the checksum.
package indexfile
