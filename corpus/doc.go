// Package corpus implements the binary index file codec.
//
// An index file is a single gzip stream wrapping a length-prefixed layout.
// All integers are unsigned 32-bit little-endian:
//
//	[headerLen][header JSON][entryCount][totalSize][entry]*entryCount
//
// Each entry consists of five length-prefixed fields in order: id, text,
// source label, reference and embedding. The embedding field packs float32
// values little-endian with no delimiters, so its byte length is always a
// multiple of four.
//
// The format carries no checksum. The only integrity check available is
// strict offset accounting: decoding reads exactly entryCount records and
// fails on any declared length that exceeds the remaining buffer, and on any
// trailing bytes after the last record.
package corpus
