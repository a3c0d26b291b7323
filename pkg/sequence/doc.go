// Package sequence expands a pair of archive scan identifiers into the
// contiguous run of identifiers between them.
//
// Identifiers are an opaque prefix followed by a zero-padded decimal
// ordinal, e.g. KLAC01462 + 000001. The prefix is the longest common
// leading substring of both endpoints; the ordinal width is taken from
// the end value:
//
//	ids, err := sequence.Expand("KLAC00161000001", "KLAC00161000003")
//	// [KLAC00161000001 KLAC00161000002 KLAC00161000003]
//
//	ids, err = sequence.Expand("A1", "A12")
//	// [A01 A02 ... A12]
package sequence
