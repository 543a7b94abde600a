// Package id provides unique identifier generation utilities.
//
// This is the canonical source for ID generation across the fakerest
// codebase. It produces ULIDs: Universally Unique Lexicographically
// Sortable Identifiers for time-ordered IDs that are collision-free
// and sortable.
//
// ID generation uses crypto/rand for secure randomness.
//
// The implementation follows the ULID specification, producing
// 26-character identifiers that encode a timestamp and random
// component, enabling natural chronological sorting while maintaining
// uniqueness.
package id
