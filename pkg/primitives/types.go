package primitives

// HashCode represents a hash value computed over fields or tuples.
// It is used for fingerprints and result digests, never for ordering.
type HashCode uint64

