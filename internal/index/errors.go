package index

import "errors"

var (
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
	ErrInvalidLimit      = errors.New("result limit must be positive")
	ErrQdrantUnreachable = errors.New("qdrant server unreachable")
)
