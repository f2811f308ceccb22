package generator

import (
	"path/filepath"

	"github.com/google/uuid"
)

// Generator is an interface that defines a method to generate a new value of type T.
// This can be used to generate unique identifiers, lazily iterate, etc.
type Generator[T any] interface {
	Next() (T, error)
}

// UUIDV4Generator is a generator that produces UUIDv4 strings.
// It implements the Generator interface.
type UUIDV4Generator struct{}

func (g *UUIDV4Generator) Next() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

var _ Generator[string] = &UUIDV4Generator{}

// StorageKeyGenerator produces blob storage keys of the form
// <prefix>/<uuid><ext>. Ext is carried over per key, so the generator
// wraps an inner Generator and a method rather than Next alone.
type StorageKeyGenerator struct {
	Prefix string
	IDs    Generator[string]
}

// KeyFor returns a fresh storage key preserving the extension of the
// given filename.
func (g *StorageKeyGenerator) KeyFor(filename string) (string, error) {
	ids := g.IDs
	if ids == nil {
		ids = &UUIDV4Generator{}
	}
	id, err := ids.Next()
	if err != nil {
		return "", err
	}
	key := id + filepath.Ext(filename)
	if g.Prefix != "" {
		key = g.Prefix + "/" + key
	}
	return key, nil
}
