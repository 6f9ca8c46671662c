// Package catalog reads the character catalog seed file.
package catalog

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"charmemo/internal/memo/domain/entities"
)

// Catalog read error messages.
const (
	ErrOpenCatalog   = "failed to open catalog file"
	ErrDecodeCatalog = "failed to decode catalog"
)

// Catalog validation errors.
var (
	ErrEmptyCatalog     = errors.New("catalog has no characters")
	ErrDuplicateID      = errors.New("duplicate character id")
	ErrInvalidIDSyntax  = fmt.Errorf("character id must not contain %q", entities.SortKeySeparator)
	ErrInvalidCharacter = errors.New("invalid character")
)

// File is the seed file layout.
type File struct {
	Characters []entities.Character `yaml:"characters"`
}

// Decode reads and validates a YAML catalog.
func Decode(r io.Reader) ([]entities.Character, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f File
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyCatalog
		}
		return nil, fmt.Errorf("%s: %w", ErrDecodeCatalog, err)
	}

	if err := Validate(f.Characters); err != nil {
		return nil, err
	}
	return f.Characters, nil
}

// LoadFile reads the catalog at path.
func LoadFile(path string) ([]entities.Character, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the operator
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrOpenCatalog, err)
	}
	defer f.Close()

	return Decode(f)
}

// Validate checks every entry and rejects duplicate ids.
func Validate(chars []entities.Character) error {
	if len(chars) == 0 {
		return ErrEmptyCatalog
	}

	seen := make(map[string]struct{}, len(chars))
	for i := range chars {
		c := &chars[i]
		if err := c.Validate(); err != nil {
			return fmt.Errorf("%w %d: %w", ErrInvalidCharacter, i, err)
		}
		if !entities.ValidKeyPart(c.ID) {
			return fmt.Errorf("%w: %s", ErrInvalidIDSyntax, c.ID)
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicateID, c.ID)
		}
		seen[c.ID] = struct{}{}
	}
	return nil
}
