// Package i18n resolves and orders localized character names.
package i18n

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"charmemo/internal/memo/domain/entities"
)

// ParseLocale parses a BCP 47 tag. An empty string is language.Und, which
// resolves every name to its default.
func ParseLocale(s string) (language.Tag, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return language.Und, nil
	}
	tag, err := language.Parse(s)
	if err != nil {
		return language.Und, fmt.Errorf("invalid locale %q: %w", s, err)
	}
	return tag, nil
}

// ResolveName returns the localized name of c for tag: the exact tag first,
// then any entry with the same base language, else the default name.
func ResolveName(c entities.Character, tag language.Tag) string {
	if len(c.Names) == 0 || tag == language.Und {
		return c.Name
	}

	if name, ok := c.Names[tag.String()]; ok && name != "" {
		return name
	}

	base, conf := tag.Base()
	if conf == language.No {
		return c.Name
	}
	if name, ok := c.Names[base.String()]; ok && name != "" {
		return name
	}

	keys := make([]string, 0, len(c.Names))
	for k := range c.Names {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		candidate, err := language.Parse(k)
		if err != nil {
			continue
		}
		if b, _ := candidate.Base(); b == base && c.Names[k] != "" {
			return c.Names[k]
		}
	}
	return c.Name
}

// Localize returns copies of chars whose Name is resolved for tag.
func Localize(chars []entities.Character, tag language.Tag) []entities.Character {
	out := make([]entities.Character, len(chars))
	for i, c := range chars {
		out[i] = c
		out[i].Name = ResolveName(c, tag)
	}
	return out
}

// SortByName orders chars in place by resolved name using the collation
// rules of tag, ties broken by id.
func SortByName(chars []entities.Character, tag language.Tag) {
	col := collate.New(tag, collate.IgnoreCase)
	names := make(map[string]string, len(chars))
	for _, c := range chars {
		names[c.ID] = ResolveName(c, tag)
	}
	sort.SliceStable(chars, func(i, j int) bool {
		if cmp := col.CompareString(names[chars[i].ID], names[chars[j].ID]); cmp != 0 {
			return cmp < 0
		}
		return chars[i].ID < chars[j].ID
	})
}
