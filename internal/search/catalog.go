package search

import (
	"sort"
	"strings"
	"unicode"

	"github.com/mnakhyar/pasal/internal/models"
)

// codeVariants maps accepted alternate spellings to the canonical code.
// PERPPU (the official abbreviation since 2011) and PERPU both circulate.
var codeVariants = map[string]string{
	"PERPPU": "PERPU",
	"PERPU":  "PERPPU",
}

type nameEntry struct {
	name string // normalized local name
	rt   *models.RegulationType
}

// typeCatalog is the immutable in-memory RegulationType table, keyed by
// upper-cased code and by normalized local name. Built once at engine
// construction; the identity resolver does O(1)/O(types) lookups against it.
type typeCatalog struct {
	byID   map[string]*models.RegulationType
	byCode map[string]*models.RegulationType
	byName []nameEntry // sorted by name length descending for longest-prefix wins
}

func newTypeCatalog(types []*models.RegulationType) *typeCatalog {
	c := &typeCatalog{
		byID:   make(map[string]*models.RegulationType, len(types)),
		byCode: make(map[string]*models.RegulationType, len(types)),
	}
	for _, rt := range types {
		c.byID[rt.ID] = rt
		c.byCode[strings.ToUpper(rt.Code)] = rt
		if name := normalizeTypeName(rt.NameLocal); name != "" {
			c.byName = append(c.byName, nameEntry{name: name, rt: rt})
		}
	}
	sort.Slice(c.byName, func(i, j int) bool {
		return len(c.byName[i].name) > len(c.byName[j].name)
	})
	return c
}

func (c *typeCatalog) size() int {
	return len(c.byID)
}

// matchCode matches an upper-cased token (or two joined tokens) against the
// catalog codes, with one spelling-variant fallback.
func (c *typeCatalog) matchCode(token string) *models.RegulationType {
	if rt, ok := c.byCode[token]; ok {
		return rt
	}
	if variant, ok := codeVariants[token]; ok {
		if rt, ok := c.byCode[variant]; ok {
			return rt
		}
	}
	return nil
}

// matchNamePrefix matches the normalized query against each type's
// normalized local name, preferring the longest matching prefix.
func (c *typeCatalog) matchNamePrefix(normalizedQuery string) *models.RegulationType {
	for _, e := range c.byName {
		if strings.HasPrefix(normalizedQuery, e.name) {
			return e.rt
		}
	}
	return nil
}

// normalizeTypeName lower-cases and strips punctuation, collapsing
// whitespace, so "Undang-Undang" and "undang undang" compare equal.
func normalizeTypeName(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		} else {
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
