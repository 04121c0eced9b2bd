// Package lexicon holds the static vocabulary the assistant reasons with:
// synonym groups, known misspellings, portal image-bank categories,
// subject aliases and the age to class mapping.
//
// A Lexicon is immutable after construction and safe for concurrent use.
package lexicon

import (
	"slices"
	"sync"
)

// SynonymEntry is one canonical key and its related variants.
type SynonymEntry struct {
	Key      string
	Variants []string
}

// TypoEntry maps a known misspelling to its correction.
type TypoEntry struct {
	Typo    string
	Correct string
}

// CategoryEntry maps a category keyword to a portal path and menu unit.
type CategoryEntry struct {
	Key      string
	Path     string
	MenuUnit int
}

// SubjectEntry maps a subject alias to the class page's menu unit.
type SubjectEntry struct {
	Alias    string
	MenuUnit int
}

// AgeEntry maps a child's age to a class label such as "lkg" or "class-3".
type AgeEntry struct {
	Age        int
	ClassLabel string
}

// Tables is the raw input to New.
type Tables struct {
	Synonyms   []SynonymEntry
	Typos      []TypoEntry
	Categories []CategoryEntry
	Subjects   []SubjectEntry
	Ages       []AgeEntry
}

// Lexicon is an indexed, read-only view over Tables.
type Lexicon struct {
	t Tables

	synonymIdx  map[string]int
	variantKeys map[string][]string // variant -> keys listing it, table order
	typoIdx     map[string]string
	categoryIdx map[string]int
	ageIdx      map[int]string
}

// New indexes tables. The slices are copied; later changes by the caller
// do not affect the Lexicon. Duplicate keys keep their first occurrence.
func New(t Tables) *Lexicon {
	l := &Lexicon{
		t: Tables{
			Synonyms:   cloneSynonyms(t.Synonyms),
			Typos:      slices.Clone(t.Typos),
			Categories: slices.Clone(t.Categories),
			Subjects:   slices.Clone(t.Subjects),
			Ages:       slices.Clone(t.Ages),
		},
		synonymIdx:  make(map[string]int, len(t.Synonyms)),
		variantKeys: make(map[string][]string),
		typoIdx:     make(map[string]string, len(t.Typos)),
		categoryIdx: make(map[string]int, len(t.Categories)),
		ageIdx:      make(map[int]string, len(t.Ages)),
	}

	for i, e := range l.t.Synonyms {
		if _, dup := l.synonymIdx[e.Key]; !dup {
			l.synonymIdx[e.Key] = i
		}
		for _, v := range e.Variants {
			if !slices.Contains(l.variantKeys[v], e.Key) {
				l.variantKeys[v] = append(l.variantKeys[v], e.Key)
			}
		}
	}
	for _, e := range l.t.Typos {
		if _, dup := l.typoIdx[e.Typo]; !dup {
			l.typoIdx[e.Typo] = e.Correct
		}
	}
	for i, e := range l.t.Categories {
		if _, dup := l.categoryIdx[e.Key]; !dup {
			l.categoryIdx[e.Key] = i
		}
	}
	for _, e := range l.t.Ages {
		if _, dup := l.ageIdx[e.Age]; !dup {
			l.ageIdx[e.Age] = e.ClassLabel
		}
	}
	return l
}

var defaultOnce = sync.OnceValue(func() *Lexicon {
	return New(Tables{
		Synonyms:   defaultSynonyms,
		Typos:      defaultTypos,
		Categories: defaultCategories,
		Subjects:   defaultSubjects,
		Ages:       defaultAges,
	})
})

// Default returns the shared lexicon built from the product tables.
func Default() *Lexicon {
	return defaultOnce()
}

// Synonyms returns the variants listed for key.
func (l *Lexicon) Synonyms(key string) ([]string, bool) {
	i, ok := l.synonymIdx[key]
	if !ok {
		return nil, false
	}
	return slices.Clone(l.t.Synonyms[i].Variants), true
}

// IsSynonymKey reports whether key heads a synonym group.
func (l *Lexicon) IsSynonymKey(key string) bool {
	_, ok := l.synonymIdx[key]
	return ok
}

// KeysForVariant returns every key whose group lists variant, in table order.
func (l *Lexicon) KeysForVariant(variant string) []string {
	return slices.Clone(l.variantKeys[variant])
}

// IsKnownWord reports whether word appears anywhere in the synonym table.
func (l *Lexicon) IsKnownWord(word string) bool {
	if l.IsSynonymKey(word) {
		return true
	}
	_, ok := l.variantKeys[word]
	return ok
}

// Correction returns the fix for a known misspelling.
func (l *Lexicon) Correction(typo string) (string, bool) {
	c, ok := l.typoIdx[typo]
	return c, ok
}

// Category returns the category entry for an exact keyword.
func (l *Lexicon) Category(key string) (CategoryEntry, bool) {
	i, ok := l.categoryIdx[key]
	if !ok {
		return CategoryEntry{}, false
	}
	return l.t.Categories[i], true
}

// ClassForAge returns the class label for a child's age.
func (l *Lexicon) ClassForAge(age int) (string, bool) {
	c, ok := l.ageIdx[age]
	return c, ok
}

// SynonymEntries returns the synonym table in order.
func (l *Lexicon) SynonymEntries() []SynonymEntry {
	return cloneSynonyms(l.t.Synonyms)
}

// TypoEntries returns the misspelling table in order.
func (l *Lexicon) TypoEntries() []TypoEntry {
	return slices.Clone(l.t.Typos)
}

// SubjectAliases returns the subject table in order.
func (l *Lexicon) SubjectAliases() []SubjectEntry {
	return slices.Clone(l.t.Subjects)
}

func cloneSynonyms(in []SynonymEntry) []SynonymEntry {
	out := make([]SynonymEntry, len(in))
	for i, e := range in {
		out[i] = SynonymEntry{Key: e.Key, Variants: slices.Clone(e.Variants)}
	}
	return out
}
