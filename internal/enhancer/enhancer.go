// Package enhancer turns a raw user query into search candidates:
// typo correction, synonym expansion and phonetic codes.
package enhancer

import (
	"errors"
	"strings"

	apperrors "github.com/myschoolct/portal-assistant/internal/errors"
	"github.com/myschoolct/portal-assistant/internal/lexicon"
	"github.com/myschoolct/portal-assistant/internal/logger"
	"github.com/myschoolct/portal-assistant/internal/sliceutil"
	"github.com/myschoolct/portal-assistant/internal/textmatch"
)

// Similarity thresholds. Correction is stricter than expansion.
const (
	TypoThreshold       = 0.9
	SynonymKeyThreshold = 0.85
	ExpansionThreshold  = 0.8
)

// EnhancedQuery is the per-request output of Enhance.
type EnhancedQuery struct {
	Original  string
	Corrected string
	// Expanded lists candidate search terms in priority order without
	// duplicates. Expanded[0] is the whole corrected query.
	Expanded      []string
	PhoneticCodes []textmatch.Code
}

// Enhancer is safe for concurrent use.
type Enhancer struct {
	lex      *lexicon.Lexicon
	synonyms []lexicon.SynonymEntry
	typos    []lexicon.TypoEntry
	log      *logger.Logger
}

// New creates an Enhancer over lex. A nil logger discards output.
func New(lex *lexicon.Lexicon, log *logger.Logger) *Enhancer {
	if log == nil {
		log = logger.Discard()
	}
	return &Enhancer{
		lex:      lex,
		synonyms: lex.SynonymEntries(),
		typos:    lex.TypoEntries(),
		log:      log.WithModule("enhancer"),
	}
}

// tokenize lowercases and splits on any run of whitespace.
func tokenize(s string) []string {
	return strings.Fields(textmatch.Normalize(s))
}

// AutoCorrect fixes each whitespace-separated token and rejoins them with
// single spaces. Per token, the first rule that applies wins:
//
//  1. exact entry in the typo table
//  2. already a known word (synonym key or variant): kept as is
//  3. fuzzy match against typo keys at TypoThreshold
//  4. fuzzy match against synonym keys at SynonymKeyThreshold
//
// Rule 2 keeps valid words such as "pictures" from being pulled to a
// neighbouring key ("picture"), so AutoCorrect(AutoCorrect(q)) == AutoCorrect(q).
func (e *Enhancer) AutoCorrect(query string) string {
	tokens := tokenize(query)
	for i, tok := range tokens {
		tokens[i] = e.correctToken(tok)
	}
	return strings.Join(tokens, " ")
}

func (e *Enhancer) correctToken(tok string) string {
	if fixed, ok := e.lex.Correction(tok); ok {
		return fixed
	}
	if e.lex.IsKnownWord(tok) {
		return tok
	}
	for _, t := range e.typos {
		if textmatch.IsFuzzyMatch(tok, t.Typo, TypoThreshold) {
			return t.Correct
		}
	}
	for _, s := range e.synonyms {
		if textmatch.IsFuzzyMatch(tok, s.Key, SynonymKeyThreshold) {
			return s.Key
		}
	}
	return tok
}

// ExpandWithSynonyms builds the ordered candidate list for a corrected query.
// The whole query comes first; then, per token: the token, its variants if it
// is a key, the key and siblings of every group listing it as a variant, and
// every key (with variants) it fuzzy-matches at ExpansionThreshold.
// An empty query yields no candidates.
func (e *Enhancer) ExpandWithSynonyms(corrected string) []string {
	tokens := tokenize(corrected)
	if len(tokens) == 0 {
		return nil
	}

	out := []string{strings.Join(tokens, " ")}
	for _, tok := range tokens {
		out = append(out, tok)

		if variants, ok := e.lex.Synonyms(tok); ok {
			out = append(out, variants...)
		}
		for _, key := range e.lex.KeysForVariant(tok) {
			out = append(out, key)
			siblings, _ := e.lex.Synonyms(key)
			out = append(out, siblings...)
		}
		for _, s := range e.synonyms {
			if textmatch.IsFuzzyMatch(tok, s.Key, ExpansionThreshold) {
				out = append(out, s.Key)
				out = append(out, s.Variants...)
			}
		}
	}
	return sliceutil.Unique(out)
}

// Enhance runs AutoCorrect, ExpandWithSynonyms and phonetic coding.
// Candidates that cannot be coded (digits, non-Latin script) are skipped.
// A multi-word candidate is coded by its first word.
func (e *Enhancer) Enhance(query string) EnhancedQuery {
	corrected := e.AutoCorrect(query)
	expanded := e.ExpandWithSynonyms(corrected)

	codes := make([]textmatch.Code, 0, len(expanded))
	for _, cand := range expanded {
		word, _, _ := strings.Cut(cand, " ")
		code, err := textmatch.PhoneticCode(word)
		if err != nil {
			if errors.Is(err, apperrors.ErrInvalidInput) {
				e.log.WithField("candidate", cand).Debug("Skipping phonetic code")
				continue
			}
			e.log.WithError(err).Warn("Unexpected phonetic coding error")
			continue
		}
		codes = append(codes, code)
	}

	return EnhancedQuery{
		Original:      query,
		Corrected:     corrected,
		Expanded:      expanded,
		PhoneticCodes: sliceutil.Unique(codes),
	}
}
