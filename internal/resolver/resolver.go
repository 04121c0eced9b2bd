// Package resolver maps a free-text query to the most specific portal page:
// a category landing page, a class page (optionally scoped to a subject),
// or the portal's full-text result view.
package resolver

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/myschoolct/portal-assistant/internal/lexicon"
)

// Rule names which resolution rule produced a URL.
type Rule string

const (
	RuleCategory     Rule = "category"
	RuleAge          Rule = "age"
	RuleClass        Rule = "class"
	RuleKindergarten Rule = "kindergarten"
	RuleSearch       Rule = "search"
)

const (
	classPathPrefix = "/views/academic/class/"
	searchPath      = "/views/result"
	minClass        = 1
	maxClass        = 10
)

var (
	classPattern    = regexp.MustCompile(`(?i)(?:class|grade|standard)\s*(\d+)`)
	agePattern      = regexp.MustCompile(`(?i)(?:age|year|years?\s*old)\s*(\d+)`)
	ageAfterPattern = regexp.MustCompile(`(?i)(\d+)\s*(?:year|years?\s*old)`)
	kinderPattern   = regexp.MustCompile(`(?i)\b(nursery|lkg|ukg)\b`)
)

// Resolution is the outcome of Resolve.
type Resolution struct {
	URL  string
	Rule Rule
}

// ClassSubject is what ParseClassSubject finds in a query.
type ClassSubject struct {
	Class      int
	HasClass   bool
	SubjectMU  int
	HasSubject bool
}

// Resolver builds deep links under a portal base URL.
type Resolver struct {
	baseURL string
	lex     *lexicon.Lexicon
}

// New creates a resolver. A trailing slash on baseURL is dropped.
func New(baseURL string, lex *lexicon.Lexicon) *Resolver {
	if lex == nil {
		lex = lexicon.Default()
	}
	return &Resolver{baseURL: strings.TrimRight(baseURL, "/"), lex: lex}
}

// Resolve applies the rules in priority order; the first match wins:
// exact category, age, class number 1-10, kindergarten label, full-text search.
func (r *Resolver) Resolve(query string) Resolution {
	lower := strings.ToLower(strings.TrimSpace(query))

	if cat, ok := r.lex.Category(lower); ok {
		return Resolution{
			URL:  r.baseURL + cat.Path + "?main=2&mu=" + strconv.Itoa(cat.MenuUnit),
			Rule: RuleCategory,
		}
	}

	cs := r.ParseClassSubject(query)

	if age, ok := ParseAge(lower); ok {
		if label, ok := r.lex.ClassForAge(age); ok {
			return Resolution{URL: r.classURL(label, cs), Rule: RuleAge}
		}
	}

	if cs.HasClass && cs.Class >= minClass && cs.Class <= maxClass {
		return Resolution{URL: r.classURL("class-"+strconv.Itoa(cs.Class), cs), Rule: RuleClass}
	}

	if m := kinderPattern.FindStringSubmatch(lower); m != nil {
		return Resolution{URL: r.classURL(strings.ToLower(m[1]), cs), Rule: RuleKindergarten}
	}

	return Resolution{
		URL:  r.baseURL + searchPath + "?text=" + EncodeQueryComponent(query),
		Rule: RuleSearch,
	}
}

func (r *Resolver) classURL(label string, cs ClassSubject) string {
	u := r.baseURL + classPathPrefix + label
	if cs.HasSubject {
		u += "?main=0&mu=" + strconv.Itoa(cs.SubjectMU)
	}
	return u
}

// FindSubjectMu returns the menu unit of the first subject alias, in table
// order, that occurs anywhere in query. Matching is by substring, so "it"
// also matches inside longer words.
func (r *Resolver) FindSubjectMu(query string) (int, bool) {
	lower := strings.ToLower(query)
	for _, s := range r.lex.SubjectAliases() {
		if strings.Contains(lower, s.Alias) {
			return s.MenuUnit, true
		}
	}
	return 0, false
}

// ParseClassSubject extracts a "class/grade/standard N" number and a subject.
func (r *Resolver) ParseClassSubject(query string) ClassSubject {
	var cs ClassSubject
	cs.Class, cs.HasClass = firstNumber(classPattern, strings.ToLower(query))
	cs.SubjectMU, cs.HasSubject = r.FindSubjectMu(query)
	return cs
}

// ParseAge extracts an age from phrases like "age 8", "year 5" or
// "7 years old". The number-first form is tried only when the other fails.
func ParseAge(query string) (int, bool) {
	if n, ok := firstNumber(agePattern, query); ok {
		return n, true
	}
	return firstNumber(ageAfterPattern, query)
}

func firstNumber(re *regexp.Regexp, s string) (int, bool) {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// componentUnescaper restores the characters browsers leave literal in a
// URI component but url.QueryEscape escapes.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// EncodeQueryComponent percent-encodes s for use as a query value, with
// spaces as %20.
func EncodeQueryComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}
