package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const base = "https://portal.myschoolct.com"

func TestResolve(t *testing.T) {
	t.Parallel()

	r := New(base+"/", nil)

	tests := []struct {
		query    string
		wantURL  string
		wantRule Rule
	}{
		{"animals", base + "/views/academic/imagebank/animals?main=2&mu=0", RuleCategory},
		{"  Animals ", base + "/views/academic/imagebank/animals?main=2&mu=0", RuleCategory},
		{"age 8", base + "/views/academic/class/class-3", RuleAge},
		{"7 years old", base + "/views/academic/class/class-2", RuleAge},
		{"age 4 hindi", base + "/views/academic/class/lkg?main=0&mu=1", RuleAge},
		{"class 5 maths", base + "/views/academic/class/class-5?main=0&mu=4", RuleClass},
		{"Grade 3 science", base + "/views/academic/class/class-3?main=0&mu=3", RuleClass},
		{"standard 10", base + "/views/academic/class/class-10", RuleClass},
		{"lkg rhymes", base + "/views/academic/class/lkg", RuleKindergarten},
		{"UKG telugu", base + "/views/academic/class/ukg?main=0&mu=2", RuleKindergarten},
		{"class 11", base + "/views/result?text=class%2011", RuleSearch},
		{"age 40 puzzles", base + "/views/result?text=age%2040%20puzzles", RuleSearch},
		{"monkey pictures!", base + "/views/result?text=monkey%20pictures!", RuleSearch},
		{"a&b=c", base + "/views/result?text=a%26b%3Dc", RuleSearch},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			t.Parallel()
			got := r.Resolve(tt.query)
			assert.Equal(t, tt.wantURL, got.URL)
			assert.Equal(t, tt.wantRule, got.Rule)
		})
	}
}

func TestResolve_AgeBeatsClass(t *testing.T) {
	t.Parallel()

	got := New(base, nil).Resolve("age 6 class 4")
	assert.Equal(t, base+"/views/academic/class/class-1", got.URL)
	assert.Equal(t, RuleAge, got.Rule)
}

func TestFindSubjectMu(t *testing.T) {
	t.Parallel()

	r := New(base, nil)
	tests := []struct {
		query  string
		wantMu int
		wantOK bool
	}{
		{"english poems", 0, true},
		{"maths", 4, true},
		{"MATHEMATICS worksheet", 4, true},
		{"general knowledge quiz", 5, true},
		{"charts", 7, true}, // "art" is earlier in the table and matches inside "charts"
		{"dinosaurs", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			t.Parallel()
			mu, ok := r.FindSubjectMu(tt.query)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantMu, mu)
		})
	}
}

func TestParseClassSubject(t *testing.T) {
	t.Parallel()

	r := New(base, nil)
	assert.Equal(t, ClassSubject{Class: 5, HasClass: true, SubjectMU: 4, HasSubject: true}, r.ParseClassSubject("class 5 maths"))
	assert.Equal(t, ClassSubject{Class: 2, HasClass: true}, r.ParseClassSubject("Class2 poems"))
	assert.Equal(t, ClassSubject{}, r.ParseClassSubject("flowers"))
}

func TestParseAge(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"age 8", 8, true},
		{"age8", 8, true},
		{"year 5", 5, true},
		{"9 years old", 9, true},
		{"6 year", 6, true},
		{"for my 5 year old", 5, true},
		{"class 3", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()
			got, ok := ParseAge(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeQueryComponent(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "monkey%20pictures", EncodeQueryComponent("monkey pictures"))
	assert.Equal(t, "it's(ok)*", EncodeQueryComponent("it's(ok)*"))
	assert.Equal(t, "1%2B1", EncodeQueryComponent("1+1"))
	assert.Equal(t, "%E0%A4%B9%E0%A4%BF", EncodeQueryComponent("हि"))
}
