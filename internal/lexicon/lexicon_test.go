package lexicon

import (
	"slices"
	"testing"
)

func TestDefault_Lookups(t *testing.T) {
	t.Parallel()

	lex := Default()
	if lex != Default() {
		t.Fatal("Default() should return the shared instance")
	}

	if v, ok := lex.Synonyms("dog"); !ok || !slices.Equal(v, []string{"dogs", "puppy", "puppies", "canine"}) {
		t.Errorf("Synonyms(dog) = %v, %v", v, ok)
	}
	if !lex.IsSynonymKey("interview") || lex.IsSynonymKey("puppy") {
		t.Error("IsSynonymKey mismatch")
	}
	if got := lex.KeysForVariant("reading"); !slices.Equal(got, []string{"book", "read"}) {
		t.Errorf("KeysForVariant(reading) = %v, want [book read]", got)
	}
	if !lex.IsKnownWord("pictures") || !lex.IsKnownWord("picture") || lex.IsKnownWord("monky") {
		t.Error("IsKnownWord mismatch")
	}
	if c, ok := lex.Correction("monky"); !ok || c != "monkey" {
		t.Errorf("Correction(monky) = %q, %v", c, ok)
	}
	if cat, ok := lex.Category("animals"); !ok || cat.Path != "/views/academic/imagebank/animals" || cat.MenuUnit != 0 {
		t.Errorf("Category(animals) = %+v, %v", cat, ok)
	}
	if cat, ok := lex.Category("comics"); !ok || cat.MenuUnit != 8 {
		t.Errorf("Category(comics) = %+v, %v", cat, ok)
	}
	if _, ok := lex.Category("comic"); ok {
		t.Error("Category(comic) should not match, only exact keys are listed")
	}
}

func TestDefault_AgeTable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		age  int
		want string
	}{
		{2, ""},
		{3, "nursery"},
		{4, "lkg"},
		{5, "ukg"},
		{6, "class-1"},
		{8, "class-3"},
		{15, "class-10"},
		{16, ""},
	}
	for _, tt := range tests {
		ok := tt.want != ""
		got, gotOK := Default().ClassForAge(tt.age)
		if got != tt.want || gotOK != ok {
			t.Errorf("ClassForAge(%d) = %q, %v; want %q, %v", tt.age, got, gotOK, tt.want, ok)
		}
	}
}

func TestDefault_SubjectOrder(t *testing.T) {
	t.Parallel()

	subjects := Default().SubjectAliases()
	if len(subjects) == 0 || subjects[0].Alias != "english" {
		t.Fatalf("subject table should start with english, got %+v", subjects)
	}
	idx := func(alias string) int {
		return slices.IndexFunc(subjects, func(s SubjectEntry) bool { return s.Alias == alias })
	}
	// "maths" must precede "math" and "computer" must precede "it" so that
	// substring detection resolves these aliases consistently.
	if idx("maths") > idx("math") {
		t.Error("maths must come before math")
	}
	if idx("computer") > idx("it") {
		t.Error("computer must come before it")
	}
}

func TestNew_Isolation(t *testing.T) {
	t.Parallel()

	syn := []SynonymEntry{{Key: "car", Variants: []string{"cars"}}}
	lex := New(Tables{Synonyms: syn})
	syn[0].Variants[0] = "mutated"

	if v, _ := lex.Synonyms("car"); v[0] != "cars" {
		t.Errorf("lexicon affected by caller mutation: %v", v)
	}

	entries := lex.SynonymEntries()
	entries[0].Key = "bus"
	if !lex.IsSynonymKey("car") || lex.IsSynonymKey("bus") {
		t.Error("SynonymEntries must return a copy")
	}
}

func TestNew_DuplicatesKeepFirst(t *testing.T) {
	t.Parallel()

	lex := New(Tables{
		Typos: []TypoEntry{{"teh", "the"}, {"teh", "ten"}},
		Categories: []CategoryEntry{
			{"maps", "/first", 1},
			{"maps", "/second", 2},
		},
	})
	if c, _ := lex.Correction("teh"); c != "the" {
		t.Errorf("Correction(teh) = %q, want the", c)
	}
	if cat, _ := lex.Category("maps"); cat.Path != "/first" {
		t.Errorf("Category(maps) = %+v, want /first", cat)
	}
}
