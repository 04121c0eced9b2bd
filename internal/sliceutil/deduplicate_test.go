package sliceutil

import (
	"slices"
	"testing"
)

type result struct {
	Path  string
	Title string
}

func TestDeduplicate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		items []result
		want  []result
	}{
		{
			name:  "no duplicates",
			items: []result{{"/a", "A"}, {"/b", "B"}},
			want:  []result{{"/a", "A"}, {"/b", "B"}},
		},
		{
			name:  "first occurrence wins",
			items: []result{{"/a", "A"}, {"/b", "B"}, {"/a", "A2"}, {"/c", "C"}},
			want:  []result{{"/a", "A"}, {"/b", "B"}, {"/c", "C"}},
		},
		{
			name:  "empty",
			items: []result{},
			want:  []result{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Deduplicate(tt.items, func(r result) string { return r.Path })
			if !slices.Equal(got, tt.want) {
				t.Errorf("Deduplicate() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUnique(t *testing.T) {
	t.Parallel()

	got := Unique([]string{"dog", "dogs", "dog", "puppy", "dogs"})
	want := []string{"dog", "dogs", "puppy"}
	if !slices.Equal(got, want) {
		t.Errorf("Unique() = %v, want %v", got, want)
	}
	if Unique[string](nil) != nil {
		t.Error("Unique(nil) should return nil")
	}
}
