package sliceutil

import (
	"strconv"
	"testing"
)

type testCell struct {
	Key  string
	Text string
}

func TestDeduplicate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		items   []testCell
		keyFunc func(testCell) string
		want    []testCell
	}{
		{
			name: "No duplicates",
			items: []testCell{
				{Key: "a", Text: "软件工程"},
				{Key: "b", Text: "高等数学"},
			},
			keyFunc: func(c testCell) string { return c.Key },
			want: []testCell{
				{Key: "a", Text: "软件工程"},
				{Key: "b", Text: "高等数学"},
			},
		},
		{
			name: "With duplicates - preserve first",
			items: []testCell{
				{Key: "a", Text: "软件工程"},
				{Key: "b", Text: "高等数学"},
				{Key: "a", Text: "软件工程 (variant)"},
			},
			keyFunc: func(c testCell) string { return c.Key },
			want: []testCell{
				{Key: "a", Text: "软件工程"},
				{Key: "b", Text: "高等数学"},
			},
		},
		{
			name:    "Empty slice",
			items:   []testCell{},
			keyFunc: func(c testCell) string { return c.Key },
			want:    []testCell{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := Deduplicate(tt.items, tt.keyFunc)
			if len(got) != len(tt.want) {
				t.Fatalf("Deduplicate() returned %d items, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("item %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDeduplicateIntKeys(t *testing.T) {
	t.Parallel()

	items := []int{1, 2, 2, 3, 1, 4}
	got := Deduplicate(items, func(n int) string { return strconv.Itoa(n % 3) })

	// Keys are n mod 3: 1, 2, 2, 0, 1, 1 so the survivors are 1, 2, 3.
	want := []int{1, 2, 3}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("got %v, want %v", got, want)
		}
	}
}
