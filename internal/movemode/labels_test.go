package movemode

import "testing"

func TestLabelLength(t *testing.T) {
	tests := []struct {
		alphabet, count, want int
	}{
		{10, 1, 1},
		{10, 10, 1},
		{10, 11, 2},
		{10, 100, 2},
		{10, 101, 3},
		{2, 5, 3},
		{2, 8, 3},
		{1, 1, 1},
		{1, 2, 0},
		{10, 0, 0},
	}
	for _, tt := range tests {
		if got := LabelLength(tt.alphabet, tt.count); got != tt.want {
			t.Errorf("LabelLength(%d, %d) = %d, want %d", tt.alphabet, tt.count, got, tt.want)
		}
	}
}

func TestGenerateLabelsUsesBaseDigits(t *testing.T) {
	got := GenerateLabels("ab", 3)
	want := []string{"aa", "ab", "ba"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestGenerateLabelsUniqueAndEqualLength(t *testing.T) {
	alphabet := "asdfg;lkjh"
	for count := 1; count <= 250; count++ {
		labels := GenerateLabels(alphabet, count)
		if len(labels) != count {
			t.Fatalf("count %d: got %d labels", count, len(labels))
		}
		k := LabelLength(len(alphabet), count)
		seen := make(map[string]bool, count)
		for _, l := range labels {
			if len(l) != k {
				t.Fatalf("count %d: label %q has length %d, want %d", count, l, len(l), k)
			}
			if seen[l] {
				t.Fatalf("count %d: duplicate label %q", count, l)
			}
			seen[l] = true
		}
	}
}

func TestGenerateLabelsRejectsUnusableAlphabet(t *testing.T) {
	if GenerateLabels("a", 3) != nil {
		t.Fatalf("expected nil for a one-character alphabet")
	}
	if GenerateLabels("", 1) != nil {
		t.Fatalf("expected nil for an empty alphabet")
	}
}

func TestUniqueRunes(t *testing.T) {
	if got := uniqueRunes("aabsa;"); got != "abs;" {
		t.Fatalf("expected abs;, got %q", got)
	}
}
