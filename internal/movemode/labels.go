package movemode

import "strings"

// LabelLength returns the smallest k such that alphabet^k covers count
// targets. It returns 0 when no length can.
func LabelLength(alphabet, count int) int {
	if count <= 0 {
		return 0
	}
	if alphabet < 2 {
		if alphabet == 1 && count == 1 {
			return 1
		}
		return 0
	}
	k, capacity := 1, alphabet
	for capacity < count {
		k++
		capacity *= alphabet
	}
	return k
}

// GenerateLabels returns count unique labels of equal length drawn from
// alphabet. Label n is n written in base len(alphabet), most significant
// digit first. It returns nil when the alphabet cannot cover count.
func GenerateLabels(alphabet string, count int) []string {
	digits := []rune(alphabet)
	k := LabelLength(len(digits), count)
	if k == 0 {
		return nil
	}
	base := len(digits)
	labels := make([]string, count)
	buf := make([]rune, k)
	for n := 0; n < count; n++ {
		v := n
		for i := k - 1; i >= 0; i-- {
			buf[i] = digits[v%base]
			v /= base
		}
		labels[n] = string(buf)
	}
	return labels
}

func hasLabelPrefix(labels []Label, prefix string) bool {
	for _, l := range labels {
		if strings.HasPrefix(l.Text, prefix) {
			return true
		}
	}
	return false
}

// uniqueRunes drops repeated characters so every label stays unique.
func uniqueRunes(s string) string {
	var b strings.Builder
	seen := make(map[rune]bool, len(s))
	for _, r := range s {
		if seen[r] {
			continue
		}
		seen[r] = true
		b.WriteRune(r)
	}
	return b.String()
}
