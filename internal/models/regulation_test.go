package models

import "testing"

func TestIsSearchableNodeType(t *testing.T) {
	searchable := []string{NodePasal, NodeAyat, NodePembukaan, NodeIsi, NodePenjelasanUmum, NodePenjelasanPasal}
	for _, nt := range searchable {
		if !IsSearchableNodeType(nt) {
			t.Errorf("%s should be searchable", nt)
		}
	}
	for _, nt := range []string{NodeBab, NodeBagian, NodeParagraf, "", "unknown"} {
		if IsSearchableNodeType(nt) {
			t.Errorf("%s should not be searchable", nt)
		}
	}
}

func TestNodeLabel(t *testing.T) {
	cases := []struct {
		nodeType string
		number   string
		want     string
	}{
		{NodePasal, "13", "Pasal 13"},
		{NodeAyat, "2", "Ayat (2)"},
		{NodeBab, "IV", "Bab IV"},
		{NodePembukaan, "", "Pembukaan"},
		{NodePenjelasanUmum, "", "Penjelasan Umum"},
		{NodePenjelasanPasal, "5", "Penjelasan Pasal 5"},
		{"custom", "1", "custom 1"},
	}
	for _, c := range cases {
		if got := NodeLabel(c.nodeType, c.number); got != c.want {
			t.Errorf("NodeLabel(%s, %s) = %q, want %q", c.nodeType, c.number, got, c.want)
		}
	}
}
