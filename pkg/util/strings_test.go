package util

import "testing"

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"1,234", 1234, true},
		{" 98.5 ", 98.5, true},
		{"3,000円", 3000, true},
		{"", 0, false},
		{"---", 0, false},
	}
	for _, c := range cases {
		got, ok := ParseNumber(c.in)
		if ok != c.ok || got != c.want {
			t.Fatalf("ParseNumber(%q) = %v, %v; want %v, %v", c.in, got, ok, c.want, c.ok)
		}
	}
}

func TestParseInt64DefaultFractional(t *testing.T) {
	if got := ParseInt64Default("1200.0", 0); got != 1200 {
		t.Fatalf("unexpected %d", got)
	}
	if got := ParseInt64Default("abc", 7); got != 7 {
		t.Fatalf("unexpected %d", got)
	}
}
