package colref

import "testing"

func TestIndexAndName(t *testing.T) {
	cases := []struct {
		name string
		idx  uint
	}{
		{"A", 1}, {"Z", 26}, {"AA", 27}, {"AZ", 52},
		{"BA", 53}, {"ZZ", 702}, {"AAA", 703}, {"AAB", 704},
		{"ABC", 731}, {"ZZZ", 18278},
	}
	for _, c := range cases {
		if got := Index(c.name); got != c.idx {
			t.Errorf("Index(%q) = %d, want %d", c.name, got, c.idx)
		}
		if got := IndexToName(c.idx); got != c.name {
			t.Errorf("IndexToName(%d) = %q, want %q", c.idx, got, c.name)
		}
		if got := Name(c.name, 0); got != c.name {
			t.Errorf("Name(%q, 0) = %q, want %q", c.name, got, c.name)
		}
		if got := Index(Name(c.name, 1)); got != c.idx+1 {
			t.Errorf("Index(Name(%q, 1)) = %d, want %d", c.name, got, c.idx+1)
		}
	}
}

func TestNameIncrement(t *testing.T) {
	cases := []struct {
		base string
		inc  uint
		want string
	}{
		{"A", 0, "A"}, {"A", 1, "B"}, {"Z", 1, "AA"},
		{"AA", 1, "AB"}, {"AZ", 1, "BA"}, {"ZZ", 1, "AAA"},
	}
	for _, c := range cases {
		if got := Name(c.base, c.inc); got != c.want {
			t.Errorf("Name(%q, %d) = %q, want %q", c.base, c.inc, got, c.want)
		}
	}
}

func TestSplit(t *testing.T) {
	letters, row, ok := Split("AA10")
	if !ok || letters != "AA" || row != 10 {
		t.Fatalf("Split(AA10) = %q, %d, %v", letters, row, ok)
	}
	if _, _, ok := Split("10"); ok {
		t.Fatalf("Split(10) should fail, no letters")
	}
	if _, _, ok := Split("AA"); ok {
		t.Fatalf("Split(AA) should fail, no digits")
	}
}

func TestCoord(t *testing.T) {
	if got := Coord(3, 5); got != "C5" {
		t.Errorf("Coord(3,5) = %q, want C5", got)
	}
}
