package utils

import "testing"

func TestFold(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Pérez", "perez"},
		{"GONZÁLEZ", "gonzalez"},
		{"maría josé", "maria jose"},
		{"Ñandú", "nandu"},
		{"plain ascii", "plain ascii"},
		{"", ""},
	}

	for _, c := range cases {
		if got := Fold(c.in); got != c.want {
			t.Errorf("Fold(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}
