package core

import (
	"testing"
)

func TestParsePath_RoundTrip(t *testing.T) {
	cases := []struct {
		in    string
		steps int
	}{
		{"f1", 1},
		{"parent.child", 2},
		{"a.b.c", 3},
		{"", 0},
	}

	for _, tc := range cases {
		p := ParsePath(tc.in)
		if p.Len() != tc.steps {
			t.Errorf("ParsePath(%q).Len() = %d, want %d", tc.in, p.Len(), tc.steps)
		}
		if p.String() != tc.in {
			t.Errorf("ParsePath(%q).String() = %q", tc.in, p.String())
		}
	}
}

func TestPath_Compare(t *testing.T) {
	cases := []struct {
		a, b string
		want int
	}{
		{"a", "a", 0},
		{"a", "b", -1},
		{"b", "a", 1},
		{"a", "a.b", -1}, // prefix sorts first
		{"a.b", "a", 1},
		{"a.b", "a.c", -1},
	}

	for _, tc := range cases {
		got := ParsePath(tc.a).Compare(ParsePath(tc.b))
		if got != tc.want {
			t.Errorf("Compare(%q, %q) = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestPath_Immutability(t *testing.T) {
	steps := []string{"a", "b"}
	p := NewPath(steps...)
	steps[0] = "mutated"

	if p.String() != "a.b" {
		t.Errorf("path mutated through constructor slice: %q", p.String())
	}

	got := p.Steps()
	got[0] = "mutated"
	if p.String() != "a.b" {
		t.Errorf("path mutated through Steps(): %q", p.String())
	}
}

func TestSortPaths(t *testing.T) {
	paths := []Path{ParsePath("b"), ParsePath("a.c"), ParsePath("a"), ParsePath("a.b")}
	SortPaths(paths)

	want := []string{"a", "a.b", "a.c", "b"}
	for i, w := range want {
		if paths[i].String() != w {
			t.Fatalf("sorted[%d] = %q, want %q", i, paths[i].String(), w)
		}
	}
}

func TestPath_Child(t *testing.T) {
	p := ParsePath("parent")
	c := p.Child("child")
	if c.String() != "parent.child" {
		t.Errorf("Child() = %q", c.String())
	}
	if p.String() != "parent" {
		t.Errorf("Child() mutated receiver: %q", p.String())
	}
}
