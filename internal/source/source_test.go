package source

import "testing"

func TestSliceRemapping(t *testing.T) {
	in := Named("big.aster", "0123456789")
	slice := in.Slice(3, 7)
	if slice.Text() != "3456" {
		t.Fatalf("slice text: got %q", slice.Text())
	}
	if got := slice.Abs(0); got != 3 {
		t.Errorf("Abs(0): got %d, want 3", got)
	}
	if got := slice.Abs(2); got != 5 {
		t.Errorf("Abs(2): got %d, want 5", got)
	}
	nested := slice.Slice(1, 3)
	if got := nested.Abs(0); got != 4 {
		t.Errorf("nested Abs(0): got %d, want 4", got)
	}
}

func TestSliceClamping(t *testing.T) {
	in := FromString("abc")
	s := in.Slice(-1, 99)
	if s.Text() != "abc" {
		t.Errorf("clamped slice: got %q", s.Text())
	}
	empty := in.Slice(2, 1)
	if empty.Text() != "" {
		t.Errorf("inverted slice: got %q", empty.Text())
	}
}

func TestSpanUnionAndContains(t *testing.T) {
	a := Span{Start: Position{Line: 1, Column: 1, Offset: 0}, End: Position{Line: 1, Column: 5, Offset: 4}}
	b := Span{Start: Position{Line: 1, Column: 3, Offset: 2}, End: Position{Line: 1, Column: 9, Offset: 8}}
	u := a.Union(b)
	if u.Start.Offset != 0 || u.End.Offset != 8 {
		t.Errorf("union: got [%d,%d)", u.Start.Offset, u.End.Offset)
	}
	if !a.Contains(Position{Line: 1, Column: 3, Offset: 2}) {
		t.Error("span should contain interior position")
	}
	if a.Contains(Position{Line: 1, Column: 5, Offset: 4}) {
		t.Error("end is exclusive")
	}
}
