package types

import "testing"

func TestVector3_DistanceSquared(t *testing.T) {
	a := Vector3{X: 0, Y: 0, Z: 0}
	b := Vector3{X: 3, Y: 4, Z: 0}

	if got := a.DistanceSquared(b); got != 25 {
		t.Errorf("DistanceSquared() = %v, want 25", got)
	}
}

func TestVector2_DistanceSquared(t *testing.T) {
	a := Vector2{X: 0, Y: 0}
	b := Vector2{X: 300, Y: 0}

	if got := a.DistanceSquared(b); got != 90000 {
		t.Errorf("DistanceSquared() = %v, want 90000", got)
	}
}

func TestVector3_To2D(t *testing.T) {
	v := Vector3{X: 1, Y: 2, Z: 3}
	got := v.To2D()
	want := Vector2{X: 1, Y: 2}
	if got != want {
		t.Errorf("To2D() = %v, want %v", got, want)
	}
}

func TestGTAColour_RoundTrip(t *testing.T) {
	c := RGBA(10, 20, 30, 255)
	r, g, b, a := c.Components()
	if r != 10 || g != 20 || b != 30 || a != 255 {
		t.Errorf("Components() = (%d,%d,%d,%d), want (10,20,30,255)", r, g, b, a)
	}
}
