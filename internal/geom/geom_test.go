package geom

import (
	"errors"
	"math"
	"testing"

	"github.com/paulmach/orb"
)

const tol = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) <= tol }

func TestEggShapedEllipse_Bound(t *testing.T) {
	e, err := EggShapedEllipse(2, 0.5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b := e.Bound()
	w := b.Max[0] - b.Min[0]
	h := b.Max[1] - b.Min[1]
	if !near(w, 2) || !near(h, 4) {
		t.Fatalf("expected 2x4 bound, got %.4fx%.4f", w, h)
	}
	if c := b.Center(); !near(c[0], 0) || !near(c[1], 0) {
		t.Fatalf("expected bound centred at origin, got %v", c)
	}
	// The polygon outline has the same extremes.
	rb := e.Ring().Bound()
	if !near(rb.Max[0]-rb.Min[0], 2) || !near(rb.Max[1]-rb.Min[1], 4) {
		t.Fatalf("ring bound mismatch: %v", rb)
	}
}

func TestEggShapedEllipse_RejectsNonPositive(t *testing.T) {
	cases := [][2]float64{{0, 1}, {-1, 1}, {1, 0}, {1, -2}, {math.NaN(), 1}, {1, math.Inf(1)}}
	for _, c := range cases {
		if _, err := EggShapedEllipse(c[0], c[1]); !errors.Is(err, ErrInvalidGeometryParameter) {
			t.Errorf("radius=%v ratio=%v: expected ErrInvalidGeometryParameter, got %v", c[0], c[1], err)
		}
	}
}

func TestEllipse_Contains(t *testing.T) {
	e, _ := EggShapedEllipse(2, 0.5)
	if !e.Contains(orb.Point{0, 1.9}) {
		t.Fatal("point on the long axis should be inside")
	}
	if e.Contains(orb.Point{1.1, 0}) {
		t.Fatal("point beyond the short axis should be outside")
	}
}

func TestBuild_Order(t *testing.T) {
	// Rotation acts first, then zoom, then the anchor translation.
	tr := Build(100, 50, 2, math.Pi/2)
	got := tr.Apply(orb.Point{1, 0})
	// rotate(-π/2): (1,0) -> (0,-1); scale 2 -> (0,-2); translate -> (100,48)
	if !near(got[0], 100) || !near(got[1], 48) {
		t.Fatalf("expected (100,48), got %v", got)
	}
}

func TestBuild_ZeroZoomIsDegenerate(t *testing.T) {
	for _, z := range []float64{0, -1} {
		tr := Build(10, 10, z, 0.3)
		if err := tr.Validate(); !errors.Is(err, ErrInvalidGeometryParameter) {
			t.Fatalf("zoom=%v: expected degenerate transform, got %v", z, err)
		}
		if _, err := tr.Inverse(); err == nil {
			t.Fatalf("zoom=%v: inverse should fail", z)
		}
		e, _ := Circle(1)
		if _, err := tr.ApplyShape(e); err == nil {
			t.Fatalf("zoom=%v: applying a degenerate transform should fail", z)
		}
	}
}

func TestTransform_RoundTrip(t *testing.T) {
	e, _ := EggShapedEllipse(3, 0.7)
	sec, _ := CircleSector(5, -0.4, 0.8)
	for _, s := range []Shape{e, sec} {
		for _, zoom := range []float64{0.25, 1, 3.5} {
			for _, heading := range []float64{0, 0.7, math.Pi, -2.1} {
				tr := Build(12, -4, zoom, heading)
				placed, err := tr.ApplyShape(s)
				if err != nil {
					t.Fatalf("apply: %v", err)
				}
				inv, err := tr.Inverse()
				if err != nil {
					t.Fatalf("inverse: %v", err)
				}
				back, err := inv.ApplyShape(placed)
				if err != nil {
					t.Fatalf("apply inverse: %v", err)
				}
				want, got := s.Ring(), back.Ring()
				if len(want) != len(got) {
					t.Fatalf("ring length changed: %d vs %d", len(want), len(got))
				}
				for i := range want {
					if math.Abs(want[i][0]-got[i][0]) > 1e-7 || math.Abs(want[i][1]-got[i][1]) > 1e-7 {
						t.Fatalf("zoom=%v heading=%v vertex %d: %v != %v", zoom, heading, i, got[i], want[i])
					}
				}
				if math.Abs(back.Area()-s.Area()) > 1e-7 {
					t.Fatalf("area drifted: %v != %v", back.Area(), s.Area())
				}
			}
		}
	}
}

func TestApplyShape_DoesNotMutateInput(t *testing.T) {
	e, _ := EggShapedEllipse(1, 2)
	before := e.Bound()
	if _, err := Build(50, 50, 4, 1).ApplyShape(e); err != nil {
		t.Fatal(err)
	}
	if e.Bound() != before {
		t.Fatal("input shape was mutated")
	}
}

func TestTransformed_ContainsAndArea(t *testing.T) {
	e, _ := EggShapedEllipse(2, 0.5) // 1 wide-radius, 2 tall-radius
	placed, _ := Build(10, 10, 2, math.Pi/2).ApplyShape(e)
	// Rotated by -π/2 the long axis lies along x, scaled by 2: extent ±4 in x.
	if !placed.Contains(orb.Point{13.9, 10}) {
		t.Fatal("expected point on rotated long axis to be inside")
	}
	if placed.Contains(orb.Point{10, 13}) {
		t.Fatal("expected point beyond rotated short axis to be outside")
	}
	if !near(placed.Area(), e.Area()*4) {
		t.Fatalf("expected area scaled by zoom², got %v", placed.Area())
	}
}

func TestSector_Contains(t *testing.T) {
	s, _ := CircleSector(10, -math.Pi/4, math.Pi/2)
	if !s.Contains(orb.Point{5, 0}) {
		t.Fatal("point straight ahead should be inside")
	}
	if s.Contains(orb.Point{-5, 0}) {
		t.Fatal("point behind should be outside")
	}
	if s.Contains(orb.Point{11, 0}) {
		t.Fatal("point beyond radius should be outside")
	}
	// Screen convention: angle +π/8 points up, i.e. negative y.
	if !s.Contains(orb.Point{5, -2}) || !s.Contains(orb.Point{5, 2}) {
		t.Fatal("points within the half-aperture should be inside")
	}
}

func TestSector_EmptyAndArea(t *testing.T) {
	empty, err := CircleSector(0, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	if empty.Area() != 0 || empty.Contains(orb.Point{0, 0}) {
		t.Fatal("zero-radius sector must be empty")
	}
	full, _ := CircleSector(2, 0, 2*math.Pi)
	if !near(full.Area(), 4*math.Pi) {
		t.Fatalf("full sector area should equal circle area, got %v", full.Area())
	}
	if _, err := CircleSector(1, 0, 7); !errors.Is(err, ErrInvalidGeometryParameter) {
		t.Fatalf("expected sweep > 2π to be rejected, got %v", err)
	}
}

func TestArc_Path(t *testing.T) {
	p := NewArc(3, 0, math.Pi/2).Path()
	if len(p) < 2 {
		t.Fatalf("expected polyline, got %d points", len(p))
	}
	if !near(p[0][0], 3) || !near(p[0][1], 0) {
		t.Fatalf("arc should start at (3,0), got %v", p[0])
	}
	last := p[len(p)-1]
	if !near(last[0], 0) || !near(last[1], -3) {
		t.Fatalf("arc should end at (0,-3), got %v", last)
	}
}
