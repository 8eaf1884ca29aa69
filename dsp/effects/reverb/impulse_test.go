package reverb

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-fx/internal/testutil"
)

func TestTypeImpulseLengthsFollowTable(t *testing.T) {
	const sr = 44100

	lengths := map[Type]int{}
	for _, typ := range Types {
		ir, err := NewTypeImpulse(typ, sr, 1)
		if err != nil {
			t.Fatalf("NewTypeImpulse(%v) error = %v", typ, err)
		}
		if len(ir.Channels) != 2 {
			t.Fatalf("%v: channels = %d, want 2", typ, len(ir.Channels))
		}
		lengths[typ] = ir.Len()
	}

	if lengths[TypeHall] != 3*lengths[TypeRoom] {
		t.Fatalf("hall/room = %d/%d, want ratio 3", lengths[TypeHall], lengths[TypeRoom])
	}
	if lengths[TypeDefault] != sr || lengths[TypePlate] != 2*sr {
		t.Fatalf("default=%d plate=%d", lengths[TypeDefault], lengths[TypePlate])
	}
	if TypeHall.Duration()/TypeRoom.Duration() != 3 {
		t.Fatal("duration table ratio mismatch")
	}
}

func TestTypeImpulseIsDeterministic(t *testing.T) {
	a, err := NewTypeImpulse(TypeRoom, 8000, 42)
	if err != nil {
		t.Fatal(err)
	}
	b, err := NewTypeImpulse(TypeRoom, 8000, 42)
	if err != nil {
		t.Fatal(err)
	}
	c, err := NewTypeImpulse(TypeRoom, 8000, 43)
	if err != nil {
		t.Fatal(err)
	}

	testutil.RequireSliceNearlyEqual(t, a.Channels[1], b.Channels[1], 0)

	diff, err := testutil.MaxAbsDiff(a.Channels[0], c.Channels[0])
	if err != nil {
		t.Fatal(err)
	}
	if diff == 0 {
		t.Fatal("different seeds produced identical impulses")
	}

	d, err := testutil.MaxAbsDiff(a.Channels[0], a.Channels[1])
	if err != nil {
		t.Fatal(err)
	}
	if d == 0 {
		t.Fatal("left and right channels should be decorrelated")
	}
}

func TestTypeImpulseEnvelopeBound(t *testing.T) {
	for _, typ := range Types {
		ir, err := NewTypeImpulse(typ, 8000, 7)
		if err != nil {
			t.Fatal(err)
		}

		n := float64(ir.Len())
		limit := 1.0
		if typ == TypePlate {
			limit = 1 + plateShimmer
		}

		for _, ch := range ir.Channels {
			for i, v := range ch {
				env := math.Pow(1-float64(i)/n, typ.Decay())
				if math.Abs(v) > env*limit+1e-12 {
					t.Fatalf("%v sample %d = %v exceeds envelope %v", typ, i, v, env*limit)
				}
			}
		}
	}
}

func TestParseType(t *testing.T) {
	for _, typ := range Types {
		got, err := ParseType(typ.String())
		if err != nil || got != typ {
			t.Fatalf("ParseType(%q) = %v, %v", typ.String(), got, err)
		}
	}

	if _, err := ParseType("cathedral"); err == nil {
		t.Fatal("expected error for unknown type")
	}
}

func TestTypeImpulseValidation(t *testing.T) {
	if _, err := NewTypeImpulse(Type(9), 44100, 1); err == nil {
		t.Fatal("expected error for unknown type")
	}
	if _, err := NewTypeImpulse(TypeHall, 0, 1); err == nil {
		t.Fatal("expected error for zero sample rate")
	}
}

func TestLibraryMemoizes(t *testing.T) {
	lib := NewLibrary(3)

	a, err := lib.Impulse(TypeHall, 8000)
	if err != nil {
		t.Fatal(err)
	}
	b, err := lib.Impulse(TypeHall, 8000)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Fatal("expected the same impulse instance")
	}

	c, err := lib.Impulse(TypeHall, 16000)
	if err != nil {
		t.Fatal(err)
	}
	if c == a || c.Len() != 2*a.Len() {
		t.Fatalf("sample rate must key the cache: len %d vs %d", c.Len(), a.Len())
	}
}
