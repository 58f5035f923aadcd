package geo

import (
	"math"
	"math/rand"
	"testing"
)

func TestDistrict(t *testing.T) {
	if d := District("서울특별시 강남구 테헤란로 123"); d != "강남구" {
		t.Errorf("expected 강남구, got %q", d)
	}
	if d := District("somewhere with no district"); d != "" {
		t.Errorf("expected empty district, got %q", d)
	}
}

func TestDistrict_StableWhenAddressMentionsSeveral(t *testing.T) {
	// Free-text addresses can carry a second district name ("서초구 인근").
	// The match must not depend on map iteration order.
	addr := "서울 강남구 테헤란로 1 (서초구 인근)"
	want := District(addr)
	if want != "강남구" {
		t.Fatalf("expected lexicographically first match 강남구, got %q", want)
	}
	for i := 0; i < 50; i++ {
		if d := District(addr); d != want {
			t.Fatalf("iteration %d: got %q, want %q", i, d, want)
		}
	}
}

func TestLocate_KnownDistrict(t *testing.T) {
	p := Locate("서울특별시 서초구 서초대로 1", nil)
	want := districtCoords["서초구"]
	if p != want {
		t.Errorf("expected %v without jitter, got %v", want, p)
	}
}

func TestLocate_FallbackToCityCenter(t *testing.T) {
	p := Locate("", nil)
	if p != CityCenter {
		t.Errorf("expected city center fallback, got %v", p)
	}
}

func TestLocate_JitterBounded(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	base := districtCoords["마포구"]
	for i := 0; i < 100; i++ {
		p := Locate("서울 마포구 양화로 45", rng)
		if math.Abs(p.Lat-base.Lat) > MaxJitterDeg || math.Abs(p.Lng-base.Lng) > MaxJitterDeg {
			t.Fatalf("jitter out of bounds: %v vs %v", p, base)
		}
	}
}

func TestDistance_ZeroForSamePoint(t *testing.T) {
	p := Point{Lat: 37.5665, Lng: 126.9780}
	if d := Distance(p, p); d != 0 {
		t.Errorf("expected zero distance, got %f", d)
	}
}

func TestDistance_SeoulToBusan(t *testing.T) {
	seoul := Point{Lat: 37.5665, Lng: 126.9780}
	busan := Point{Lat: 35.1796, Lng: 129.0756}
	d := Distance(seoul, busan)
	// Straight-line distance is roughly 325 km.
	if d < 300 || d > 350 {
		t.Errorf("expected ~325km, got %f", d)
	}
}

func TestDistance_Symmetric(t *testing.T) {
	a := Point{Lat: 37.5172, Lng: 127.0473}
	b := Point{Lat: 37.4837, Lng: 127.0324}
	if math.Abs(Distance(a, b)-Distance(b, a)) > 1e-9 {
		t.Error("distance should be symmetric")
	}
}
