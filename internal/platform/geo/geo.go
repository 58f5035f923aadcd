// Package geo resolves display coordinates for clinic addresses and computes
// great-circle distances. Address geocoding proper is an external provider;
// this is the static district lookup the listing endpoint runs on.
package geo

import (
	"math"
	"math/rand"
	"sort"
	"strings"
)

// Point is a WGS84 coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// CityCenter is the fallback coordinate for addresses no district matches
// (Seoul city hall).
var CityCenter = Point{Lat: 37.5665, Lng: 126.9780}

// MaxJitterDeg bounds the random offset applied to derived coordinates so
// co-located clinics do not overlap on a map.
const MaxJitterDeg = 0.005

// districtCoords maps district-name substrings found in free-text addresses
// to a representative coordinate.
var districtCoords = map[string]Point{
	"강남구":  {37.5172, 127.0473},
	"서초구":  {37.4837, 127.0324},
	"송파구":  {37.5145, 127.1060},
	"강동구":  {37.5301, 127.1238},
	"마포구":  {37.5663, 126.9014},
	"용산구":  {37.5326, 126.9905},
	"종로구":  {37.5735, 126.9790},
	"중구":   {37.5641, 126.9979},
	"영등포구": {37.5264, 126.8962},
	"관악구":  {37.4784, 126.9516},
	"동작구":  {37.5124, 126.9393},
	"성동구":  {37.5634, 127.0369},
	"광진구":  {37.5385, 127.0823},
	"노원구":  {37.6542, 127.0568},
	"강서구":  {37.5509, 126.8495},
	"구로구":  {37.4954, 126.8874},
	"분당구":  {37.3828, 127.1189},
	"수원시":  {37.2636, 127.0286},
	"고양시":  {37.6584, 126.8320},
	"성남시":  {37.4200, 127.1267},
	"인천":   {37.4563, 126.7052},
}

// districtNames holds the lookup keys in sorted order so District returns
// the same match regardless of map iteration order.
var districtNames = sortedDistrictNames()

func sortedDistrictNames() []string {
	names := make([]string, 0, len(districtCoords))
	for name := range districtCoords {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// District extracts the matched district name from an address, or "" when no
// known district substring is present. When an address mentions several known
// districts the lexicographically first one wins.
func District(address string) string {
	for _, name := range districtNames {
		if strings.Contains(address, name) {
			return name
		}
	}
	return ""
}

// Locate derives a display coordinate for an address. Unmatched addresses sit
// at the city-center default; every result gets a small jitter so stacked
// markers stay distinguishable.
func Locate(address string, rng *rand.Rand) Point {
	p := CityCenter
	if d := District(address); d != "" {
		p = districtCoords[d]
	}
	if rng != nil {
		p.Lat += (rng.Float64()*2 - 1) * MaxJitterDeg
		p.Lng += (rng.Float64()*2 - 1) * MaxJitterDeg
	}
	return p
}

// Distance returns the haversine great-circle distance between two points in
// kilometers.
func Distance(a, b Point) float64 {
	const earthRadiusKm = 6371.0
	dLat := radians(b.Lat - a.Lat)
	dLng := radians(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(a.Lat))*math.Cos(radians(b.Lat))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180.0
}
