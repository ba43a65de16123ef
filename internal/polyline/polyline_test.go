package polyline

import (
	"encoding/json"
	"math"
	"testing"

	"backend-runaway/internal/geo"
)

var canonical = []geo.Coordinate{
	{Lat: 38.5, Lng: -120.2},
	{Lat: 40.7, Lng: -120.95},
	{Lat: 43.252, Lng: -126.453},
}

const canonicalEncoded = "_p~iF~ps|U_ulLnnqC_mqNvxq`@"

func coordsClose(t *testing.T, got, want []geo.Coordinate) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d coordinates, got %d", len(want), len(got))
	}
	for i := range want {
		if math.Abs(got[i].Lat-want[i].Lat) > 1e-5 || math.Abs(got[i].Lng-want[i].Lng) > 1e-5 {
			t.Fatalf("coordinate %d mismatch: got %+v want %+v", i, got[i], want[i])
		}
	}
}

func TestEncodeCanonicalVector(t *testing.T) {
	if got := Encode(canonical); got != canonicalEncoded {
		t.Fatalf("unexpected encoding: %q", got)
	}
	if got := Encode(canonical[:2]); got != "_p~iF~ps|U_ulLnnqC" {
		t.Fatalf("unexpected two-point encoding: %q", got)
	}
}

func TestDecodeCanonicalVector(t *testing.T) {
	coordsClose(t, Decode(canonicalEncoded), canonical)
}

func TestEncodeEmpty(t *testing.T) {
	if Encode(nil) != "" {
		t.Fatalf("expected empty string")
	}
	if Decode("") != nil {
		t.Fatalf("expected nil coordinates")
	}
}

func TestRoundTrip(t *testing.T) {
	routes := [][]geo.Coordinate{
		canonical,
		{
			{Lat: 52.52, Lng: 13.405},
			{Lat: 52.5205, Lng: 13.4055},
			{Lat: 52.521, Lng: 13.406},
		},
		{
			{Lat: -6.2, Lng: 106.816},
			{Lat: -6.9175, Lng: 107.6191},
		},
		{{Lat: 0, Lng: 0}},
	}

	for _, route := range routes {
		coordsClose(t, Decode(Encode(route)), route)
	}
}

func TestDecodeTruncatedTrailingGroup(t *testing.T) {
	// Cutting into the last longitude group must drop the final point,
	// not fail.
	got := Decode(canonicalEncoded[:len(canonicalEncoded)-3])
	coordsClose(t, got, canonical[:2])
}

func TestDecodeEscapedRepeatedly(t *testing.T) {
	escaped := canonicalEncoded
	for k := 0; k < 4; k++ {
		coordsClose(t, Decode(escaped), canonical)

		raw, err := json.Marshal(escaped)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		escaped = string(raw)
	}
}

func TestDecodeBackslashDoubling(t *testing.T) {
	escaped := canonicalEncoded
	for k := 0; k < 3; k++ {
		coordsClose(t, Decode(escaped), canonical)
		escaped = doubleBackslashes(escaped)
	}
}

func doubleBackslashes(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' {
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}

func TestDecodeQuotedAndUnicodeEscapes(t *testing.T) {
	coordsClose(t, Decode(`"`+canonicalEncoded+`"`), canonical)
	coordsClose(t, Decode(`'`+canonicalEncoded+`'`), canonical)

	if sanitize("\\u0022abc\\u0022") != "abc" {
		t.Fatalf("expected unicode quote escapes resolved and stripped")
	}
	if sanitize("\\u0027abc\\u0027") != "abc" {
		t.Fatalf("expected unicode apostrophe escapes resolved and stripped")
	}
}

func TestSanitizeControlEscapes(t *testing.T) {
	if sanitize(`a\nb\tc\rd\/e`) != "a\nb\tc\rd/e" {
		t.Fatalf("unexpected sanitize result")
	}
}
