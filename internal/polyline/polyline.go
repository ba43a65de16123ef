// Package polyline implements the Google encoded-polyline format at 1e5
// precision, plus a defensive unescape pass for route strings that have
// been serialized through more than one JSON layer.
package polyline

import (
	"math"
	"strings"

	"backend-runaway/internal/geo"
)

// Encode packs coords into a single printable string. It never fails.
func Encode(coords []geo.Coordinate) string {
	if len(coords) == 0 {
		return ""
	}

	buf := make([]byte, 0, len(coords)*6)
	prevLat, prevLng := 0, 0

	for _, c := range coords {
		lat := int(math.Round(c.Lat * 1e5))
		lng := int(math.Round(c.Lng * 1e5))

		buf = appendValue(buf, lat-prevLat)
		buf = appendValue(buf, lng-prevLng)

		prevLat, prevLng = lat, lng
	}

	return string(buf)
}

func appendValue(buf []byte, value int) []byte {
	if value < 0 {
		value = ^(value << 1)
	} else {
		value <<= 1
	}

	for value >= 0x20 {
		buf = append(buf, byte((value&0x1f)|0x20)+63)
		value >>= 5
	}
	return append(buf, byte(value)+63)
}

// Decode is the inverse of Encode. The input is sanitized first, and a
// truncated trailing group is dropped rather than reported as an error.
// A result shorter than two points means no usable route.
func Decode(encoded string) []geo.Coordinate {
	encoded = sanitize(encoded)

	var coords []geo.Coordinate
	index, lat, lng := 0, 0, 0

	for index < len(encoded) {
		latDelta, next, ok := decodeValue(encoded, index)
		if !ok {
			break
		}
		lngDelta, after, ok := decodeValue(encoded, next)
		if !ok {
			break
		}

		index = after
		lat += latDelta
		lng += lngDelta

		coords = append(coords, geo.Coordinate{
			Lat: float64(lat) / 1e5,
			Lng: float64(lng) / 1e5,
		})
	}

	return coords
}

// decodeValue reads one zig-zag varint group starting at index. ok is
// false when the string ends before the group terminates.
func decodeValue(encoded string, index int) (int, int, bool) {
	shift, result := 0, 0

	for index < len(encoded) {
		b := int(encoded[index]) - 63
		index++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			if result&1 != 0 {
				return ^(result >> 1), index, true
			}
			return result >> 1, index, true
		}
	}

	return 0, index, false
}

// sanitize undoes redundant escaping layers picked up between the encoder
// and this decoder. Order matters: collapse doubled backslashes before
// resolving the individual escapes, then drop one layer of wrapping quotes.
func sanitize(s string) string {
	s = strings.ReplaceAll(s, `\\\\`, `\\`)
	for strings.Contains(s, `\\`) {
		s = strings.ReplaceAll(s, `\\`, `\`)
	}

	replacer := strings.NewReplacer(
		`\"`, `"`,
		`\'`, `'`,
		`\n`, "\n",
		`\t`, "\t",
		`\r`, "\r",
		`\/`, `/`,
		`\u0022`, `"`,
		`\u0027`, `'`,
	)
	s = replacer.Replace(s)

	for len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if first != last || (first != '"' && first != '\'') {
			break
		}
		s = s[1 : len(s)-1]
	}

	return s
}
