// Package reference wraps static AIS lookup tables: flag state from MMSI,
// ship-type text from its numeric code, and navigational-status text.
package reference

import (
	"strconv"
	"strings"

	ais "github.com/andmarios/aislib"
)

// Country returns the flag state associated with the mmsi's Maritime
// Identification Digits, or "" if the mmsi isn't recognized.
func Country(mmsi uint32) string {
	decoded := ais.DecodeMMSI(mmsi)
	parts := strings.SplitN(decoded, ",", 2)
	if len(parts) != 2 {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Owner returns the class of station the mmsi identifies, e.g. "Ship" or
// "Coastal Station".
func Owner(mmsi uint32) string {
	decoded := ais.DecodeMMSI(mmsi)
	parts := strings.SplitN(decoded, ",", 2)
	if len(parts) == 0 {
		return ""
	}
	return strings.TrimSpace(parts[0])
}

// MID returns the three-digit Maritime Identification Digits prefix of a
// 9-digit mmsi, or 0 if mmsi isn't shaped like a ship station number.
func MID(mmsi uint32) int {
	s := strconv.FormatUint(uint64(mmsi), 10)
	if len(s) != 9 {
		return 0
	}
	mid, err := strconv.Atoi(s[:3])
	if err != nil {
		return 0
	}
	return mid
}

// ShipTypeText resolves an AIS ship-type code to its human-readable
// category, falling back to the numeric code when the code is unknown.
func ShipTypeText(code int) string {
	if text, ok := ais.ShipType[code]; ok && text != "" {
		return text
	}
	return strconv.Itoa(code)
}

// NavStatusText resolves an AIS navigational-status code to its
// human-readable description, falling back to the numeric code when out of
// range.
func NavStatusText(code int) string {
	if code >= 0 && code < len(ais.NavigationStatusCodes) {
		if text := ais.NavigationStatusCodes[code]; text != "" {
			return text
		}
	}
	return strconv.Itoa(code)
}
