// Package relay implements geohash decoding and nearest-relay search: an
// independent utility for picking nostr relays close to a geographic
// location, with no shared state with the miner packages. A relay record
// may optionally carry an operator's x-only public key, which this package
// can render as a bech32 npub for display.
package relay

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2/schnorr"
	"github.com/btcsuite/btcutil/bech32"
)

// earthRadiusKM is the mean Earth radius used by the Haversine formula.
const earthRadiusKM = 6371.0

// base32 is the geohash alphabet (note: omits 'a', 'i', 'l', 'o' to avoid
// visual ambiguity with digits).
const base32 = "0123456789bcdefghjkmnpqrstuvwxyz"

// GeoCoordinate is a decoded latitude/longitude pair, in degrees.
type GeoCoordinate struct {
	Latitude  float64
	Longitude float64
}

// Relay is a single CSV-loaded relay record. NpubHex is empty when the CSV
// row didn't carry a fourth column.
type Relay struct {
	URL       string
	Latitude  float64
	Longitude float64
	NpubHex   string
	Distance  float64
}

// Npub renders the relay's optional operator public key as a bech32
// "npub1..." string. It returns an error if NpubHex is empty, not valid
// hex, or not a valid BIP-340 x-only public key.
func (r Relay) Npub() (string, error) {
	if r.NpubHex == "" {
		return "", fmt.Errorf("relay %q has no operator pubkey", r.URL)
	}

	raw, err := hexDecode(r.NpubHex)
	if err != nil {
		return "", fmt.Errorf("relay %q: decode pubkey hex: %w", r.URL, err)
	}
	if _, err := schnorr.ParsePubKey(raw); err != nil {
		return "", fmt.Errorf("relay %q: invalid x-only pubkey: %w", r.URL, err)
	}

	converted, err := bech32.ConvertBits(raw, 8, 5, true)
	if err != nil {
		return "", fmt.Errorf("relay %q: convert bits: %w", r.URL, err)
	}
	return bech32.Encode("npub", converted)
}

func hexDecode(s string) ([]byte, error) {
	if len(s)%2 != 0 {
		return nil, fmt.Errorf("odd-length hex string")
	}
	out := make([]byte, len(s)/2)
	for i := range out {
		hi, err := hexNibble(s[i*2])
		if err != nil {
			return nil, err
		}
		lo, err := hexNibble(s[i*2+1])
		if err != nil {
			return nil, err
		}
		out[i] = hi<<4 | lo
	}
	return out, nil
}

func hexNibble(c byte) (byte, error) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', nil
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, nil
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, nil
	default:
		return 0, fmt.Errorf("invalid hex digit %q", c)
	}
}

// DecodeGeohash decodes a geohash string to a latitude/longitude pair,
// bisecting the lat/lon bounds one bit at a time, alternating longitude
// and latitude starting with longitude, per character in base32.
func DecodeGeohash(geohash string) (GeoCoordinate, error) {
	latMin, latMax := -90.0, 90.0
	lonMin, lonMax := -180.0, 180.0
	evenBit := true // next bit refines longitude

	for _, r := range strings.ToLower(geohash) {
		idx := strings.IndexRune(base32, r)
		if idx < 0 {
			return GeoCoordinate{}, fmt.Errorf("relay: invalid geohash character %q", r)
		}

		for bit := 4; bit >= 0; bit-- {
			bitValue := (idx >> uint(bit)) & 1
			if evenBit {
				mid := (lonMin + lonMax) / 2.0
				if bitValue == 1 {
					lonMin = mid
				} else {
					lonMax = mid
				}
			} else {
				mid := (latMin + latMax) / 2.0
				if bitValue == 1 {
					latMin = mid
				} else {
					latMax = mid
				}
			}
			evenBit = !evenBit
		}
	}

	return GeoCoordinate{
		Latitude:  (latMin + latMax) / 2.0,
		Longitude: (lonMin + lonMax) / 2.0,
	}, nil
}

func degToRad(deg float64) float64 { return deg * math.Pi / 180.0 }

// HaversineKM returns the great-circle distance between two coordinates, in
// kilometers.
func HaversineKM(a, b GeoCoordinate) float64 {
	dLat := degToRad(b.Latitude - a.Latitude)
	dLon := degToRad(b.Longitude - a.Longitude)
	lat1 := degToRad(a.Latitude)
	lat2 := degToRad(b.Latitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusKM * c
}

// LoadRelays reads a relay CSV file. Each row is "url,latitude,longitude"
// with an optional fourth "npub_hex" column. A first row that looks like a
// header (contains "Relay", "URL", or "Latitude") is skipped.
func LoadRelays(path string) ([]Relay, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("relay: open %q: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(bufio.NewReader(f))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	var relays []Relay
	first := true
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("relay: parse %q: %w", path, err)
		}

		if first {
			first = false
			if looksLikeHeader(record) {
				continue
			}
		}

		relay, ok := parseRelayRecord(record)
		if ok {
			relays = append(relays, relay)
		}
	}

	if len(relays) == 0 {
		return nil, fmt.Errorf("relay: no relays loaded from %q", path)
	}
	return relays, nil
}

func looksLikeHeader(record []string) bool {
	for _, field := range record {
		if strings.Contains(field, "Relay") || strings.Contains(field, "URL") || strings.Contains(field, "Latitude") {
			return true
		}
	}
	return false
}

func parseRelayRecord(record []string) (Relay, bool) {
	if len(record) < 3 {
		return Relay{}, false
	}

	lat, err := strconv.ParseFloat(strings.TrimSpace(record[1]), 64)
	if err != nil {
		return Relay{}, false
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(record[2]), 64)
	if err != nil {
		return Relay{}, false
	}

	relay := Relay{
		URL:       strings.TrimSpace(record[0]),
		Latitude:  lat,
		Longitude: lon,
	}
	if len(record) >= 4 {
		relay.NpubHex = strings.TrimSpace(record[3])
	}
	return relay, true
}

// Nearest returns the n relays closest to at, sorted ascending by distance.
// It mutates each Relay's Distance field in place. If n exceeds len(relays),
// all relays are returned.
func Nearest(relays []Relay, at GeoCoordinate, n int) []Relay {
	for i := range relays {
		relays[i].Distance = HaversineKM(at, GeoCoordinate{
			Latitude:  relays[i].Latitude,
			Longitude: relays[i].Longitude,
		})
	}

	sorted := make([]Relay, len(relays))
	copy(sorted, relays)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Distance < sorted[j].Distance
	})

	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}
