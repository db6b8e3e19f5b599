package crs

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Well-known codes.
const (
	WGS84       = "EPSG:4326"
	WebMercator = "EPSG:3857"
)

// ErrUnknownCRS is returned when a code cannot be parsed.
var ErrUnknownCRS = errors.New("unknown CRS")

var aliases = map[string]string{
	"WGS84":                          WGS84,
	"WGS 84":                         WGS84,
	"CRS84":                          WGS84,
	"OGC:CRS84":                      WGS84,
	"URN:OGC:DEF:CRS:OGC:1.3:CRS84":  WGS84,
	"URN:OGC:DEF:CRS:OGC::CRS84":     WGS84,
	"WEB-MERCATOR":                   WebMercator,
	"WEBMERCATOR":                    WebMercator,
	"PSEUDO-MERCATOR":                WebMercator,
	"EPSG:900913":                    WebMercator,
	"EPSG:3785":                      WebMercator,
	"EPSG:102100":                    WebMercator,
	"ESRI:102100":                    WebMercator,
	"URN:OGC:DEF:CRS:EPSG::900913":   WebMercator,
	"URN:OGC:DEF:CRS:EPSG:6.18:3857": WebMercator,
}

// Normalize converts a CRS identifier into the canonical "EPSG:n" form.
// It accepts "EPSG:n", a bare "n", OGC URNs and a few common aliases.
func Normalize(code string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(code))
	if s == "" {
		return "", fmt.Errorf("%w: empty code", ErrUnknownCRS)
	}
	if canonical, ok := aliases[s]; ok {
		return canonical, nil
	}

	switch {
	case strings.HasPrefix(s, "URN:OGC:DEF:CRS:EPSG:"):
		// urn:ogc:def:crs:EPSG:[version]:code
		s = s[strings.LastIndex(s, ":")+1:]
	case strings.HasPrefix(s, "EPSG:"):
		s = strings.TrimPrefix(s, "EPSG:")
	}

	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return "", fmt.Errorf("%w: %s", ErrUnknownCRS, code)
	}

	canonical := "EPSG:" + strconv.Itoa(n)
	if alias, ok := aliases[canonical]; ok {
		return alias, nil
	}
	return canonical, nil
}

// MustNormalize is like Normalize but panics on error. It is intended for
// constants in tests and configuration defaults.
func MustNormalize(code string) string {
	c, err := Normalize(code)
	if err != nil {
		panic(err)
	}
	return c
}
