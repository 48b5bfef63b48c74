// Package store holds artifact and admin records, in Postgres when a
// database is configured and in memory otherwise.
package store

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

var ErrNotFound = errors.New("not found")

// NextArtifactID returns the admin identifier following last, the ID of the
// most recently created record. An empty or unparseable last starts at ART001.
func NextArtifactID(last string) string {
	n := 0
	if digits, ok := strings.CutPrefix(last, "ART"); ok {
		if v, err := strconv.Atoi(digits); err == nil && v > 0 {
			n = v
		}
	}
	return fmt.Sprintf("ART%03d", n+1)
}

// clamp01 maps a cosine similarity onto [0,1].
func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}

func sanitizeUTF8(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	return strings.ToValidUTF8(s, "")
}
