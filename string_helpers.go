package main

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// StringTransformer defines the contract for a function that can transform a string.
type StringTransformer interface {
	TransformString(t transform.Transformer, s string) (string, int, error)
}

// defaultTransformer is the production implementation of our interface.
type defaultTransformer struct{}

// TransformString calls the actual transform.String function.
func (dt defaultTransformer) TransformString(t transform.Transformer, s string) (string, int, error) {
	return transform.String(t, s)
}

// Use a variable of the interface type. This is our "injection point".
var transformer StringTransformer = defaultTransformer{}

// asciiFolds handles letters the NFD decomposition cannot reduce: stroked
// and ligature forms carry no combining mark, so removing marks leaves them
// untouched ("Wrocław" would keep its "ł").
var asciiFolds = strings.NewReplacer(
	"ł", "l", "Ł", "L",
	"ø", "o", "Ø", "O",
	"đ", "d", "Đ", "D",
	"ß", "ss",
	"æ", "ae", "Æ", "Ae",
	"œ", "oe", "Œ", "Oe",
)

// normalizeCityName takes a city name string and returns a standardized version.
// It performs two main transformations:
// 1. It removes diacritical marks (e.g., "Wrocław" becomes "Wroclaw").
// 2. It converts the string to lowercase (e.g., "Wroclaw" becomes "wroclaw").
// Favorite-city matching and last-city comparisons use this form so that
// "Paris", "paris" and "PARIS" all name the same city.
func normalizeCityName(s string) (string, error) {
	if !utf8.ValidString(s) {
		return "", fmt.Errorf("input string is not valid UTF-8")
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transformer.TransformString(t, s)
	if err != nil {
		return "", err
	}
	return strings.ToLower(asciiFolds.Replace(result)), nil
}

// splitAndTrim splits s on sep and trims whitespace from every part.
func splitAndTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

// sameCity reports whether two city names refer to the same city under the
// normalized comparison. Normalization failures fall back to a plain
// case-insensitive match.
func sameCity(a, b string) bool {
	na, errA := normalizeCityName(a)
	nb, errB := normalizeCityName(b)
	if errA != nil || errB != nil {
		return strings.EqualFold(a, b)
	}
	return na == nb
}
