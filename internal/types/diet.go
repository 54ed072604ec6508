package types

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Diet is one of the supported dietary preferences
type Diet string

const (
	DietVegan         Diet = "vegan"
	DietKeto          Diet = "keto"
	DietMediterranean Diet = "mediterranean"
	DietGlutenFree    Diet = "gluten-free"
	DietPaleo         Diet = "paleo"
)

// ValidDiets lists the supported diets in the order they are reported to clients
var ValidDiets = []Diet{DietVegan, DietKeto, DietMediterranean, DietGlutenFree, DietPaleo}

// ErrUnknownDiet is returned by ParseDiet for labels outside ValidDiets
var ErrUnknownDiet = errors.New("unknown diet")

// ParseDiet resolves a diet label case-insensitively
func ParseDiet(label string) (Diet, error) {
	d := Diet(strings.ToLower(label))
	if !d.Valid() {
		return "", fmt.Errorf("%w: %s", ErrUnknownDiet, label)
	}
	return d, nil
}

// Valid reports whether d is one of ValidDiets
func (d Diet) Valid() bool {
	for _, v := range ValidDiets {
		if d == v {
			return true
		}
	}
	return false
}

// DisplayName upper-cases the first letter and lower-cases the rest,
// e.g. "gluten-free" becomes "Gluten-free".
func (d Diet) DisplayName() string {
	s := string(d)
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}

func (d Diet) String() string {
	return string(d)
}

// ValidDietNames returns ValidDiets as plain strings
func ValidDietNames() []string {
	names := make([]string, len(ValidDiets))
	for i, d := range ValidDiets {
		names[i] = string(d)
	}
	return names
}

// InvalidDietMessage builds the client-facing message for a rejected diet label
func InvalidDietMessage(label string) string {
	return fmt.Sprintf("Invalid diet: %s. Must be one of: %s", label, strings.Join(ValidDietNames(), ", "))
}
