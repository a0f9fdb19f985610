package models

import (
	"math"
	"strconv"
	"strings"
)

// Amount is a numeric form field. Editors send quantities and prices as JSON
// numbers or as raw input strings that may transiently hold garbage while the
// operator types; anything that does not parse to a finite number is coerced
// to zero so the core never stores a non-numeric value.
type Amount float64

func (a *Amount) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*a = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		*a = 0
		return nil
	}
	*a = Amount(f)
	return nil
}

func (a Amount) Float64() float64 {
	return float64(a)
}
