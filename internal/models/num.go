package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Num is a numeric set field that the user may leave blank. The browser app
// stores these as either numbers or strings ("" when blank, "100" when typed),
// so decoding accepts both. Zero and blank are the same value.
type Num float64

// IsZero reports whether the field is blank.
func (n Num) IsZero() bool { return n == 0 }

// Float returns the value as a float64.
func (n Num) Float() float64 { return float64(n) }

// Finite reports whether the value is neither infinite nor NaN.
func (n Num) Finite() bool {
	f := float64(n)
	return !math.IsInf(f, 0) && !math.IsNaN(f)
}

// String formats the value without trailing zeros ("" when blank).
func (n Num) String() string {
	if n == 0 {
		return ""
	}
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}

// MarshalJSON writes blank values as "" to match the stored browser format.
func (n Num) MarshalJSON() ([]byte, error) {
	if n == 0 {
		return []byte(`""`), nil
	}
	if !n.Finite() {
		return nil, fmt.Errorf("invalid number %v", float64(n))
	}
	return []byte(strconv.FormatFloat(float64(n), 'f', -1, 64)), nil
}

// UnmarshalJSON accepts a number, a numeric string, "" or null.
func (n *Num) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		if s == "" {
			*n = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsInf(f, 0) || math.IsNaN(f) {
			return fmt.Errorf("invalid number %q", s)
		}
		*n = Num(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*n = Num(f)
	return nil
}
