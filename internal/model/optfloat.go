package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// OptFloat is a numeric analytics field that may not be available yet,
// e.g. Bollinger bands before enough history has accumulated.
type OptFloat struct {
	Value float64
	Valid bool
}

// Some returns a present value.
func Some(v float64) OptFloat {
	return OptFloat{Value: v, Valid: true}
}

// None returns a value marked as not yet available.
func None() OptFloat {
	return OptFloat{}
}

// Or returns the value when present and def otherwise.
func (o OptFloat) Or(def float64) float64 {
	if !o.Valid {
		return def
	}
	return o.Value
}

// Positive reports whether the value is present and strictly greater than zero.
// Zero is the backend's "no open trade" sentinel for entry_price.
func (o OptFloat) Positive() bool {
	return o.Valid && o.Value > 0
}

func (o OptFloat) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}

func (o *OptFloat) UnmarshalJSON(raw []byte) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		*o = None()
		return nil
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	*o = fromFloat(v)
	return nil
}

// MarshalCSV and UnmarshalCSV let gocsv read and write empty cells as missing values.
func (o OptFloat) MarshalCSV() (string, error) {
	if !o.Valid {
		return "", nil
	}
	return strconv.FormatFloat(o.Value, 'f', -1, 64), nil
}

func (o *OptFloat) UnmarshalCSV(s string) error {
	s = strings.TrimSpace(s)
	switch strings.ToLower(s) {
	case "", "nan", "null", "none":
		*o = None()
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*o = fromFloat(v)
	return nil
}

func fromFloat(v float64) OptFloat {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return None()
	}
	return Some(v)
}
