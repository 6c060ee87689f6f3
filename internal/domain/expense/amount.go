package expense

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var (
	ErrInvalidAmount   = errors.New("amount must be a decimal number")
	ErrAmountPrecision = errors.New("amount supports at most two decimal places")
	ErrAmountRange     = errors.New("amount out of range")
)

// Amount is a currency value in cents. The column is NUMERIC(10,2).
type Amount int64

const MaxAmount Amount = 99999999_99

func ParseAmount(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidAmount
	}

	// exponent form only comes from JSON numbers like 1e3; it is rewritten
	// as plain digits so the two-decimal rule still applies
	if strings.ContainsAny(s, "eE") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, ErrInvalidAmount
		}
		if math.Abs(f) > float64(MaxAmount)/100 {
			return 0, ErrAmountRange
		}
		s = strconv.FormatFloat(f, 'f', -1, 64)
	}

	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" && frac == "" {
		return 0, ErrInvalidAmount
	}
	if !allDigits(whole) || !allDigits(frac) {
		return 0, ErrInvalidAmount
	}
	if len(frac) > 2 {
		return 0, ErrAmountPrecision
	}
	if whole == "" {
		whole = "0"
	}
	for len(frac) < 2 {
		frac += "0"
	}

	w, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || w > int64(MaxAmount/100) {
		return 0, ErrAmountRange
	}
	f, _ := strconv.ParseInt(frac, 10, 64)

	cents := Amount(w*100 + f)
	if neg {
		cents = -cents
	}
	return cents, nil
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func (a Amount) Cents() int64 { return int64(a) }

func (a Amount) String() string {
	v := int64(a)
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	frac := strconv.FormatInt(v%100, 10)
	if len(frac) == 1 {
		frac = "0" + frac
	}
	return sign + strconv.FormatInt(v/100, 10) + "." + frac
}

// MarshalJSON writes a bare number with two decimals.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalJSON accepts a JSON number or a numeric string.
func (a *Amount) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" {
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return ErrInvalidAmount
		}
		s = unquoted
	}

	v, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}
