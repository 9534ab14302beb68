package model

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// Payback is either a finite number of years or "no payback". The zero
// value is NoPayback, so an unset Payback never looks like a payback of 0.
type Payback struct {
	years float64
	ok    bool
}

func HasPayback(years float64) Payback { return Payback{years: years, ok: true} }

func NoPayback() Payback { return Payback{} }

// Years returns the payback period and whether there is one.
func (p Payback) Years() (float64, bool) { return p.years, p.ok }

// Less orders paybacks: any finite payback is shorter than no payback,
// and two NoPayback values are equal.
func (p Payback) Less(o Payback) bool {
	switch {
	case p.ok && o.ok:
		return p.years < o.years
	case p.ok:
		return true
	default:
		return false
	}
}

// Within reports whether the payback is finite and at most limit years.
func (p Payback) Within(limit float64) bool {
	return p.ok && p.years <= limit
}

func (p Payback) String() string {
	if !p.ok {
		return "no payback"
	}
	return strconv.FormatFloat(p.years, 'f', 2, 64) + " years"
}

// MarshalJSON encodes a finite payback as a number and NoPayback as null.
func (p Payback) MarshalJSON() ([]byte, error) {
	if !p.ok {
		return []byte("null"), nil
	}
	return json.Marshal(p.years)
}

func (p *Payback) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*p = NoPayback()
		return nil
	}
	var y float64
	if err := json.Unmarshal(b, &y); err != nil {
		return fmt.Errorf("payback: %w", err)
	}
	*p = HasPayback(y)
	return nil
}
