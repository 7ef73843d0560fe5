package mortality

import (
	"errors"
	"fmt"
	"strings"
)

// FillStrategy decides what happens to records whose age-adjusted rate is
// missing after parsing. Fill receives the records in file order together
// with the source position and raw rate text of each record, and may rewrite
// the rates in place.
type FillStrategy interface {
	Name() string
	Fill(path string, records []Record, raw []RawRate) (filled int, err error)
}

// RawRate is the unparsed rate cell of a record and its 1-based data row,
// counting blank rows, as reported by MalformedDataError.
type RawRate struct {
	Row  int
	Text string
}

// FillScope partitions records for forward filling.
type FillScope string

const (
	// ScopeGlobal carries values across the whole file, so a rate from one
	// state can reach the next state's leading missing rows.
	ScopeGlobal FillScope = "global"
	// ScopeState carries values only within the same state.
	ScopeState FillScope = "state"
	// ScopeCause carries values only within the same cause.
	ScopeCause FillScope = "cause"
)

// ForwardFill replaces a missing rate with the nearest preceding non-missing
// rate in file order within the same scope. Leading missing values in a
// scope stay missing. This is a presentation convenience, not an imputation
// model.
type ForwardFill struct {
	Scope FillScope
}

func (f ForwardFill) Name() string { return "forward/" + string(f.scope()) }

func (f ForwardFill) scope() FillScope {
	if f.Scope == "" {
		return ScopeState
	}
	return f.Scope
}

func (f ForwardFill) Fill(_ string, records []Record, _ []RawRate) (int, error) {
	type last struct {
		v  float64
		ok bool
	}
	prev := map[string]last{}
	key := func(r Record) string {
		switch f.scope() {
		case ScopeState:
			return r.State
		case ScopeCause:
			return r.Cause
		default:
			return ""
		}
	}
	filled := 0
	for i := range records {
		k := key(records[i])
		if records[i].HasRate {
			prev[k] = last{v: records[i].AgeAdjustedRate, ok: true}
			continue
		}
		if p := prev[k]; p.ok {
			records[i].AgeAdjustedRate = p.v
			records[i].HasRate = true
			filled++
		}
	}
	return filled, nil
}

// ZeroFill replaces every missing rate with 0.
type ZeroFill struct{}

func (ZeroFill) Name() string { return "zero" }

func (ZeroFill) Fill(_ string, records []Record, _ []RawRate) (int, error) {
	filled := 0
	for i := range records {
		if !records[i].HasRate {
			records[i].AgeAdjustedRate = 0
			records[i].HasRate = true
			filled++
		}
	}
	return filled, nil
}

// RejectMissing fails the load on the first record without a usable rate.
type RejectMissing struct{}

func (RejectMissing) Name() string { return "reject" }

func (RejectMissing) Fill(path string, records []Record, raw []RawRate) (int, error) {
	for i := range records {
		if records[i].HasRate {
			continue
		}
		src := RawRate{Row: i + 1}
		if i < len(raw) {
			src = raw[i]
		}
		return 0, &MalformedDataError{
			Path:   path,
			Row:    src.Row,
			Column: ColRate,
			Value:  src.Text,
			Err:    errors.New("missing age-adjusted death rate"),
		}
	}
	return 0, nil
}

// LeaveMissing keeps missing rates absent.
type LeaveMissing struct{}

func (LeaveMissing) Name() string { return "none" }

func (LeaveMissing) Fill(string, []Record, []RawRate) (int, error) { return 0, nil }

// ParseFillStrategy builds a strategy from its configuration name
// (forward|zero|reject|none) and, for forward, a scope (global|state|cause).
func ParseFillStrategy(name, scope string) (FillStrategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "forward", "ffill":
		switch s := FillScope(strings.ToLower(strings.TrimSpace(scope))); s {
		case "":
			return ForwardFill{Scope: ScopeState}, nil
		case ScopeGlobal, ScopeState, ScopeCause:
			return ForwardFill{Scope: s}, nil
		default:
			return nil, fmt.Errorf("invalid fill scope: %s (use global|state|cause)", scope)
		}
	case "zero":
		return ZeroFill{}, nil
	case "reject":
		return RejectMissing{}, nil
	case "none":
		return LeaveMissing{}, nil
	default:
		return nil, fmt.Errorf("invalid fill strategy: %s (use forward|zero|reject|none)", name)
	}
}
