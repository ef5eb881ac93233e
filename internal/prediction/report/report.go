// Package report summarizes the values of a finished batch.
package report

import (
	"sort"

	"work-advisor/internal/models"

	"github.com/shopspring/decimal"
)

type Entry struct {
	Key        string          `json:"key"`
	Value      decimal.Decimal `json:"value"`
	DurationMs int64           `json:"durationMs"`
}

type Summary struct {
	Total     int               `json:"total"`
	Succeeded int               `json:"succeeded"`
	Failed    int               `json:"failed"`
	Min       decimal.Decimal   `json:"min"`
	Max       decimal.Decimal   `json:"max"`
	Mean      decimal.Decimal   `json:"mean"`
	Spread    decimal.Decimal   `json:"spread"`
	Entries   []Entry           `json:"entries"`
	Failures  map[string]string `json:"failures,omitempty"`
}

// Summarize ranks successful outcomes highest value first. Mean is rounded to two places.
func Summarize(outcomes map[string]models.Outcome) Summary {
	s := Summary{
		Total:    len(outcomes),
		Entries:  []Entry{},
		Failures: map[string]string{},
	}

	sum := decimal.Zero
	for key, o := range outcomes {
		if !o.IsSuccess() {
			s.Failed++
			s.Failures[key] = o.Reason
			continue
		}
		v := decimal.NewFromFloat(o.Value)
		s.Entries = append(s.Entries, Entry{Key: key, Value: v, DurationMs: o.DurationMs})
		sum = sum.Add(v)
		if s.Succeeded == 0 || v.LessThan(s.Min) {
			s.Min = v
		}
		if s.Succeeded == 0 || v.GreaterThan(s.Max) {
			s.Max = v
		}
		s.Succeeded++
	}

	sort.Slice(s.Entries, func(i, j int) bool {
		if !s.Entries[i].Value.Equal(s.Entries[j].Value) {
			return s.Entries[i].Value.GreaterThan(s.Entries[j].Value)
		}
		return s.Entries[i].Key < s.Entries[j].Key
	})

	if s.Succeeded > 0 {
		s.Mean = sum.Div(decimal.NewFromInt(int64(s.Succeeded))).Round(2)
		s.Spread = s.Max.Sub(s.Min)
	}
	return s
}

// ForSnapshot summarizes a stored batch.
func ForSnapshot(snap models.BatchSnapshot) Summary {
	return Summarize(snap.Results)
}
