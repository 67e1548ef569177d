// Package report aggregates validation outcomes for presentation and
// export. Everything here is a pure function over a finished batch; the
// engine never depends on it.
package report

import "github.com/dataview/mailscrub/types"

// Band categorizes overall list health.
type Band = string

const (
	BandExcellent Band = "Excellent"
	BandGood      Band = "Good"
	BandPoor      Band = "Poor"
)

// Summary tallies a finished batch by status.
type Summary struct {
	Total   int
	Valid   int
	Invalid int
	Errors  int
}

// Summarize counts outcomes per status. Unknown status values count as
// errors so they cannot inflate the valid share.
func Summarize(outcomes []types.Outcome) Summary {
	var s Summary
	for _, o := range outcomes {
		s.Total++
		switch o.Status {
		case types.StatusValid:
			s.Valid++
		case types.StatusInvalid:
			s.Invalid++
		default:
			s.Errors++
		}
	}
	return s
}

// PercentValid is the valid share of the batch, 0-100.
func (s Summary) PercentValid() float64 { return s.percent(s.Valid) }

// PercentInvalid is the invalid share of the batch, 0-100.
func (s Summary) PercentInvalid() float64 { return s.percent(s.Invalid) }

// PercentErrors is the error share of the batch, 0-100.
func (s Summary) PercentErrors() float64 { return s.percent(s.Errors) }

func (s Summary) percent(n int) float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(n) / float64(s.Total) * 100
}

// HealthBand buckets the valid percentage: Excellent at 95% and above,
// Good at 70% and above, Poor below that.
func (s Summary) HealthBand() Band {
	switch p := s.PercentValid(); {
	case p >= 95:
		return BandExcellent
	case p >= 70:
		return BandGood
	default:
		return BandPoor
	}
}
