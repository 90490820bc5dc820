package converter

import "fmt"

// TimestampLayout formats render-time freshness stamps when the provider sent none.
const TimestampLayout = "1/2/2006, 3:04:05 PM"

// View is what a host renders for the current phase. Fields that don't belong to the
// phase are left zero.
type View struct {
	Phase Phase

	// Error phase
	Error  string
	APIURL string

	// Ready phase
	Amount    string
	Source    string
	Target    string
	Codes     []string
	Result    string // "100 USD = 85.0000 EUR", empty when hidden
	RateLine  string // "1 USD = 0.850000 EUR", empty when hidden
	UpdatedAt string
}

// HasResult reports whether the result and rate lines are shown.
func (v View) HasResult() bool { return v.Result != "" }

func (c *Converter) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state
	switch s.Phase {
	case PhaseLoading:
		return View{Phase: PhaseLoading}
	case PhaseError:
		return View{Phase: PhaseError, Error: s.Error, APIURL: c.source.BaseURL()}
	}

	v := View{
		Phase:     PhaseReady,
		Amount:    s.Amount.String(),
		Source:    s.Source,
		Target:    s.Target,
		Codes:     s.Rates.Codes(),
		UpdatedAt: s.UpdatedAt,
	}
	if v.UpdatedAt == "" {
		v.UpdatedAt = c.clock.Now().Local().Format(TimestampLayout)
	}

	if s.Converted != nil && s.Amount.Positive() {
		v.Result = fmt.Sprintf("%s %s = %.4f %s", s.Amount, s.Source, *s.Converted, s.Target)
		if ratio, ok := CrossRate(s.Source, s.Target, s.Rates); ok {
			v.RateLine = fmt.Sprintf("1 %s = %.6f %s", s.Source, ratio, s.Target)
		}
	}
	return v
}
