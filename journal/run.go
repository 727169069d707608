package journal

import (
	"bytes"
	"fmt"
	"os"
	"text/template"
	"time"
)

// RunSummary describes one finished (or abandoned) simulator run.
type RunSummary struct {
	RunID    string
	UserID   string
	Seed     int64
	Started  time.Time
	Finished time.Time
	Days     int

	StartBalance float64
	EndBalance   float64
	Holdings     int
	FinalPrice   float64

	Buys          int
	Sells         int
	PanicSells    int
	Interventions int

	EmotionalScore int
}

// PortfolioValue is cash plus holdings marked at the final price.
func (r RunSummary) PortfolioValue() float64 {
	return r.EndBalance + float64(r.Holdings)*r.FinalPrice
}

func (r RunSummary) PnL() float64 {
	return r.PortfolioValue() - r.StartBalance
}

func (r RunSummary) PnLPct() float64 {
	if r.StartBalance == 0 {
		return 0
	}
	return 100 * r.PnL() / r.StartBalance
}

var runOrgFuncs = template.FuncMap{
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
}

var runOrg = template.Must(template.New("run").Funcs(runOrgFuncs).Parse(RunOrgTemplate))

// FormatRunOrg renders a run summary as an Org-mode entry.
func FormatRunOrg(r RunSummary) (string, error) {
	buf := new(bytes.Buffer)
	if err := runOrg.Execute(buf, r); err != nil {
		return "", fmt.Errorf("render run %q: %w", r.RunID, err)
	}
	return buf.String(), nil
}

// WriteRunOrg renders the summary to path.
func WriteRunOrg(path string, r RunSummary) error {
	s, err := FormatRunOrg(r)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(s), 0644)
}

const RunOrgTemplate = `* CRASH SIMULATOR RUN {{if .RunID}}{{.RunID}}{{else}}(run-id?){{end}}
:PROPERTIES:
:RUN_ID:        {{.RunID}}
:USER_ID:       {{if .UserID}}{{.UserID}}{{else}}(anonymous){{end}}
:SEED:          {{.Seed}}
:DAYS:          {{.Days}}
:START_BAL:     {{printf "%.2f" .StartBalance}}
:END_BAL:       {{printf "%.2f" .EndBalance}}
:HOLDINGS:      {{.Holdings}}
:FINAL_PRICE:   {{printf "%.2f" .FinalPrice}}
:PNL_PCT:       {{printf "%.2f" .PnLPct}}
:STARTED:       [{{(orTime .Started).Format "2006-01-02 Mon 15:04"}}]
:END:

** Discipline
| Metric          | Value |
|-----------------+-------|
| Buys            | {{.Buys}} |
| Sells           | {{.Sells}} |
| Panic sells     | {{.PanicSells}} |
| Interventions   | {{.Interventions}} |
| Emotional score | {{.EmotionalScore}} |

** Result
- Portfolio value: *{{printf "%.2f" .PortfolioValue}}*
- P/L:             *{{printf "%.2f" .PnL}}*
`
