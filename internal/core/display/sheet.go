package display

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/charleschow/fairline/internal/core/quoting"
)

const (
	dividerHeavy = "========================================================================"
	dividerLight = "~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~~"
	noPrice      = "-"
)

var teamSuffixes = map[string]bool{
	"FC": true, "SC": true, "CF": true, "AFC": true, "FK": true,
	"BK": true, "IF": true, "SK": true, "CD": true, "AD": true,
	"UD": true, "SV": true, "CA": true, "RC": true,
}

// PrintSheet writes a fixed-width rendering of a priced sheet to w.
func PrintSheet(w io.Writer, sheet quoting.Sheet) error {
	f := sheet.Fixture
	var b strings.Builder

	title := fmt.Sprintf("%s vs %s", orDash(f.HomeTeam, "Home"), orDash(f.AwayTeam, "Away"))
	if f.ID != "" {
		fmt.Fprintf(&b, "\n[%s %s]\n", f.ID, sheet.PricedAt.Format("2006-01-02 15:04:05"))
	} else {
		fmt.Fprintf(&b, "\n[%s]\n", sheet.PricedAt.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintf(&b, "%s\n", dividerHeavy)
	fmt.Fprintf(&b, "  %s  (%s)\n", title, f.League)
	fmt.Fprintf(&b, "    %-26sH %.0f  |  A %.0f\n", "Ratings:", f.HomeRating, f.AwayRating)

	draw := "n/a"
	if sheet.League.HasDrawRate() {
		draw = fmt.Sprintf("%.1f%%", sheet.League.DrawRate*100)
	}
	fmt.Fprintf(&b, "    %-26savg goals %.2f  |  draw rate %s  |  margin %s%%\n",
		"League:", sheet.League.AverageGoals, draw, Price(sheet.MarginPercent))

	g := sheet.Grid
	fmt.Fprintf(&b, "    %-26sλ %.3f  |  xG %s %.2f - %.2f %s  |  share %.3f\n",
		"Goals:", g.LambdaTotal, shortName(f.HomeTeam), g.XGHome, g.XGAway, shortName(f.AwayTeam), g.GoalShare)
	fmt.Fprintf(&b, "    %-26starget %.4f  |  model %.4f\n", "P(home | no draw):", g.PiHomeTarget, g.PiHomeModel)

	fmt.Fprintf(&b, "%s\n", dividerLight)
	fmt.Fprintf(&b, "    %-26s%-14s%8s%8s%8s\n", "Market", "Selection", "Prob", "Fair", "Odds")
	for _, m := range sheet.Markets {
		for i, s := range m.Selections {
			name := ""
			if i == 0 {
				name = m.Name
			}
			fmt.Fprintf(&b, "    %-26s%-14s%7s%%%8s%8s\n",
				name, s.Name, Percent(s.Fair.Probability), Price(s.Fair.Odds), Price(s.Odds))
		}
		fmt.Fprintf(&b, "    %-26s%-14s%32s\n", "", "", "book "+Price(m.Overround()*100)+"%")
	}
	fmt.Fprintf(&b, "%s\n", dividerHeavy)

	_, err := io.WriteString(w, b.String())
	return err
}

// Price rounds v half-up to two decimals. Zero, negative and non-finite
// values render as a dash.
func Price(v float64) string {
	if v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return noPrice
	}
	return decimal.NewFromFloat(v).Round(2).StringFixed(2)
}

// Percent renders a probability as a percentage with one decimal.
func Percent(p float64) string {
	if math.IsNaN(p) {
		return noPrice
	}
	return decimal.NewFromFloat(p).Shift(2).Round(1).StringFixed(1)
}

func orDash(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func shortName(name string) string {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "-"
	}
	last := parts[len(parts)-1]
	if len(parts) > 1 && teamSuffixes[strings.ToUpper(last)] {
		return parts[len(parts)-2]
	}
	return last
}
