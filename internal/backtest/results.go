package backtest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Match is one finished fixture with Pinnacle closing prices.
// See https://www.football-data.co.uk/notes.txt for the column names.
type Match struct {
	League   string
	HomeTeam string
	AwayTeam string

	HomeGoals int
	AwayGoals int
	Result    string // H, D, A

	PinnacleHome float64 // PSH
	PinnacleDraw float64 // PSD
	PinnacleAway float64 // PSA

	PinnacleOver25  float64 // P>2.5, 0 when absent
	PinnacleUnder25 float64 // P<2.5
}

// TotalGoals is the full-time goal count.
func (m Match) TotalGoals() int { return m.HomeGoals + m.AwayGoals }

// ParseResults reads a football-data.co.uk CSV. Rows without a result or
// without a full set of Pinnacle 1X2 prices are skipped.
func ParseResults(r io.Reader, league string) ([]Match, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	colIdx := make(map[string]int)
	for i, h := range header {
		colIdx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}

	for _, c := range []string{"HomeTeam", "AwayTeam", "FTHG", "FTAG", "FTR", "PSH", "PSD", "PSA"} {
		if _, ok := colIdx[c]; !ok {
			return nil, fmt.Errorf("missing column: %s", c)
		}
	}

	var matches []Match
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		m := Match{League: league}
		m.HomeTeam = getCol(row, colIdx, "HomeTeam")
		m.AwayTeam = getCol(row, colIdx, "AwayTeam")
		m.HomeGoals = getColInt(row, colIdx, "FTHG")
		m.AwayGoals = getColInt(row, colIdx, "FTAG")
		m.Result = getCol(row, colIdx, "FTR")

		m.PinnacleHome = getColFloat(row, colIdx, "PSH")
		m.PinnacleDraw = getColFloat(row, colIdx, "PSD")
		m.PinnacleAway = getColFloat(row, colIdx, "PSA")
		m.PinnacleOver25 = getColFloat(row, colIdx, "P>2.5")
		m.PinnacleUnder25 = getColFloat(row, colIdx, "P<2.5")

		if m.PinnacleHome <= 1 || m.PinnacleDraw <= 1 || m.PinnacleAway <= 1 {
			continue
		}
		switch m.Result {
		case "H", "D", "A":
		default:
			continue
		}

		matches = append(matches, m)
	}

	return matches, nil
}

func getCol(row []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func getColInt(row []string, idx map[string]int, name string) int {
	v, _ := strconv.Atoi(getCol(row, idx, name))
	return v
}

func getColFloat(row []string, idx map[string]int, name string) float64 {
	v, _ := strconv.ParseFloat(getCol(row, idx, name), 64)
	return v
}
