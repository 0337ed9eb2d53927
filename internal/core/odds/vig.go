package odds

// RemoveVig2 converts two-way decimal odds to fair probabilities
// by stripping the bookmaker's overround. Any non-positive price
// yields (0, 0).
func RemoveVig2(a, b float64) (float64, float64) {
	if a <= 0 || b <= 0 {
		return 0, 0
	}
	rawA := 1.0 / a
	rawB := 1.0 / b
	total := rawA + rawB
	return rawA / total, rawB / total
}

// RemoveVig3 converts three-way decimal odds to fair probabilities.
func RemoveVig3(a, b, c float64) (float64, float64, float64) {
	if a <= 0 || b <= 0 || c <= 0 {
		return 0, 0, 0
	}
	rawA := 1.0 / a
	rawB := 1.0 / b
	rawC := 1.0 / c
	total := rawA + rawB + rawC
	return rawA / total, rawB / total, rawC / total
}

// DrawNoBet conditions the home and away legs of a 1X2 split on a
// decisive result. Returns (0, 0) when neither side can win.
func DrawNoBet(home, away float64) (float64, float64) {
	decisive := home + away
	if decisive <= 0 {
		return 0, 0
	}
	return home / decisive, away / decisive
}
