package stats

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/verte-zerg/lottosim/internal/model"
)

// FormatNumbers joins numbers with single spaces.
func FormatNumbers(numbers []int) string {
	parts := make([]string, len(numbers))
	for i, n := range numbers {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, " ")
}

// RenderSummary prints the headline statistics of a run.
func RenderSummary(w io.Writer, s model.SimulationStatistics) error {
	if s.TotalSimulations == 0 {
		_, err := fmt.Fprintln(w, "No simulations run.")
		return err
	}
	lines := []string{
		"Summary",
		fmt.Sprintf("Simulations: %d", s.TotalSimulations),
		fmt.Sprintf("Processing time: %s", s.ProcessingTime()),
		fmt.Sprintf("Most frequent main: %s", FormatNumbers(s.MostFrequentMain)),
		fmt.Sprintf("Most frequent bonus: %d", s.MostFrequentBonus),
		fmt.Sprintf("Average sum: %d", s.AverageSum),
		fmt.Sprintf("Count spread: mean %.1f, sd %.2f, min %.0f, max %.0f",
			s.MainSpread.Mean, s.MainSpread.StdDev, s.MainSpread.Min, s.MainSpread.Max),
		fmt.Sprintf("Uniformity: chi2 %.2f (df %d), p %.3f",
			s.Uniformity.ChiSquare, s.Uniformity.DegreesOfFreedom, s.Uniformity.PValue),
		"",
	}
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return RenderCombinations(w, s.RankedCombinations)
}

// RenderCombinations prints the ranked combinations as a table.
func RenderCombinations(w io.Writer, combos []model.RankedCombination) error {
	if len(combos) == 0 {
		_, err := fmt.Fprintln(w, "No ranked combinations.")
		return err
	}
	if _, err := fmt.Fprintln(w, "Ranked Combinations"); err != nil {
		return err
	}
	headers := []string{"Rank", "Main", "Bonus", "Score"}
	rows := make([][]string, 0, len(combos))
	for _, c := range combos {
		rows = append(rows, []string{
			c.Rank,
			FormatNumbers(c.MainNumbers),
			strconv.Itoa(c.BonusNumber),
			fmt.Sprintf("%d%%", c.FrequencyScore),
		})
	}
	for _, line := range formatTable(headers, rows, map[int]bool{2: true, 3: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "Scores are a fixed heuristic, not probabilities.")
	return err
}

// RenderDraws prints trailing draws, oldest first.
func RenderDraws(w io.Writer, draws []model.Draw) error {
	if len(draws) == 0 {
		_, err := fmt.Fprintln(w, "No draws retained.")
		return err
	}
	if _, err := fmt.Fprintf(w, "Last %d Draws\n", len(draws)); err != nil {
		return err
	}
	rows := DrawRows(draws)
	for _, line := range formatTable(DrawHeaders(), rows, map[int]bool{0: true, 2: true, 3: true}) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// DrawHeaders returns the column titles used for draw tables.
func DrawHeaders() []string {
	return []string{"#", "Main", "Bonus", "Checksum"}
}

// DrawRows formats draws as table rows.
func DrawRows(draws []model.Draw) [][]string {
	rows := make([][]string, 0, len(draws))
	for _, d := range draws {
		rows = append(rows, []string{
			strconv.Itoa(d.SequenceID),
			FormatNumbers(d.MainNumbers),
			strconv.Itoa(d.BonusNumber),
			strconv.Itoa(d.Checksum),
		})
	}
	return rows
}
