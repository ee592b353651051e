package stats

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/verte-zerg/lottosim/internal/model"
)

const (
	barChar             = "█"
	minBarWidth         = 10
	terminalWidthBackup = 80
	colorReset          = "\x1b[0m"
	colorTop            = "\x1b[33m"
	colorBar            = "\x1b[36m"
)

// RenderFrequencyChart prints a horizontal bar per number in spec.
// Numbers in highlight are drawn in a distinct color when color is enabled.
func RenderFrequencyChart(w io.Writer, title string, freq FrequencyTable, spec model.RangeSpec, totalWidth int, highlight []int, forceColor bool) error {
	if spec.Size() == 0 {
		return nil
	}
	if totalWidth <= 0 {
		totalWidth = terminalWidth()
	}
	labelWidth := len(strconv.Itoa(spec.Max))
	if l := len(strconv.Itoa(spec.Min)); l > labelWidth {
		labelWidth = l
	}
	maxCount := 0
	for n := spec.Min; n <= spec.Max; n++ {
		if freq[n] > maxCount {
			maxCount = freq[n]
		}
	}
	countWidth := len(strconv.Itoa(maxCount))
	barWidth := BarWidthFor(totalWidth, labelWidth, countWidth)

	marked := make(map[int]bool, len(highlight))
	for _, n := range highlight {
		marked[n] = true
	}
	useColor := shouldUseColor(w, forceColor)

	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	for n := spec.Min; n <= spec.Max; n++ {
		count := freq[n]
		length := 0
		if maxCount > 0 {
			length = count * barWidth / maxCount
		}
		bar := strings.Repeat(barChar, length)
		if useColor && length > 0 {
			color := colorBar
			if marked[n] {
				color = colorTop
			}
			bar = color + bar + colorReset
		}
		marker := " "
		if marked[n] {
			marker = "*"
		}
		if _, err := fmt.Fprintf(w, "%*d%s│ %s %*d\n", labelWidth, n, marker, bar, countWidth+barWidth-length, count); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "")
	return err
}

// BarWidthFor computes the bar area that fits within totalWidth.
func BarWidthFor(totalWidth, labelWidth, countWidth int) int {
	// label, marker, "│ ", space before the count
	width := totalWidth - labelWidth - 1 - 2 - 1 - countWidth
	if width < minBarWidth {
		width = minBarWidth
	}
	return width
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}
