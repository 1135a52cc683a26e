package loadtest

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
)

// percentageMultiplier converts a ratio to a percentage.
const percentageMultiplier = 100

// WriteReport renders the per-instrument checks and run totals.
func WriteReport(w io.Writer, checks []Check, stats *Stats, useColors bool) error {
	table := tablewriter.NewWriter(w)
	defer func() { _ = table.Close() }()

	table.Header([]string{"Path", "Name", "Before", "After", "Delta", "Recorded", "Result"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	red, green := fmt.Sprint, fmt.Sprint
	if useColors {
		red = color.New(color.FgRed, color.Bold).SprintFunc()
		green = color.New(color.FgGreen).SprintFunc()
	}

	data := make([][]string, 0, len(checks))
	for _, c := range checks {
		result := green("PASS")
		if !c.Pass {
			result = red("FAIL")
		}
		data = append(data, []string{
			c.Path,
			c.Name,
			strconv.FormatUint(c.Before, 10),
			strconv.FormatUint(c.After, 10),
			strconv.FormatUint(c.Delta(), 10),
			strconv.Itoa(c.Successful),
			result,
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	var successRate, perSecond float64
	if stats.Submitted > 0 {
		successRate = float64(stats.Successful) / float64(stats.Submitted) * percentageMultiplier
	}
	if stats.Duration > 0 {
		perSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}
	if _, err := fmt.Fprintf(w, "Submitted %d of %d completions: %d recorded, %d busy, %d failed (%.1f%% success)\n",
		stats.Submitted, stats.Generated, stats.Successful, stats.Busy, stats.Failed, successRate); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "Run took %v (%.0f completions/s)\n", stats.Duration, perSecond)
	return err
}
