package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newDayCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "day <date|timestamp>",
		Short: "Show the canonical day and ISO week for a date or timestamp",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.cache.DayFromRaw(args[0])
			if err != nil {
				return err
			}
			w := d.IsoWeek()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "day:       %s (%s)\n", d, d.Weekday())
			fmt.Fprintf(out, "iso week:  %s\n", w)
			fmt.Fprintf(out, "first day: %s\n", w.FirstDay())
			return nil
		},
	}
}

func newWeekCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "week <YYYY-WW>",
		Short: "Show the days of an ISO week",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := a.cache.IsoWeek(args[0])
			if err != nil {
				return err
			}
			first := w.FirstDay()
			var days []string
			for _, d := range a.cache.DaysBetween(first, a.cache.AddDays(first, 6)) {
				days = append(days, d.String())
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "iso week:  %s (year %d, week %d)\n", w, w.Year(), w.Week())
			fmt.Fprintf(out, "first day: %s\n", first)
			fmt.Fprintf(out, "days:      %s\n", strings.Join(days, " "))
			return nil
		},
	}
}
