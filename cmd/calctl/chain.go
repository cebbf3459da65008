package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/warp/calendar-engine/calendar"
)

const dateLayout = "2006-01-02"

type chainOptions struct {
	from  string
	to    string
	units []string
	pages []string // param=page
	at    string
	all   bool
}

var chainOpts chainOptions

var chainCmd = &cobra.Command{
	Use:   "chain",
	Short: "Print the calendar chain over a period",
	Example: `  calctl chain --from 2024-01-15 --to 2024-03-10 --units year,month
  calctl chain --from 2023-06-01 --to 2024-06-01 --page year_page=1 --all
  calctl chain --from 2024-01-01 --to 2025-01-01 --units month,day --at 2024-02-29`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runChain(cmd.Context(), cmd.OutOrStdout(), chainOpts)
	},
}

func init() {
	chainCmd.Flags().StringVar(&chainOpts.from, "from", "", "period start, YYYY-MM-DD (required)")
	chainCmd.Flags().StringVar(&chainOpts.to, "to", "", "period end, exclusive, YYYY-MM-DD (required)")
	chainCmd.Flags().StringSliceVar(&chainOpts.units, "units", []string{"year", "month", "day"}, "units, coarse to fine (ignored with --config)")
	chainCmd.Flags().StringSliceVar(&chainOpts.pages, "page", nil, "requested page as param=page, repeatable")
	chainCmd.Flags().StringVar(&chainOpts.at, "at", "", "select the pages containing this date (not with --page)")
	chainCmd.Flags().BoolVar(&chainOpts.all, "all", false, "print every page of every unit")
	chainCmd.MarkFlagRequired("from")
	chainCmd.MarkFlagRequired("to")
	chainCmd.MarkFlagsMutuallyExclusive("at", "page")
	rootCmd.AddCommand(chainCmd)
}

func runChain(ctx context.Context, out io.Writer, opts chainOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	loc, err := location()
	if err != nil {
		return fmt.Errorf("invalid timezone: %w", err)
	}
	start, err := time.ParseInLocation(dateLayout, opts.from, loc)
	if err != nil {
		return fmt.Errorf("invalid --from: %w", err)
	}
	end, err := time.ParseInLocation(dateLayout, opts.to, loc)
	if err != nil {
		return fmt.Errorf("invalid --to: %w", err)
	}
	period, err := calendar.NewPeriod(start, end)
	if err != nil {
		return err
	}

	settings, err := loadSettings(opts.units)
	if err != nil {
		return err
	}

	if opts.at != "" && len(opts.pages) > 0 {
		return errors.New("--at and --page cannot be combined")
	}
	pages, err := parsePages(opts.pages)
	if err != nil {
		return err
	}
	if opts.at != "" {
		t, err := time.ParseInLocation(dateLayout, opts.at, loc)
		if err != nil {
			return fmt.Errorf("invalid --at: %w", err)
		}
		if pages, err = calendar.PagesAt(settings.Chain, period, t); err != nil {
			return err
		}
	}

	chain, err := calendar.Build(ctx, settings.Chain, period, pages, nil)
	if err != nil {
		return err
	}
	printChain(out, chain, opts.all)
	return nil
}

func parsePages(raw []string) (calendar.PageMap, error) {
	pages := make(calendar.PageMap, len(raw))
	for _, kv := range raw {
		param, value, ok := strings.Cut(kv, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --page %q (use param=page)", kv)
		}
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("invalid --page %q: %w", kv, calendar.ErrInvalidPage)
		}
		pages[param] = n
	}
	return pages, nil
}

func printChain(out io.Writer, chain *calendar.Chain, all bool) {
	bold := color.New(color.Bold).SprintFunc()
	faint := color.New(color.Faint).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()

	for i, u := range chain.Units {
		fmt.Fprintf(out, "%s %s %d/%d  [%s, %s)\n",
			strings.Repeat("  ", i), bold(u.Kind), u.Page, u.Pages,
			u.From.Format(dateLayout), u.To.Format(dateLayout))
		fmt.Fprintf(out, "%s   %s %s\n", strings.Repeat("  ", i),
			faint("param"), u.PageParam)
		if dropped := chain.Dropped(i); len(dropped) > 0 {
			fmt.Fprintf(out, "%s   %s %s\n", strings.Repeat("  ", i),
				faint("resets"), strings.Join(dropped, ", "))
		}
		if !all {
			continue
		}
		for page, p := range u.Series() {
			marker := " "
			if page == u.Page {
				marker = cyan("*")
			}
			fmt.Fprintf(out, "%s   %s %3d  %-10s [%s, %s)\n", strings.Repeat("  ", i),
				marker, page, u.Label(page), p.Start.Format(dateLayout), p.End.Format(dateLayout))
		}
	}
	window := chain.Interval()
	fmt.Fprintf(out, "%s [%s, %s)\n", bold("window"),
		window.Start.Format(dateLayout), window.End.Format(dateLayout))
}
