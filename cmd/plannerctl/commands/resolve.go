package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/benvon/smart-planner/internal/dateparse"
	"github.com/benvon/smart-planner/internal/services/planner"
	"github.com/spf13/cobra"
)

// resolution is the --json output of resolve.
type resolution struct {
	Text          string     `json:"text"`
	Now           time.Time  `json:"now"`
	ReferenceDate time.Time  `json:"referenceDate"`
	From          *time.Time `json:"from,omitempty"`
	To            *time.Time `json:"to,omitempty"`
	TitleFilter   *string    `json:"titleFilter,omitempty"`
	DateDetected  bool       `json:"dateDetected"`
}

// NewResolveCmd prints how a delete command would be interpreted. It
// touches no database.
func NewResolveCmd() *cobra.Command {
	var timezone, nowFlag string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "resolve <text>",
		Short: "Show the date range and title filter a delete command resolves to",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resolver, err := dateparse.NewResolver(timezone)
			if err != nil {
				return fmt.Errorf("invalid --timezone: %w", err)
			}
			now, err := parseNow(nowFlag, resolver.Location())
			if err != nil {
				return err
			}

			text := strings.Join(args, " ")
			svc := planner.NewDeletionService(nil, resolver, nil, planner.WithDeletionClock(func() time.Time { return now }))
			pred, err := svc.Preview(text)
			if err != nil && !errors.Is(err, planner.ErrNoDateDetected) {
				return err
			}

			res := resolution{
				Text:          text,
				Now:           now,
				ReferenceDate: resolver.ReferenceDate(text, now),
				TitleFilter:   pred.TitleFilter,
				DateDetected:  pred.DateRange != nil,
			}
			if pred.DateRange != nil {
				res.From, res.To = &pred.DateRange.Start, &pred.DateRange.End
			}
			if res.TitleFilter == nil {
				if hint, ok := dateparse.ExtractTitleHint(text); ok {
					res.TitleFilter = &hint
				}
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}

			fmt.Fprintf(out, "Text:           %s\n", res.Text)
			fmt.Fprintf(out, "Reference date: %s\n", res.ReferenceDate.Format("2006-01-02 (Monday)"))
			if res.DateDetected {
				fmt.Fprintf(out, "Delete range:   %s to %s\n", res.From.Format(time.RFC3339), res.To.Format(time.RFC3339))
			} else {
				fmt.Fprintln(out, "Delete range:   none (no date detected, delete would be rejected)")
			}
			if res.TitleFilter != nil {
				fmt.Fprintf(out, "Title filter:   %q\n", *res.TitleFilter)
			} else {
				fmt.Fprintln(out, "Title filter:   none (all tasks in range)")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&timezone, "timezone", "Local", "IANA timezone used for day boundaries")
	cmd.Flags().StringVar(&nowFlag, "now", "", "Reference time (RFC3339 or YYYY-MM-DD); defaults to the current time")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the resolution as JSON")
	return cmd
}

func parseNow(value string, loc *time.Location) (time.Time, error) {
	if value == "" {
		return time.Now().In(loc), nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.In(loc), nil
	}
	if t, err := time.ParseInLocation("2006-01-02", value, loc); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid --now %q: use RFC3339 or YYYY-MM-DD", value)
}
