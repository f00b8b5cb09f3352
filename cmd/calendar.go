package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/guimove/tablefit/internal/orchestrator"
)

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "Show which days can seat a party",
	Long: `Loads the restaurant settings and existing bookings, then checks each day
of the range for at least one slot that can seat the party. Days outside the
booking window, exceptional closures and days without opening hours are
reported as unavailable.

With --publish the calendar is also uploaded as JSON to the configured S3
bucket, so a static booking page can grey out unavailable dates.`,
	RunE: runCalendar,
}

func init() {
	f := calendarCmd.Flags()
	f.String("from", "", "first date, YYYY-MM-DD (default: today)")
	f.Int("days", 0, "number of days (default: output.days)")
	f.Int("people", 2, "party size")
	f.Bool("publish", false, "upload the calendar to the publish bucket")
	addOutputFlags(calendarCmd)

	rootCmd.AddCommand(calendarCmd)
}

func runCalendar(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if err := applyOutputFlags(cmd); err != nil {
		return err
	}
	from, err := dateFlag(cmd, "from")
	if err != nil {
		return err
	}
	days, _ := cmd.Flags().GetInt("days")
	people, _ := cmd.Flags().GetInt("people")
	doPublish, _ := cmd.Flags().GetBool("publish")

	w, closeOut, err := openOutput(cmd)
	if err != nil {
		return err
	}
	defer closeOut()

	orch, cleanup, err := newOrchestrator(ctx, w)
	if err != nil {
		return err
	}
	defer cleanup()

	if doPublish {
		pub, err := newPublisher(ctx)
		if err != nil {
			return fmt.Errorf("creating publisher: %w", err)
		}
		orch.Publisher = pub
	}

	_, err = orch.Calendar(ctx, orchestrator.CalendarOptions{
		From:    from,
		Days:    days,
		People:  people,
		Publish: doPublish,
	})
	return err
}
