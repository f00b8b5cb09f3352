package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var slotsCmd = &cobra.Command{
	Use:   "slots",
	Short: "Show bookable start times for one day",
	Long: `Lists every slot of the day with its free tables and the allocation the
party would get, or the reason the slot cannot seat them.`,
	RunE: runSlots,
}

func init() {
	f := slotsCmd.Flags()
	f.String("date", "", "date, YYYY-MM-DD (default: today)")
	f.Int("people", 2, "party size")
	addOutputFlags(slotsCmd)

	rootCmd.AddCommand(slotsCmd)
}

func runSlots(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if err := applyOutputFlags(cmd); err != nil {
		return err
	}
	date, err := dateFlag(cmd, "date")
	if err != nil {
		return err
	}
	people, _ := cmd.Flags().GetInt("people")

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

	_, err = orch.Day(ctx, date, people)
	return err
}
