package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/guimove/tablefit/internal/model"
	"github.com/guimove/tablefit/internal/orchestrator"
)

var allocateCmd = &cobra.Command{
	Use:   "allocate",
	Short: "Pick tables for a party at a given date and time",
	Long: `Searches the free tables at the requested time for the combination with the
fewest empty seats, using as few tables as possible. With --tables the given
selection is checked instead of searched.

The result includes the booking request payload to send to the booking
service. Nothing is written back; re-run against a fresh snapshot before
every confirmation.`,
	Example: `  tablefit allocate --date 2024-06-14 --time 19:30 --people 5
  tablefit allocate --date 2024-06-14 --time 19:30 --people 5 --tables T4,T7`,
	RunE: runAllocate,
}

func init() {
	f := allocateCmd.Flags()
	f.String("date", "", "date, YYYY-MM-DD")
	f.String("time", "", "start time, HH:MM")
	f.Int("people", 2, "party size")
	f.StringSlice("tables", nil, "validate this table selection instead of searching")
	addOutputFlags(allocateCmd)

	_ = allocateCmd.MarkFlagRequired("date")
	_ = allocateCmd.MarkFlagRequired("time")
	rootCmd.AddCommand(allocateCmd)
}

func runAllocate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if err := applyOutputFlags(cmd); err != nil {
		return err
	}
	date, err := dateFlag(cmd, "date")
	if err != nil {
		return err
	}
	rawTime, _ := cmd.Flags().GetString("time")
	at, err := model.ParseTimeOfDay(rawTime)
	if err != nil {
		return fmt.Errorf("--time: %w", err)
	}
	people, _ := cmd.Flags().GetInt("people")
	tables, _ := cmd.Flags().GetStringSlice("tables")

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

	_, err = orch.Allocate(ctx, orchestrator.AllocationRequest{
		Date:   date,
		Time:   at,
		People: people,
		Tables: tables,
	})
	return err
}
