package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/guimove/tablefit/internal/model"
)

func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().String("output", "table", "output format: table, json, markdown")
	cmd.Flags().String("output-file", "", "write output to file")
}

// applyOutputFlags copies --output into the config and revalidates.
func applyOutputFlags(cmd *cobra.Command) error {
	if f, _ := cmd.Flags().GetString("output"); cmd.Flags().Changed("output") {
		cfg.Output.Format = f
	}
	return cfg.Validate()
}

// openOutput returns stdout, or the --output-file when given. The close
// function must always be called.
func openOutput(cmd *cobra.Command) (io.Writer, func(), error) {
	outFile, _ := cmd.Flags().GetString("output-file")
	if outFile == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(outFile)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}

// dateFlag parses an optional YYYY-MM-DD flag; empty yields the zero Date.
func dateFlag(cmd *cobra.Command, name string) (model.Date, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return model.Date{}, nil
	}
	d, err := model.ParseDate(raw)
	if err != nil {
		return model.Date{}, fmt.Errorf("--%s: %w", name, err)
	}
	return d, nil
}
