package main

import (
	"github.com/spf13/cobra"
)

func extractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract [deed.txt|-]",
		Short: "Extract a record from deed text with an LLM, then validate it",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			a, log, _, err := bootstrap(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer a.Close()
			defer func() { _ = log.Sync() }()

			res, err := a.Service.ExtractAndValidate(cmd.Context(), string(text))
			if err != nil {
				return err
			}
			return report(cmd, res)
		},
	}
}
