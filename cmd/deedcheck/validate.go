package main

import (
	"github.com/spf13/cobra"

	"deedcheck/internal/domain"
	"deedcheck/internal/service"
)

func validateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [record.json|-]",
		Short: "Validate a structured deed record",
		Long:  "Run the validation pipeline over a structured record and print the outcome. Exits with status 2 when the record is rejected.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			a, log, _, err := bootstrap(cmd.Context(), false)
			if err != nil {
				return err
			}
			defer a.Close()
			defer func() { _ = log.Sync() }()

			res, err := a.Service.Validate(cmd.Context(), data)
			if err != nil {
				return err
			}
			return report(cmd, res)
		},
	}
}

func report(cmd *cobra.Command, res *service.ValidationResult) error {
	if err := printJSON(cmd.OutOrStdout(), res); err != nil {
		return err
	}
	if res.Status == domain.RunStatusRejected {
		return errRejected
	}
	return nil
}
