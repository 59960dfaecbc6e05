package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"deedcheck/internal/validator/deed"
)

func spellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "spell <amount-in-cents>",
		Short: "Spell an amount in words the way the written amount is parsed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			minor, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("amount must be an integer number of cents: %w", err)
			}
			words, err := deed.SpellAmount(minor)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", deed.FormatMinor(minor), words)
			return err
		},
	}
}
