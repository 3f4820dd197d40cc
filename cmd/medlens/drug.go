package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/medlens/internal/api"
	"github.com/jackzampolin/medlens/internal/formulary"
	"github.com/jackzampolin/medlens/internal/server/endpoints"
)

var drugCmd = &cobra.Command{
	Use:   "drug <name...>",
	Short: "Look up a drug in the FDA label database",
	Long: `Search the OpenFDA drug label endpoint by generic name, then brand name.

When an LLM provider is configured, colloquial names ("Tylenol", "paracetamol")
are first mapped to their generic and brand names.

Examples:
  medlens drug ibuprofen
  medlens drug baby aspirin`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cleanup, err := withLocalServices(cmd.Context())
		if err != nil {
			return err
		}
		defer cleanup()

		info, err := endpoints.NewDrugService(ctx).Search(ctx, strings.Join(args, " "))
		switch {
		case errors.Is(err, formulary.ErrNotFound):
			return &exitError{msg: formulary.MsgNotFound, code: exitNotFound}
		case errors.Is(err, formulary.ErrUnavailable):
			return &exitError{msg: formulary.MsgUnavailable, code: exitUnavailable}
		case err != nil:
			return err
		}
		return api.Output(info)
	},
}

func init() {
	rootCmd.AddCommand(drugCmd)
}
