package main

import (
	"github.com/mohammadpnp/crm-import/internal/application/orgimport"
	"github.com/spf13/cobra"
)

func newFieldsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fields",
		Short: "List the organization fields a CSV column can map to",
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeJSON(cmd.OutOrStdout(), orgimport.AvailableFields())
		},
	}
}
