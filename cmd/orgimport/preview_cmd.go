package main

import (
	"errors"
	"path/filepath"

	app "github.com/mohammadpnp/crm-import/internal/application/organization"
	"github.com/spf13/cobra"
)

func newPreviewCmd() *cobra.Command {
	var (
		filePath string
		mappings []string
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show detected column mappings, sample rows and data quality issues",
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides, err := parseMappings(mappings)
			if err != nil {
				return err
			}
			content, err := readFile(filePath)
			if err != nil {
				return err
			}

			out, err := app.NewPreviewImport().Execute(cmd.Context(), app.PreviewImportInput{
				FileName:        filepath.Base(filePath),
				Content:         content,
				ColumnOverrides: overrides,
			})
			if err != nil {
				return withCode(validationCode(err), err)
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVar(&filePath, "file", "", "CSV file to preview (required)")
	cmd.Flags().StringArrayVar(&mappings, "map", nil, "Column override as Header=field (repeatable)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func validationCode(err error) int {
	if errors.Is(err, app.ErrInvalidUpload) || errors.Is(err, app.ErrUnreadableCSV) || errors.Is(err, app.ErrInvalidColumnMapping) {
		return exitValidation
	}
	return 1
}
