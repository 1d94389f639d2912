package main

import (
	"fmt"
	"os"
	"path/filepath"

	app "github.com/mohammadpnp/crm-import/internal/application/organization"
	"github.com/mohammadpnp/crm-import/internal/config"
	domain "github.com/mohammadpnp/crm-import/internal/domain/organization"
	infradb "github.com/mohammadpnp/crm-import/internal/infrastructure/db"
	"github.com/mohammadpnp/crm-import/internal/infrastructure/report"
	"github.com/mohammadpnp/crm-import/internal/infrastructure/repository"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type runOptions struct {
	filePath       string
	mappings       []string
	skipDuplicates bool
	skipExisting   bool
	apply          bool
	batchSize      int
	reportPath     string
}

func newRunCmd(root *rootOptions) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Import organizations from a CSV file (dry-run unless --apply)",
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides, err := parseMappings(opts.mappings)
			if err != nil {
				return err
			}
			content, err := readFile(opts.filePath)
			if err != nil {
				return err
			}

			cfg, err := config.Load(".env", ".env.local")
			if err != nil {
				return withCode(exitUsage, err)
			}
			db, err := gorm.Open(postgres.Open(cfg.Database.URL), &gorm.Config{
				Logger: gormlogger.Default.LogMode(gormlogger.Silent),
			})
			if err != nil {
				return withCode(exitDB, fmt.Errorf("connect database: %w", err))
			}
			if cfg.Database.EnsureSchema {
				if err := infradb.EnsureSchema(cmd.Context(), db); err != nil {
					return withCode(exitDB, err)
				}
			}

			log := root.logger(cmd)
			batchSize := opts.batchSize
			if batchSize <= 0 {
				batchSize = cfg.Import.BatchSize
			}

			out, err := app.NewRunImport(repository.NewRecordStore(db), log).Execute(cmd.Context(), app.RunImportInput{
				FileName:        filepath.Base(opts.filePath),
				Content:         content,
				ColumnOverrides: overrides,
				Decisions: domain.Decisions{
					SkipDuplicates: opts.skipDuplicates,
					SkipExisting:   opts.skipExisting,
				},
				DryRun:    !opts.apply,
				BatchSize: batchSize,
				OnProgress: func(done, total int) {
					log.WithFields(logrus.Fields{"done": done, "total": total}).Info("progress")
				},
			})
			if err != nil {
				return withCode(validationCode(err), err)
			}

			if opts.reportPath != "" && len(out.Result.Errors) > 0 {
				if err := writeReport(opts.reportPath, out.Result.Errors); err != nil {
					return err
				}
				log.WithField("path", opts.reportPath).Info("error report written")
			}

			if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
				return err
			}
			if out.Result.FailedCount > 0 {
				return withCode(exitRowsFailed, fmt.Errorf("%d rows failed", out.Result.FailedCount))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.filePath, "file", "", "CSV file to import (required)")
	cmd.Flags().StringArrayVar(&opts.mappings, "map", nil, "Column override as Header=field (repeatable)")
	cmd.Flags().BoolVar(&opts.skipDuplicates, "skip-duplicates", false, "Import only the first row of each duplicated name")
	cmd.Flags().BoolVar(&opts.skipExisting, "skip-existing", false, "Skip rows whose name already exists")
	cmd.Flags().BoolVar(&opts.apply, "apply", false, "Write to the database (default dry-run)")
	cmd.Flags().IntVar(&opts.batchSize, "batch-size", 0, "Rows per batch (default from IMPORT_BATCH_SIZE)")
	cmd.Flags().StringVar(&opts.reportPath, "report", "", "Write failed rows to this .xlsx file")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func writeReport(path string, errs []domain.ImportError) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	if err := report.WriteImportErrors(f, errs); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
