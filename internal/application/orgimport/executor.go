package orgimport

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	domain "github.com/mohammadpnp/crm-import/internal/domain/organization"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultBatchSize = 10

	batchProcessingField = "batch_processing"
	generalField         = "general"
)

type ProgressFunc func(processed, total int)

type RunOptions struct {
	BatchSize    int
	DryRun       bool
	SkipExisting bool
	OnProgress   ProgressFunc
}

// Executor writes validated organization rows through a RecordStore in
// sequential batches.
type Executor struct {
	store domain.RecordStore
	log   logrus.FieldLogger
	now   func() time.Time
}

func NewExecutor(store domain.RecordStore, log logrus.FieldLogger) *Executor {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Executor{store: store, log: log, now: time.Now}
}

type batchResult struct {
	processed    int
	success      int
	skipped      int
	failed       int
	errors       []domain.ImportError
	catastrophic bool
}

// Run imports rows batch by batch. A failing row never stops the run; a
// failing batch marks all of its rows failed and the next batch still runs.
// Cancelling ctx stops before the next batch.
func (e *Executor) Run(ctx context.Context, rows []IndexedRow, opts RunOptions) domain.ImportResult {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}

	resolver := NewEntityResolver(e.store, NewLookupCache(), opts.DryRun, e.log)
	result := domain.ImportResult{
		DryRun: opts.DryRun,
		Errors: make([]domain.ImportError, 0),
	}

	total := len(rows)
	started := false
	for offset := 0; offset < total; offset += opts.BatchSize {
		if ctx.Err() != nil {
			result.Cancelled = true
			break
		}

		end := min(offset+opts.BatchSize, total)
		batch := rows[offset:end]

		batchStart := e.now()
		if !started {
			result.StartTime = batchStart
			started = true
		}

		res := e.runBatch(ctx, resolver, batch, opts)
		result = accumulate(result, res)
		result.EndTime = e.now()

		elapsed := result.EndTime.Sub(batchStart)
		observeBatch(res, opts.DryRun, elapsed)
		e.log.WithFields(logrus.Fields{
			"batch_start": offset,
			"rows":        len(batch),
			"success":     res.success,
			"failed":      res.failed,
			"skipped":     res.skipped,
			"elapsed_ms":  elapsed.Milliseconds(),
		}).Debug("organization import batch processed")

		if opts.OnProgress != nil {
			opts.OnProgress(end, total)
		}
	}

	if !started {
		result.StartTime = e.now()
		result.EndTime = result.StartTime
	}
	result.Duration = result.EndTime.Sub(result.StartTime)
	observeRun(opts.DryRun, result.Cancelled)

	return result
}

func accumulate(acc domain.ImportResult, res batchResult) domain.ImportResult {
	acc.TotalProcessed += res.processed
	acc.SuccessCount += res.success
	acc.SkippedCount += res.skipped
	acc.FailedCount += res.failed
	acc.Errors = append(acc.Errors, res.errors...)
	return acc
}

func (e *Executor) runBatch(ctx context.Context, resolver *EntityResolver, batch []IndexedRow, opts RunOptions) (res batchResult) {
	defer func() {
		if p := recover(); p != nil {
			res = failBatch(batch, fmt.Errorf("panic: %v", p))
		}
	}()

	outcome := ValidateRows(ApplyDataQualityTransformations(batch).Rows)

	res.processed = len(batch)
	for _, row := range outcome.Failed {
		res.failed++
		res.errors = append(res.errors, domain.ImportError{
			Row:    HeaderOffset + row.OriginalIndex,
			Data:   row.Row.Strings(),
			Errors: row.Errors,
		})
	}
	if len(outcome.Successful) == 0 {
		return res
	}

	rel, err := resolver.resolveBatch(ctx, outcome.Successful)
	if err != nil {
		e.log.WithError(err).Error("organization import batch failed")
		return failBatch(batch, err)
	}

	candidates := outcome.Successful
	if opts.SkipExisting {
		existing, err := e.existingNames(ctx, candidates)
		if err != nil {
			e.log.WithError(err).Error("organization import batch failed")
			return failBatch(batch, err)
		}
		kept := make([]ValidRow, 0, len(candidates))
		for _, row := range candidates {
			if _, ok := existing[lookupKey(row.Input.Name)]; ok {
				res.skipped++
				continue
			}
			kept = append(kept, row)
		}
		candidates = kept
	}

	createErrs := make([]error, len(candidates))
	var g errgroup.Group
	g.SetLimit(opts.BatchSize)
	for i, row := range candidates {
		g.Go(func() error {
			createErrs[i] = e.createOrganization(ctx, row.Input, rel, opts.DryRun)
			return nil
		})
	}
	_ = g.Wait()

	for i, err := range createErrs {
		if err == nil {
			res.success++
			continue
		}
		res.failed++
		res.errors = append(res.errors, domain.ImportError{
			Row:    HeaderOffset + candidates[i].OriginalIndex,
			Data:   candidates[i].Row.Strings(),
			Errors: normalizeCreateError(err),
		})
	}

	return res
}

func (e *Executor) createOrganization(ctx context.Context, input OrganizationInput, rel batchRelations, dryRun bool) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()

	_, err = e.store.Create(ctx, domain.ResourceOrganizations, domain.CreateParams{
		Data: organizationData(input, rel),
		Meta: domain.CreateMeta{DryRun: dryRun},
	})
	return err
}

func (e *Executor) existingNames(ctx context.Context, rows []ValidRow) (map[string]struct{}, error) {
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, row.Input.Name)
	}

	records, err := e.store.GetList(ctx, domain.ResourceOrganizations, domain.ListParams{
		Filter:     map[string]any{"name@in": names},
		Pagination: domain.Pagination{Page: 1, PerPage: len(names) * 10},
		Sort:       domain.Sort{Field: "id", Order: "ASC"},
	})
	if err != nil {
		return nil, fmt.Errorf("look up existing organizations: %w", err)
	}

	out := make(map[string]struct{}, len(records))
	for _, rec := range records {
		out[lookupKey(stringField(rec, "name"))] = struct{}{}
	}
	return out, nil
}

func failBatch(batch []IndexedRow, cause error) batchResult {
	res := batchResult{
		processed:    len(batch),
		failed:       len(batch),
		errors:       make([]domain.ImportError, 0, len(batch)),
		catastrophic: true,
	}
	for _, row := range batch {
		res.errors = append(res.errors, domain.ImportError{
			Row:  HeaderOffset + row.OriginalIndex,
			Data: row.Row.Strings(),
			Errors: []domain.FieldError{{
				Field:   batchProcessingField,
				Message: cause.Error(),
			}},
		})
	}
	return res
}

// normalizeCreateError flattens a store rejection into field errors.
func normalizeCreateError(err error) []domain.FieldError {
	var fieldErrs *domain.FieldErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs.Errors) > 0 {
		out := make([]domain.FieldError, 0, len(fieldErrs.Errors))
		for field, message := range fieldErrs.Errors {
			out = append(out, domain.FieldError{Field: field, Message: message})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].Field < out[j].Field })
		return out
	}

	message := err.Error()
	if message == "" {
		message = "failed to import organization"
	}
	return []domain.FieldError{{Field: generalField, Message: message}}
}
