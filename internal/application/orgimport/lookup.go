package orgimport

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
	domain "github.com/mohammadpnp/crm-import/internal/domain/organization"
	"github.com/sirupsen/logrus"
)

func lookupKey(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// LookupCache maps resource → normalized name → record id for the lifetime
// of one import run.
type LookupCache struct {
	mu  sync.RWMutex
	ids map[string]map[string]string
}

func NewLookupCache() *LookupCache {
	return &LookupCache{ids: make(map[string]map[string]string)}
}

func (c *LookupCache) Get(resource, name string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	id, ok := c.ids[resource][lookupKey(name)]
	return id, ok
}

func (c *LookupCache) Set(resource, name, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	byName, ok := c.ids[resource]
	if !ok {
		byName = make(map[string]string)
		c.ids[resource] = byName
	}
	byName[lookupKey(name)] = id
}

type entityKind struct {
	resource    string
	filterField string
	filterValue func(name string) string
	recordName  func(rec domain.Record) string
	createData  func(name string) domain.Record
}

var (
	tagKind = entityKind{
		resource:    domain.ResourceTags,
		filterField: "name",
		filterValue: strings.TrimSpace,
		recordName:  func(rec domain.Record) string { return stringField(rec, "name") },
		createData: func(name string) domain.Record {
			return domain.Record{"name": strings.TrimSpace(name), "color": "gray"}
		},
	}

	segmentKind = entityKind{
		resource:    domain.ResourceSegments,
		filterField: "name",
		filterValue: strings.TrimSpace,
		recordName:  func(rec domain.Record) string { return stringField(rec, "name") },
		createData: func(name string) domain.Record {
			return domain.Record{"name": strings.TrimSpace(name)}
		},
	}

	salesKind = entityKind{
		resource:    domain.ResourceSales,
		filterField: "first_name",
		filterValue: func(name string) string {
			first, _ := splitPersonName(name)
			return first
		},
		recordName: func(rec domain.Record) string {
			return strings.TrimSpace(stringField(rec, "first_name") + " " + stringField(rec, "last_name"))
		},
		createData: func(name string) domain.Record {
			first, last := splitPersonName(name)
			email := strings.ToLower(first)
			if last != "" {
				email += "." + strings.ToLower(strings.Join(strings.Fields(last), "."))
			}
			return domain.Record{
				"first_name": first,
				"last_name":  last,
				"email":      email + "@imported.local",
				"is_admin":   false,
				"disabled":   false,
			}
		},
	}
)

func splitPersonName(name string) (string, string) {
	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

func stringField(rec domain.Record, key string) string {
	switch v := rec[key].(type) {
	case nil:
		return ""
	case string:
		return v
	case *string:
		if v == nil {
			return ""
		}
		return *v
	default:
		return fmt.Sprint(v)
	}
}

func recordID(rec domain.Record) string {
	return stringField(rec, "id")
}

// EntityResolver turns related-entity names into ids, creating what is
// missing. Only one bulk lookup per resource is issued for a set of names.
type EntityResolver struct {
	store  domain.RecordStore
	cache  *LookupCache
	dryRun bool
	log    logrus.FieldLogger
}

func NewEntityResolver(store domain.RecordStore, cache *LookupCache, dryRun bool, log logrus.FieldLogger) *EntityResolver {
	if cache == nil {
		cache = NewLookupCache()
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &EntityResolver{store: store, cache: cache, dryRun: dryRun, log: log}
}

// resolve returns the ids known for names after lookup and creation. A
// lookup failure is returned; individual create failures are logged and the
// name stays unresolved. In dry-run mode nothing is read or written.
func (r *EntityResolver) resolve(ctx context.Context, kind entityKind, names []string) (map[string]string, error) {
	resolved := make(map[string]string, len(names))
	if r.dryRun {
		return resolved, nil
	}

	missing := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		key := lookupKey(name)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		if id, ok := r.cache.Get(kind.resource, name); ok {
			resolved[key] = id
			continue
		}
		missing = append(missing, name)
	}
	if len(missing) == 0 {
		return resolved, nil
	}

	values := make([]string, 0, len(missing))
	for _, name := range missing {
		values = append(values, kind.filterValue(name))
	}
	existing, err := r.store.GetList(ctx, kind.resource, domain.ListParams{
		Filter:     map[string]any{kind.filterField + "@in": values},
		Pagination: domain.Pagination{Page: 1, PerPage: len(values) * 10},
		Sort:       domain.Sort{Field: "id", Order: "ASC"},
	})
	if err != nil {
		return nil, fmt.Errorf("look up %s: %w", kind.resource, err)
	}
	for _, rec := range existing {
		name := kind.recordName(rec)
		if name == "" {
			continue
		}
		r.cache.Set(kind.resource, name, recordID(rec))
	}

	for _, name := range missing {
		if id, ok := r.cache.Get(kind.resource, name); ok {
			resolved[lookupKey(name)] = id
			continue
		}
		created, err := r.store.Create(ctx, kind.resource, domain.CreateParams{Data: kind.createData(name)})
		if err != nil {
			r.log.WithFields(logrus.Fields{
				"resource": kind.resource,
				"name":     name,
			}).WithError(err).Warn("could not create related record, continuing without it")
			continue
		}
		id := recordID(created)
		r.cache.Set(kind.resource, name, id)
		resolved[lookupKey(name)] = id
	}

	return resolved, nil
}

// batchRelations holds resolved ids for one batch, keyed by normalized name.
type batchRelations struct {
	tags     map[string]string
	sales    map[string]string
	segments map[string]string
}

func (r *EntityResolver) resolveBatch(ctx context.Context, rows []ValidRow) (batchRelations, error) {
	var tagNames, salesNames, segmentNames []string
	for _, row := range rows {
		tagNames = append(tagNames, ParseTagNames(row.Input.Tags)...)
		if v := strings.TrimSpace(row.Input.AccountManager); v != "" && !isIntegerID(v) {
			salesNames = append(salesNames, v)
		}
		if v := strings.TrimSpace(row.Input.Segment); v != "" && !isSegmentID(v) {
			segmentNames = append(segmentNames, v)
		}
	}

	var rel batchRelations
	var err error
	if rel.tags, err = r.resolve(ctx, tagKind, tagNames); err != nil {
		return batchRelations{}, err
	}
	if rel.sales, err = r.resolve(ctx, salesKind, salesNames); err != nil {
		return batchRelations{}, err
	}
	if rel.segments, err = r.resolve(ctx, segmentKind, segmentNames); err != nil {
		return batchRelations{}, err
	}
	return rel, nil
}

func isSegmentID(v string) bool {
	_, err := uuid.Parse(v)
	return err == nil
}

func isIntegerID(v string) bool {
	_, err := strconv.ParseInt(v, 10, 64)
	return err == nil
}

// organizationData builds the create payload for a validated row using the
// relations resolved for its batch. Unresolved relations are left out.
func organizationData(input OrganizationInput, rel batchRelations) domain.Record {
	data := domain.Record{"name": input.Name}

	optional := map[string]string{
		"organization_type": input.OrganizationType,
		"priority":          input.Priority,
		"phone":             input.Phone,
		"email":             input.Email,
		"website":           input.Website,
		"linkedin_url":      input.LinkedInURL,
		"address":           input.Address,
		"city":              input.City,
		"state":             input.State,
		"postal_code":       input.PostalCode,
		"description":       input.Description,
	}
	for key, value := range optional {
		if value != "" {
			data[key] = value
		}
	}

	if v := strings.TrimSpace(input.AccountManager); v != "" {
		if isIntegerID(v) {
			id, _ := strconv.ParseInt(v, 10, 64)
			data["sales_id"] = id
		} else if id, ok := rel.sales[lookupKey(v)]; ok {
			if n, err := strconv.ParseInt(id, 10, 64); err == nil {
				data["sales_id"] = n
			}
		}
	}

	if v := strings.TrimSpace(input.Segment); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			data["segment_id"] = id.String()
		} else if id, ok := rel.segments[lookupKey(v)]; ok {
			data["segment_id"] = id
		}
	}

	var tagIDs []string
	for _, name := range ParseTagNames(input.Tags) {
		if id, ok := rel.tags[lookupKey(name)]; ok {
			tagIDs = append(tagIDs, id)
		}
	}
	if len(tagIDs) > 0 {
		data["tags"] = dedupeStrings(tagIDs)
	}

	return data
}

func dedupeStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
