package orgimport

import (
	"regexp"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Field is a canonical organization attribute a CSV column can map to.
// The zero value means the column is not imported.
type Field string

const (
	FieldName             Field = "name"
	FieldOrganizationType Field = "organization_type"
	FieldPriority         Field = "priority"
	FieldPhone            Field = "phone"
	FieldEmail            Field = "email"
	FieldWebsite          Field = "website"
	FieldLinkedInURL      Field = "linkedin_url"
	FieldAddress          Field = "address"
	FieldCity             Field = "city"
	FieldState            Field = "state"
	FieldPostalCode       Field = "postal_code"
	FieldDescription      Field = "description"
	FieldTags             Field = "tags"
	FieldSalesID          Field = "sales_id"
	FieldSegmentID        Field = "segment_id"
)

type fieldAliases struct {
	field   Field
	label   string
	aliases []string
}

// Order matters: when two fields register the same normalized alias the
// earlier registration keeps it.
var columnAliases = []fieldAliases{
	{FieldName, "Organization Name", []string{
		"name", "organization name", "organization names", "organization", "organizations",
		"organisation", "organisations", "org name", "org_name", "org", "company", "companies",
		"company name", "companyname", "business", "business name", "client name", "account name",
		"account", "accounts", "organization_name", "company_name",
	}},
	{FieldOrganizationType, "Organization Type", []string{
		"organization type", "organization_type", "org type", "type", "company type",
		"account type", "category",
	}},
	{FieldPriority, "Priority", []string{
		"priority", "priority level", "priority-level", "priority focus", "priority-focus",
		"priority-focus a-highest", "tier", "rank",
	}},
	{FieldPhone, "Phone", []string{
		"phone", "phone number", "phone_number", "telephone", "main phone", "office phone",
		"tel", "phone #",
	}},
	{FieldEmail, "Email", []string{
		"email", "email address", "e-mail", "e-mail address", "contact email", "company email",
	}},
	{FieldWebsite, "Website", []string{
		"website", "web site", "url", "web", "homepage", "home page", "site", "company website",
		"website url",
	}},
	{FieldLinkedInURL, "LinkedIn URL", []string{
		"linkedin", "linkedin url", "linkedin_url", "linkedin profile", "linkedin page",
	}},
	{FieldAddress, "Street Address", []string{
		"address", "street", "street address", "address line 1", "address1", "mailing address",
	}},
	{FieldCity, "City", []string{
		"city", "town",
	}},
	{FieldState, "State", []string{
		"state", "province", "region", "state/province", "st",
	}},
	{FieldPostalCode, "Postal Code", []string{
		"postal code", "postal_code", "zip", "zip code", "zipcode", "zip_code", "postcode",
	}},
	{FieldDescription, "Description", []string{
		"description", "notes", "note", "about", "company description", "comments",
	}},
	{FieldTags, "Tags", []string{
		"tags", "tag", "labels", "label",
	}},
	{FieldSalesID, "Account Manager", []string{
		"account manager", "account_manager", "sales", "sales rep", "sales_id", "owner",
		"account owner", "assigned to", "rep", "manager",
	}},
	{FieldSegmentID, "Segment", []string{
		"segment", "segment_id", "market segment", "industry", "vertical",
	}},
}

var (
	aliasIndex  map[string]Field
	aliasKeys   []string
	fieldLabels map[Field]string

	parentheticalPattern = regexp.MustCompile(`\([^)]*\)`)
	headerJunkPattern    = regexp.MustCompile(`[^a-z0-9\s_-]`)
	whitespacePattern    = regexp.MustCompile(`\s+`)
)

func init() {
	aliasIndex = make(map[string]Field)
	fieldLabels = make(map[Field]string, len(columnAliases))
	for _, entry := range columnAliases {
		fieldLabels[entry.field] = entry.label
		for _, alias := range entry.aliases {
			key := NormalizeHeader(alias)
			if key == "" {
				continue
			}
			if _, taken := aliasIndex[key]; taken {
				continue
			}
			aliasIndex[key] = entry.field
			aliasKeys = append(aliasKeys, key)
		}
	}
}

// NormalizeHeader lowercases a header, drops parenthetical notes such as
// "(A-D)", turns punctuation into spaces and collapses whitespace.
func NormalizeHeader(header string) string {
	if header == "" {
		return ""
	}
	out := strings.ToLower(header)
	out = parentheticalPattern.ReplaceAllString(out, " ")
	out = headerJunkPattern.ReplaceAllString(out, " ")
	out = whitespacePattern.ReplaceAllString(out, " ")
	return strings.TrimSpace(out)
}

func FindCanonicalField(header string) (Field, bool) {
	key := NormalizeHeader(header)
	if key == "" {
		return "", false
	}
	field, ok := aliasIndex[key]
	return field, ok
}

// MapHeadersToFields resolves every non-blank header. Unmatched headers map
// to the zero Field.
func MapHeadersToFields(headers []string) map[string]Field {
	out := make(map[string]Field, len(headers))
	for _, header := range headers {
		if strings.TrimSpace(header) == "" {
			continue
		}
		field, _ := FindCanonicalField(header)
		out[header] = field
	}
	return out
}

type FieldInfo struct {
	Field   Field    `json:"field"`
	Label   string   `json:"label"`
	Aliases []string `json:"aliases"`
}

func AvailableFields() []FieldInfo {
	out := make([]FieldInfo, 0, len(columnAliases))
	for _, entry := range columnAliases {
		aliases := make([]string, len(entry.aliases))
		copy(aliases, entry.aliases)
		out = append(out, FieldInfo{Field: entry.field, Label: entry.label, Aliases: aliases})
	}
	return out
}

func FieldLabel(field Field) string {
	return fieldLabels[field]
}

func IsKnownField(field Field) bool {
	_, ok := fieldLabels[field]
	return ok
}

const maxSuggestions = 3

// SuggestFields ranks canonical fields whose aliases loosely match an
// unresolved header. Suggestions are hints only and never change a mapping.
func SuggestFields(header string) []Field {
	key := NormalizeHeader(header)
	if key == "" {
		return nil
	}
	if _, exact := aliasIndex[key]; exact {
		return nil
	}

	ranks := fuzzy.RankFindNormalizedFold(key, aliasKeys)
	for _, alias := range aliasKeys {
		if len(alias) >= 3 && fuzzy.MatchNormalizedFold(alias, key) {
			ranks = append(ranks, fuzzy.Rank{
				Source:   alias,
				Target:   alias,
				Distance: fuzzy.LevenshteinDistance(alias, key),
			})
		}
	}
	sort.Stable(ranks)

	seen := make(map[Field]struct{}, maxSuggestions)
	out := make([]Field, 0, maxSuggestions)
	for _, rank := range ranks {
		field := aliasIndex[rank.Target]
		if _, dup := seen[field]; dup {
			continue
		}
		seen[field] = struct{}{}
		out = append(out, field)
		if len(out) == maxSuggestions {
			break
		}
	}
	return out
}
