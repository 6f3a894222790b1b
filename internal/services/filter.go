package services

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Predicate is one composed condition applied to the listing store.
type Predicate struct {
	Expr string
	Args []interface{}
}

// filterKind tags how a filter value translates into a predicate.
type filterKind int

const (
	kindSubstring  filterKind = iota // case-insensitive contains
	kindEquality                     // exact match
	kindNumber                       // integer equality
	kindRangeMin                     // integer lower bound
	kindRangeMax                     // integer upper bound
	kindMembership                   // single value or set membership
	kindSuperset                     // row array must contain all requested values
	kindBoolean                      // "true"/true matches true, anything else false
)

type filterRule struct {
	name   string
	column string
	kind   filterKind
}

// listingFilterTable fixes the complete set of recognized listing filters.
// Filter names not in this table are ignored.
var listingFilterTable = []filterRule{
	{"location", "location", kindSubstring},
	{"county", "county", kindSubstring},
	{"estate", "estate", kindSubstring},
	{"landlord_name", "landlord_name", kindSubstring},
	{"property_type", "property_type", kindMembership},
	{"furnishing_status", "furnishing_status", kindEquality},
	{"min_price", "price", kindRangeMin},
	{"max_price", "price", kindRangeMax},
	{"bedrooms", "bedrooms", kindNumber},
	{"bathrooms", "bathrooms", kindNumber},
	{"amenities", "amenities", kindSuperset},
	{"parking", "parking", kindBoolean},
	{"garden", "garden", kindBoolean},
	{"balcony", "balcony", kindBoolean},
	{"own_compound", "own_compound", kindBoolean},
	{"electricity", "electricity", kindBoolean},
	{"internet", "internet", kindBoolean},
}

// BuildListingPredicates translates optional filters and an optional
// free-text query into store predicates. Values arrive as raw JSON values
// or query-parameter strings; absent and empty filters are skipped.
// Non-numeric input for a numeric filter is rejected with ErrInvalidInput
// rather than silently matching nothing.
func BuildListingPredicates(filters map[string]interface{}, freeText string) ([]Predicate, error) {
	var preds []Predicate

	for _, rule := range listingFilterTable {
		value, ok := filters[rule.name]
		if !ok || value == nil {
			continue
		}

		switch rule.kind {
		case kindSubstring:
			s, ok := value.(string)
			if !ok || s == "" {
				continue
			}
			preds = append(preds, Predicate{
				Expr: fmt.Sprintf("LOWER(%s) LIKE LOWER(?)", rule.column),
				Args: []interface{}{"%" + s + "%"},
			})

		case kindEquality:
			s, ok := value.(string)
			if !ok || s == "" {
				continue
			}
			preds = append(preds, Predicate{
				Expr: rule.column + " = ?",
				Args: []interface{}{s},
			})

		case kindNumber, kindRangeMin, kindRangeMax:
			n, present, err := intValue(value)
			if err != nil {
				return nil, fmt.Errorf("filter %q: %w", rule.name, ErrInvalidInput)
			}
			if !present {
				continue
			}
			op := "="
			if rule.kind == kindRangeMin {
				op = ">="
			} else if rule.kind == kindRangeMax {
				op = "<="
			}
			preds = append(preds, Predicate{
				Expr: fmt.Sprintf("%s %s ?", rule.column, op),
				Args: []interface{}{n},
			})

		case kindMembership:
			set := stringSet(value)
			if len(set) == 0 {
				continue
			}
			if len(set) == 1 {
				preds = append(preds, Predicate{
					Expr: rule.column + " = ?",
					Args: []interface{}{set[0]},
				})
			} else {
				preds = append(preds, Predicate{
					Expr: rule.column + " IN ?",
					Args: []interface{}{set},
				})
			}

		case kindSuperset:
			set := stringSet(value)
			if len(set) == 0 {
				continue
			}
			preds = append(preds, Predicate{
				Expr: rule.column + " @> ?",
				Args: []interface{}{pq.StringArray(set)},
			})

		case kindBoolean:
			if s, ok := value.(string); ok && s == "" {
				continue
			}
			want := value == true || value == "true"
			preds = append(preds, Predicate{
				Expr: rule.column + " = ?",
				Args: []interface{}{want},
			})
		}
	}

	if freeText != "" {
		term := "%" + freeText + "%"
		preds = append(preds, Predicate{
			Expr: "(LOWER(title) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?) OR LOWER(location) LIKE LOWER(?) OR LOWER(landlord_name) LIKE LOWER(?))",
			Args: []interface{}{term, term, term, term},
		})
	}

	return preds, nil
}

// intValue extracts an integer from a raw filter value. Returns present ==
// false for empty strings, an error for anything that does not parse as an
// integer.
func intValue(value interface{}) (int64, bool, error) {
	switch v := value.(type) {
	case string:
		if strings.TrimSpace(v) == "" {
			return 0, false, nil
		}
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return 0, false, err
		}
		return n, true, nil
	case float64:
		// JSON numbers decode as float64; reject fractional values.
		if v != float64(int64(v)) {
			return 0, false, fmt.Errorf("not an integer: %v", v)
		}
		return int64(v), true, nil
	case int:
		return int64(v), true, nil
	case int64:
		return v, true, nil
	default:
		return 0, false, fmt.Errorf("not a number: %v", value)
	}
}

// stringSet normalizes a filter value into a set of non-empty strings.
// Accepts a single string (comma-separated values allowed) or a JSON array.
func stringSet(value interface{}) []string {
	var raw []string
	switch v := value.(type) {
	case string:
		raw = strings.Split(v, ",")
	case []string:
		raw = v
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				raw = append(raw, s)
			}
		}
	}

	var out []string
	for _, s := range raw {
		if trimmed := strings.TrimSpace(s); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// Sort and pagination -------------------------------------------------------

const (
	defaultLimit = 20
	maxLimit     = 100
)

// sortColumns whitelists caller-selectable sort fields.
var sortColumns = map[string]string{
	"updated_at": "updated_at",
	"created_at": "created_at",
	"price":      "price",
	"bedrooms":   "bedrooms",
}

// PageOptions carries caller-selected ordering and pagination.
type PageOptions struct {
	SortBy  string
	SortDir string
	Limit   int
	Offset  int
}

// normalize clamps pagination and falls back to most-recently-updated-first
// for unknown sort input.
func (p PageOptions) normalize() PageOptions {
	if p.Limit <= 0 {
		p.Limit = defaultLimit
	}
	if p.Limit > maxLimit {
		p.Limit = maxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	if _, ok := sortColumns[p.SortBy]; !ok {
		p.SortBy = "updated_at"
		p.SortDir = "desc"
	}
	if p.SortDir != "asc" && p.SortDir != "desc" {
		p.SortDir = "desc"
	}
	return p
}

// orderClause renders the normalized sort as a SQL ORDER BY expression.
func (p PageOptions) orderClause() string {
	return sortColumns[p.SortBy] + " " + strings.ToUpper(p.SortDir)
}

// applyPredicates chains predicates onto a gorm query.
func applyPredicates(q *gorm.DB, preds []Predicate) *gorm.DB {
	for _, p := range preds {
		q = q.Where(p.Expr, p.Args...)
	}
	return q
}
