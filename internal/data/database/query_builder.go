// Package database builds parameterized list/count queries for the pgx
// repositories. Identifiers are quoted through pgx.Identifier; values always
// travel as positional parameters.
package database

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
)

// ConditionType is the comparison operator of a WHERE condition.
type ConditionType string

const (
	Equal    ConditionType = "="
	NotEqual ConditionType = "!="
	ILike    ConditionType = "ILIKE"
	In       ConditionType = "IN"
	Custom   ConditionType = "CUSTOM"
)

// unset marks limit/offset values the caller never provided, so that an
// explicit zero still renders a clause.
const unset = -1

// Condition is one WHERE predicate. Custom conditions carry their own SQL
// fragment with $n placeholders; everything else is built from Field and Type.
type Condition struct {
	Field    string
	Type     ConditionType
	Value    any
	rawQuery *string
}

// WhereCond builds a field comparison condition.
func WhereCond(field string, condType ConditionType, value any) Condition {
	if condType == Custom {
		//nolint:forbidigo // panic prevents misuse; custom conditions must provide raw SQL via WhereRawCond.
		panic("Use WhereRawCond for Custom type")
	}
	return Condition{Field: field, Type: condType, Value: value}
}

// WhereRawCond builds a condition from a raw SQL fragment. Placeholders in
// the fragment are renumbered when the query is assembled, so fragments can
// always start at $1. The fragment itself is trusted and never sanitized.
func WhereRawCond(rawQuery string, params ...any) Condition {
	var value any
	switch len(params) {
	case 0:
		value = nil
	case 1:
		value = params[0]
	default:
		value = params
	}
	return Condition{Type: Custom, rawQuery: &rawQuery, Value: value}
}

// ListQueryOptions describes a list or count query over a single table.
type ListQueryOptions struct {
	Table      string
	Columns    []string
	CountOnly  bool
	Conditions []Condition
	OrderBy    string
	OrderDir   string
	Limit      int
	Offset     int
}

// ListQueryOption mutates ListQueryOptions during construction.
type ListQueryOption func(*ListQueryOptions)

// NewListQueryOptions builds options for the given table.
func NewListQueryOptions(table string, opts ...ListQueryOption) *ListQueryOptions {
	options := &ListQueryOptions{
		Table:  table,
		Limit:  unset,
		Offset: unset,
	}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// WithColumns sets the columns to select. Columns are identifiers, not
// expressions; each one is quoted.
func WithColumns(cols ...string) ListQueryOption {
	return func(o *ListQueryOptions) {
		o.Columns = cols
	}
}

// WithCondition appends one WHERE condition. Conditions combine with AND.
func WithCondition(cond Condition) ListQueryOption {
	return func(o *ListQueryOptions) {
		o.Conditions = append(o.Conditions, cond)
	}
}

// WithOrderBy sets the ordering column and direction.
func WithOrderBy(column, direction string) ListQueryOption {
	return func(o *ListQueryOptions) {
		o.OrderBy = column
		o.OrderDir = direction
	}
}

// WithLimit sets the limit. Zero is a valid explicit limit.
func WithLimit(limit int) ListQueryOption {
	return func(o *ListQueryOptions) {
		if limit >= 0 {
			o.Limit = limit
		}
	}
}

// WithOffset sets the offset. Zero is a valid explicit offset.
func WithOffset(offset int) ListQueryOption {
	return func(o *ListQueryOptions) {
		if offset >= 0 {
			o.Offset = offset
		}
	}
}

// WithCountOnly switches the query to SELECT COUNT(*); ordering and
// pagination are skipped.
func WithCountOnly() ListQueryOption {
	return func(o *ListQueryOptions) {
		o.CountOnly = true
	}
}

// BuildListQuery assembles the SQL string and its argument list.
func BuildListQuery(options *ListQueryOptions) (string, []any) {
	if options == nil {
		return "", nil
	}

	var query strings.Builder
	query.WriteString(selectClause(options))
	query.WriteString("FROM ")
	query.WriteString(quoteIdent(options.Table))

	whereClause, args, nextParam := buildWhereClause(options.Conditions, 1)
	if whereClause != "" {
		query.WriteString(" ")
		query.WriteString(whereClause)
	}

	if options.CountOnly {
		return query.String(), args
	}

	if options.OrderBy != "" {
		query.WriteString(" ORDER BY ")
		query.WriteString(quoteIdent(options.OrderBy))
		if dir := strings.ToUpper(options.OrderDir); dir == "ASC" || dir == "DESC" {
			query.WriteString(" ")
			query.WriteString(dir)
		}
	}
	if options.Limit != unset {
		query.WriteString(fmt.Sprintf(" LIMIT $%d", nextParam))
		args = append(args, options.Limit)
		nextParam++
	}
	if options.Offset != unset {
		query.WriteString(fmt.Sprintf(" OFFSET $%d", nextParam))
		args = append(args, options.Offset)
	}

	return query.String(), args
}

func selectClause(options *ListQueryOptions) string {
	if options.CountOnly {
		return "SELECT COUNT(*) "
	}
	if len(options.Columns) == 0 {
		return "SELECT * "
	}
	quoted := make([]string, len(options.Columns))
	for i, col := range options.Columns {
		quoted[i] = quoteIdent(col)
	}
	return fmt.Sprintf("SELECT %s ", strings.Join(quoted, ", "))
}

// quoteIdent quotes an identifier, splitting qualified names like
// "table.column" so each part is quoted separately.
func quoteIdent(ident string) string {
	if strings.Contains(ident, ".") {
		return pgx.Identifier(strings.Split(ident, ".")).Sanitize()
	}
	return pgx.Identifier{ident}.Sanitize()
}

func buildWhereClause(inputConditions []Condition, startParamIndex int) (string, []any, int) {
	predicates := make([]string, 0, len(inputConditions))
	args := []any{}
	paramCount := startParamIndex

	for _, cond := range inputConditions {
		predicate, condArgs, nextParam := buildCondition(cond, paramCount)
		if predicate == "" {
			continue
		}
		predicates = append(predicates, predicate)
		args = append(args, condArgs...)
		paramCount = nextParam
	}

	if len(predicates) == 0 {
		return "", args, paramCount
	}
	return "WHERE " + strings.Join(predicates, " AND "), args, paramCount
}

func buildCondition(cond Condition, paramCount int) (string, []any, int) {
	switch cond.Type {
	case Custom:
		return buildCustomCondition(cond, paramCount)
	case In:
		return buildInCondition(cond, paramCount)
	case Equal, NotEqual, ILike:
		if cond.Field == "" {
			return "", nil, paramCount
		}
		predicate := fmt.Sprintf("%s %s $%d", quoteIdent(cond.Field), cond.Type, paramCount)
		return predicate, []any{cond.Value}, paramCount + 1
	default:
		return "", nil, paramCount
	}
}

// buildInCondition expands a slice value into IN ($n, $n+1, ...). Empty or
// non-slice values drop the condition instead of generating invalid SQL.
func buildInCondition(cond Condition, paramCount int) (string, []any, int) {
	if cond.Field == "" {
		return "", nil, paramCount
	}
	rv := reflect.ValueOf(cond.Value)
	if rv.Kind() != reflect.Slice || rv.Len() == 0 {
		return "", nil, paramCount
	}

	placeholders := make([]string, rv.Len())
	args := make([]any, rv.Len())
	for i := range rv.Len() {
		placeholders[i] = fmt.Sprintf("$%d", paramCount)
		args[i] = rv.Index(i).Interface()
		paramCount++
	}
	predicate := fmt.Sprintf("%s IN (%s)", quoteIdent(cond.Field), strings.Join(placeholders, ", "))
	return predicate, args, paramCount
}

var placeholderRe = regexp.MustCompile(`\$(\d+)`)

// buildCustomCondition renumbers the fragment's $n placeholders to follow the
// parameters already consumed by earlier conditions. A placeholder repeated
// within the fragment binds the same argument once.
func buildCustomCondition(cond Condition, paramCount int) (string, []any, int) {
	if cond.rawQuery == nil || *cond.rawQuery == "" {
		return "", nil, paramCount
	}

	if cond.Value == nil {
		return *cond.rawQuery, []any{}, paramCount
	}

	var params []any
	if slice, ok := cond.Value.([]any); ok {
		params = slice
	} else {
		params = []any{cond.Value}
	}

	args := []any{}
	renumbered := make(map[int]int)
	predicate := placeholderRe.ReplaceAllStringFunc(*cond.rawQuery, func(m string) string {
		n, err := strconv.Atoi(m[1:])
		if err != nil || n < 1 || n > len(params) {
			return m
		}
		if _, seen := renumbered[n]; !seen {
			renumbered[n] = paramCount
			args = append(args, params[n-1])
			paramCount++
		}
		return fmt.Sprintf("$%d", renumbered[n])
	})

	return predicate, args, paramCount
}
