package dto

import (
	"fmt"
	"maps"
	"reflect"
	"strings"
)

const (
	FilterOperatorEq        = "eq"
	FilterOperatorIn        = "in"
	FilterOperatorNotEq     = "not_eq"
	FilterOperatorLessEq    = "less_eq"
	FilterOperatorGreaterEq = "greater_eq"
	FilterIsNull            = "is_null"
)

const (
	FilterGroupOperatorAnd = "AND"
	FilterGroupOperatorOr  = "OR"
)

var comparisons = map[string]string{
	FilterOperatorEq:        "=",
	FilterOperatorNotEq:     "!=",
	FilterOperatorLessEq:    "<=",
	FilterOperatorGreaterEq: ">=",
}

// Clause renders a parenthesis-safe SQL condition with sqlx named arguments.
// An empty condition means "no constraint" and is dropped by the enclosing group.
type Clause interface {
	GetWhereClause() (string, map[string]any)
}

type Filter struct {
	ArgName  string
	Field    string
	Value    any
	Operator string `validate:"required,oneof=eq in not_eq less_eq greater_eq is_null"`
	Table    string
}

func (f Filter) column() string {
	if f.Table == "" {
		return f.Field
	}

	return f.Table + "." + f.Field
}

func (f Filter) arg() string {
	if f.ArgName != "" {
		return f.ArgName
	}

	return f.Field
}

func (f Filter) GetWhereClause() (string, map[string]any) {
	args := map[string]any{}

	if op, ok := comparisons[f.Operator]; ok {
		args[f.arg()] = f.Value

		return fmt.Sprintf("%s %s :%s", f.column(), op, f.arg()), args
	}

	switch f.Operator {
	case FilterOperatorIn:
		val := reflect.ValueOf(f.Value)
		if val.Kind() != reflect.Slice && val.Kind() != reflect.Array {
			val = reflect.ValueOf([]any{f.Value})
		}

		// IN () is a syntax error; an empty set matches nothing.
		if val.Len() == 0 {
			return "FALSE", args
		}

		named := make([]string, val.Len())

		for idx := range val.Len() {
			name := fmt.Sprintf("%s_%d", f.arg(), idx)
			args[name] = val.Index(idx).Interface()
			named[idx] = ":" + name
		}

		return fmt.Sprintf("%s IN (%s)", f.column(), strings.Join(named, ", ")), args
	case FilterIsNull:
		return f.column() + " IS NULL", args
	default:
		return "", args
	}
}

type FilterGroup struct {
	Filters  []Clause
	Operator string
}

func (f FilterGroup) GetWhereClause() (string, map[string]any) {
	args := map[string]any{}
	parts := make([]string, 0, len(f.Filters))

	for _, filter := range f.Filters {
		if filter == nil {
			continue
		}

		where, arg := filter.GetWhereClause()
		if where == "" {
			continue
		}

		parts = append(parts, where)

		maps.Copy(args, arg)
	}

	if len(parts) == 0 {
		return "", args
	}

	operator := f.Operator
	if operator == "" {
		operator = FilterGroupOperatorAnd
	}

	return "(" + strings.Join(parts, " "+operator+" ") + ")", args
}
