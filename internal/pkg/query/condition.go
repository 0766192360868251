package query

import (
	"fmt"
	"strings"
)

// Condition renders one WHERE fragment. paramIndex is the first free
// parameter index; implementations must name their parameters p{index},
// p{index+1}, ... and return exactly as many params as they consumed.
type Condition interface {
	SQL(paramIndex int) (string, map[string]interface{})
}

type compareCondition struct {
	column string
	op     string
	value  interface{}
}

func (c compareCondition) SQL(paramIndex int) (string, map[string]interface{}) {
	name := fmt.Sprintf("p%d", paramIndex)
	return fmt.Sprintf("%s %s @%s", c.column, c.op, name), map[string]interface{}{name: c.value}
}

// Eq creates an equality condition: column = value.
func Eq(column string, value interface{}) Condition {
	return compareCondition{column: column, op: "=", value: value}
}

// Neq creates an inequality condition: column != value.
func Neq(column string, value interface{}) Condition {
	return compareCondition{column: column, op: "!=", value: value}
}

// Gt creates column > value.
func Gt(column string, value interface{}) Condition {
	return compareCondition{column: column, op: ">", value: value}
}

// Gte creates column >= value.
func Gte(column string, value interface{}) Condition {
	return compareCondition{column: column, op: ">=", value: value}
}

// Lt creates column < value.
func Lt(column string, value interface{}) Condition {
	return compareCondition{column: column, op: "<", value: value}
}

// Lte creates column <= value.
func Lte(column string, value interface{}) Condition {
	return compareCondition{column: column, op: "<=", value: value}
}

// Like creates column LIKE pattern.
func Like(column string, pattern string) Condition {
	return compareCondition{column: column, op: "LIKE", value: pattern}
}

type inCondition struct {
	column string
	negate bool
	values interface{}
}

func (c inCondition) SQL(paramIndex int) (string, map[string]interface{}) {
	name := fmt.Sprintf("p%d", paramIndex)
	op := "IN"
	if c.negate {
		op = "NOT IN"
	}
	return fmt.Sprintf("%s %s UNNEST(@%s)", c.column, op, name), map[string]interface{}{name: c.values}
}

// In creates column IN UNNEST(values). values must be a typed slice
// ([]string, []bool, []int64, []float64) so Spanner can bind it.
func In(column string, values interface{}) Condition {
	return inCondition{column: column, values: values}
}

// NotIn creates column NOT IN UNNEST(values).
func NotIn(column string, values interface{}) Condition {
	return inCondition{column: column, negate: true, values: values}
}

type nullCondition struct {
	column string
	isNull bool
}

func (c nullCondition) SQL(int) (string, map[string]interface{}) {
	if c.isNull {
		return c.column + " IS NULL", nil
	}
	return c.column + " IS NOT NULL", nil
}

// IsNull creates a NULL check condition.
func IsNull(column string) Condition {
	return nullCondition{column: column, isNull: true}
}

// IsNotNull creates a NOT NULL check condition.
func IsNotNull(column string) Condition {
	return nullCondition{column: column}
}

type groupCondition struct {
	joiner string
	conds  []Condition
}

func (g groupCondition) SQL(paramIndex int) (string, map[string]interface{}) {
	params := make(map[string]interface{})
	parts := make([]string, 0, len(g.conds))
	for _, c := range g.conds {
		fragment, p := c.SQL(paramIndex)
		for k, v := range p {
			params[k] = v
		}
		paramIndex += len(p)
		parts = append(parts, fragment)
	}
	switch len(parts) {
	case 0:
		// An empty AND is true, an empty OR is false.
		if g.joiner == " OR " {
			return "FALSE", params
		}
		return "TRUE", params
	case 1:
		return parts[0], params
	}
	return "(" + strings.Join(parts, g.joiner) + ")", params
}

// And groups conditions with AND.
func And(conds ...Condition) Condition {
	return groupCondition{joiner: " AND ", conds: conds}
}

// Or groups conditions with OR.
func Or(conds ...Condition) Condition {
	return groupCondition{joiner: " OR ", conds: conds}
}
