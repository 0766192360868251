package query

import (
	"fmt"
	"math"
	"strings"

	"cloud.google.com/go/spanner"
)

// Direction represents ORDER BY direction.
type Direction int

const (
	Asc Direction = iota
	Desc
)

type ordering struct {
	column string
	dir    Direction
}

// Builder constructs Spanner SELECT statements. Every method returns a new
// Builder; the receiver is never modified.
type Builder struct {
	table      string
	selectCols []string
	conditions []Condition
	orderings  []ordering
	limitVal   int64
	offsetVal  int64
}

// From creates a new Builder for the specified table.
func From(table string) *Builder {
	return &Builder{table: table}
}

// Select appends columns to the projection.
func (b *Builder) Select(columns ...string) *Builder {
	nb := b.clone()
	nb.selectCols = append(nb.selectCols, columns...)
	return nb
}

// Where adds conditions. All conditions are combined with AND.
func (b *Builder) Where(conds ...Condition) *Builder {
	nb := b.clone()
	nb.conditions = append(nb.conditions, conds...)
	return nb
}

// OrderBy appends a sort key. Earlier keys take precedence.
func (b *Builder) OrderBy(column string, direction Direction) *Builder {
	nb := b.clone()
	nb.orderings = append(nb.orderings, ordering{column: column, dir: direction})
	return nb
}

// Limit sets the maximum number of rows to return. Zero means no limit.
func (b *Builder) Limit(limit int64) *Builder {
	nb := b.clone()
	nb.limitVal = limit
	return nb
}

// Offset sets the number of rows to skip.
func (b *Builder) Offset(offset int64) *Builder {
	nb := b.clone()
	nb.offsetVal = offset
	return nb
}

// Count returns a builder for SELECT COUNT(*) with the same FROM and WHERE.
// Ordering and pagination are dropped.
func (b *Builder) Count() *Builder {
	nb := b.clone()
	nb.selectCols = []string{"COUNT(*)"}
	nb.orderings = nil
	nb.limitVal = 0
	nb.offsetVal = 0
	return nb
}

// Build constructs the final spanner.Statement.
func (b *Builder) Build() spanner.Statement {
	var sql strings.Builder
	params := make(map[string]interface{})

	sql.WriteString("SELECT ")
	if len(b.selectCols) == 0 {
		sql.WriteString("*")
	} else {
		sql.WriteString(strings.Join(b.selectCols, ", "))
	}
	sql.WriteString(" FROM ")
	sql.WriteString(b.table)

	if len(b.conditions) > 0 {
		parts := make([]string, 0, len(b.conditions))
		paramIndex := 0
		for _, c := range b.conditions {
			fragment, p := c.SQL(paramIndex)
			parts = append(parts, fragment)
			for k, v := range p {
				params[k] = v
			}
			paramIndex += len(p)
		}
		sql.WriteString(" WHERE ")
		sql.WriteString(strings.Join(parts, " AND "))
	}

	if len(b.orderings) > 0 {
		parts := make([]string, 0, len(b.orderings))
		for _, o := range b.orderings {
			dir := "ASC"
			if o.dir == Desc {
				dir = "DESC"
			}
			parts = append(parts, o.column+" "+dir)
		}
		sql.WriteString(" ORDER BY ")
		sql.WriteString(strings.Join(parts, ", "))
	}

	// Spanner only accepts OFFSET after LIMIT.
	limit := b.limitVal
	if limit <= 0 && b.offsetVal > 0 {
		limit = math.MaxInt64
	}
	if limit > 0 {
		sql.WriteString(" LIMIT @limit")
		params["limit"] = limit
	}
	if b.offsetVal > 0 {
		sql.WriteString(" OFFSET @offset")
		params["offset"] = b.offsetVal
	}

	return spanner.Statement{SQL: sql.String(), Params: params}
}

func (b *Builder) clone() *Builder {
	return &Builder{
		table:      b.table,
		selectCols: append([]string(nil), b.selectCols...),
		conditions: append([]Condition(nil), b.conditions...),
		orderings:  append([]ordering(nil), b.orderings...),
		limitVal:   b.limitVal,
		offsetVal:  b.offsetVal,
	}
}

// String returns a human-readable representation for debugging.
func (b *Builder) String() string {
	stmt := b.Build()
	return fmt.Sprintf("SQL: %s\nParams: %v", stmt.SQL, stmt.Params)
}
