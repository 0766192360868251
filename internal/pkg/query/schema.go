package query

import "fmt"

// Kind is the storage type of a filterable field.
type Kind int

const (
	KindString Kind = iota
	KindBool
)

// Field maps a public document field onto its column.
type Field struct {
	Column string
	Kind   Kind
}

// Schema lists the fields a collection can be filtered and ordered by.
type Schema map[string]Field

// Normalize checks every predicate against the schema and coerces values to
// the field's kind. Lists for inq/nin become typed slices.
func (s Schema) Normalize(w Where) (Where, error) {
	out := Where{}
	for _, p := range w.Predicates {
		np, err := s.normalizePredicate(p)
		if err != nil {
			return Where{}, err
		}
		out.Predicates = append(out.Predicates, np)
	}
	for _, sub := range w.And {
		nw, err := s.Normalize(sub)
		if err != nil {
			return Where{}, err
		}
		out.And = append(out.And, nw)
	}
	for _, sub := range w.Or {
		nw, err := s.Normalize(sub)
		if err != nil {
			return Where{}, err
		}
		out.Or = append(out.Or, nw)
	}
	return out, nil
}

// CheckOrder rejects sort keys on unknown fields.
func (s Schema) CheckOrder(orders []Order) error {
	for _, o := range orders {
		if _, ok := s[o.Field]; !ok {
			return fmt.Errorf("%w: cannot order by %q", ErrInvalidFilter, o.Field)
		}
	}
	return nil
}

// Conditions normalizes w and renders it as builder conditions.
func (s Schema) Conditions(w Where) ([]Condition, error) {
	nw, err := s.Normalize(w)
	if err != nil {
		return nil, err
	}
	if nw.IsEmpty() {
		return nil, nil
	}
	return []Condition{s.condition(nw)}, nil
}

// Apply adds the filter's where, order and pagination to b.
func (s Schema) Apply(b *Builder, f *Filter) (*Builder, error) {
	if f == nil {
		return b, nil
	}
	conds, err := s.Conditions(f.Where)
	if err != nil {
		return nil, err
	}
	if err := s.CheckOrder(f.Order); err != nil {
		return nil, err
	}
	b = b.Where(conds...)
	for _, o := range f.Order {
		dir := Asc
		if o.Desc {
			dir = Desc
		}
		b = b.OrderBy(s[o.Field].Column, dir)
	}
	if f.Limit > 0 {
		b = b.Limit(f.Limit)
	}
	if f.Skip > 0 {
		b = b.Offset(f.Skip)
	}
	return b, nil
}

func (s Schema) condition(w Where) Condition {
	parts := make([]Condition, 0, len(w.Predicates)+len(w.And)+1)
	for _, p := range w.Predicates {
		parts = append(parts, s.predicateCondition(p))
	}
	for _, sub := range w.And {
		parts = append(parts, s.condition(sub))
	}
	if len(w.Or) > 0 {
		branches := make([]Condition, 0, len(w.Or))
		for _, sub := range w.Or {
			branches = append(branches, s.condition(sub))
		}
		parts = append(parts, Or(branches...))
	}
	return And(parts...)
}

func (s Schema) predicateCondition(p Predicate) Condition {
	col := s[p.Field].Column
	switch p.Op {
	case OpEq:
		if p.Value == nil {
			return IsNull(col)
		}
		return Eq(col, p.Value)
	case OpNeq:
		if p.Value == nil {
			return IsNotNull(col)
		}
		return Neq(col, p.Value)
	case OpGt:
		return Gt(col, p.Value)
	case OpGte:
		return Gte(col, p.Value)
	case OpLt:
		return Lt(col, p.Value)
	case OpLte:
		return Lte(col, p.Value)
	case OpInq:
		return In(col, p.Value)
	case OpNin:
		return NotIn(col, p.Value)
	case OpLike:
		return Like(col, p.Value.(string))
	}
	return Eq(col, p.Value)
}

func (s Schema) normalizePredicate(p Predicate) (Predicate, error) {
	f, ok := s[p.Field]
	if !ok {
		return Predicate{}, fmt.Errorf("%w: unknown field %q", ErrInvalidFilter, p.Field)
	}

	switch p.Op {
	case OpInq, OpNin:
		items := listValues(p.Value)
		if items == nil {
			return Predicate{}, fmt.Errorf("%w: %s on %q needs an array", ErrInvalidFilter, p.Op, p.Field)
		}
		list, err := typedList(f.Kind, p.Field, items)
		if err != nil {
			return Predicate{}, err
		}
		p.Value = list
		return p, nil
	case OpLike:
		if f.Kind != KindString {
			return Predicate{}, fmt.Errorf("%w: like is only valid on text fields", ErrInvalidFilter)
		}
		if _, ok := p.Value.(string); !ok {
			return Predicate{}, fmt.Errorf("%w: like on %q needs a string pattern", ErrInvalidFilter, p.Field)
		}
		return p, nil
	case OpEq, OpNeq:
		if p.Value == nil {
			return p, nil
		}
	}

	v, err := coerce(f.Kind, p.Field, p.Value)
	if err != nil {
		return Predicate{}, err
	}
	p.Value = v
	return p, nil
}

func typedList(kind Kind, field string, items []interface{}) (interface{}, error) {
	switch kind {
	case KindBool:
		out := make([]bool, 0, len(items))
		for _, it := range items {
			v, err := coerce(kind, field, it)
			if err != nil {
				return nil, err
			}
			out = append(out, v.(bool))
		}
		return out, nil
	default:
		out := make([]string, 0, len(items))
		for _, it := range items {
			v, err := coerce(kind, field, it)
			if err != nil {
				return nil, err
			}
			out = append(out, v.(string))
		}
		return out, nil
	}
}

func coerce(kind Kind, field string, v interface{}) (interface{}, error) {
	switch kind {
	case KindBool:
		switch t := v.(type) {
		case bool:
			return t, nil
		case string:
			switch t {
			case "true":
				return true, nil
			case "false":
				return false, nil
			}
		}
		return nil, fmt.Errorf("%w: %q expects a boolean", ErrInvalidFilter, field)
	default:
		if s, ok := v.(string); ok {
			return s, nil
		}
		return nil, fmt.Errorf("%w: %q expects a string", ErrInvalidFilter, field)
	}
}
