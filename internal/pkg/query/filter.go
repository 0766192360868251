package query

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
)

// ErrInvalidFilter is returned for filter documents that cannot be parsed or
// that reference unknown fields.
var ErrInvalidFilter = errors.New("invalid filter")

// Operator is a LoopBack-style comparison operator.
type Operator string

const (
	OpEq   Operator = "eq"
	OpNeq  Operator = "neq"
	OpGt   Operator = "gt"
	OpGte  Operator = "gte"
	OpLt   Operator = "lt"
	OpLte  Operator = "lte"
	OpInq  Operator = "inq"
	OpNin  Operator = "nin"
	OpLike Operator = "like"
)

var knownOperators = map[Operator]struct{}{
	OpEq: {}, OpNeq: {}, OpGt: {}, OpGte: {}, OpLt: {}, OpLte: {},
	OpInq: {}, OpNin: {}, OpLike: {},
}

// Predicate compares one document field against a value.
type Predicate struct {
	Field string
	Op    Operator
	Value interface{}
}

// Where is a tree of predicates. Predicates and And are all required to
// hold; when Or is non-empty at least one of its branches must hold too.
type Where struct {
	Predicates []Predicate
	And        []Where
	Or         []Where
}

// IsEmpty reports whether w matches everything.
func (w Where) IsEmpty() bool {
	return len(w.Predicates) == 0 && len(w.And) == 0 && len(w.Or) == 0
}

// With returns a copy of w with preds added.
func (w Where) With(preds ...Predicate) Where {
	return Where{
		Predicates: append(append([]Predicate(nil), w.Predicates...), preds...),
		And:        append([]Where(nil), w.And...),
		Or:         append([]Where(nil), w.Or...),
	}
}

// Order is a single sort key.
type Order struct {
	Field string
	Desc  bool
}

// Filter is a parsed LoopBack filter document.
type Filter struct {
	Where Where
	Order []Order
	Limit int64
	Skip  int64
}

// ParseFilter parses the JSON value of a `filter` query parameter. An empty
// string yields an empty filter. Keys other than where, order, limit, skip
// and offset are ignored.
func ParseFilter(raw string) (*Filter, error) {
	f := &Filter{}
	if strings.TrimSpace(raw) == "" {
		return f, nil
	}

	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}

	if v, ok := doc["where"]; ok && v != nil {
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: where must be an object", ErrInvalidFilter)
		}
		w, err := parseWhere(m)
		if err != nil {
			return nil, err
		}
		f.Where = w
	}

	if v, ok := doc["order"]; ok && v != nil {
		orders, err := parseOrder(v)
		if err != nil {
			return nil, err
		}
		f.Order = orders
	}

	var err error
	if f.Limit, err = parseCount(doc, "limit"); err != nil {
		return nil, err
	}
	if f.Skip, err = parseCount(doc, "skip"); err != nil {
		return nil, err
	}
	if f.Skip == 0 {
		if f.Skip, err = parseCount(doc, "offset"); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// ParseWhere parses the JSON value of a `where` query parameter.
func ParseWhere(raw string) (Where, error) {
	if strings.TrimSpace(raw) == "" {
		return Where{}, nil
	}
	var m map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return Where{}, fmt.Errorf("%w: %v", ErrInvalidFilter, err)
	}
	return parseWhere(m)
}

func parseWhere(m map[string]interface{}) (Where, error) {
	var w Where
	for _, key := range sortedKeys(m) {
		val := m[key]
		switch key {
		case "and", "or":
			items, ok := val.([]interface{})
			if !ok {
				return Where{}, fmt.Errorf("%w: %s must be an array", ErrInvalidFilter, key)
			}
			for _, item := range items {
				sub, ok := item.(map[string]interface{})
				if !ok {
					return Where{}, fmt.Errorf("%w: %s items must be objects", ErrInvalidFilter, key)
				}
				branch, err := parseWhere(sub)
				if err != nil {
					return Where{}, err
				}
				if key == "and" {
					w.And = append(w.And, branch)
				} else {
					w.Or = append(w.Or, branch)
				}
			}
		default:
			ops, isOps := val.(map[string]interface{})
			if !isOps {
				w.Predicates = append(w.Predicates, Predicate{Field: key, Op: OpEq, Value: val})
				continue
			}
			if len(ops) == 0 {
				return Where{}, fmt.Errorf("%w: empty condition for %q", ErrInvalidFilter, key)
			}
			for _, op := range sortedKeys(ops) {
				if _, ok := knownOperators[Operator(op)]; !ok {
					return Where{}, fmt.Errorf("%w: unsupported operator %q", ErrInvalidFilter, op)
				}
				w.Predicates = append(w.Predicates, Predicate{Field: key, Op: Operator(op), Value: ops[op]})
			}
		}
	}
	return w, nil
}

func parseOrder(v interface{}) ([]Order, error) {
	var clauses []string
	switch t := v.(type) {
	case string:
		clauses = []string{t}
	case []interface{}:
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: order entries must be strings", ErrInvalidFilter)
			}
			clauses = append(clauses, s)
		}
	default:
		return nil, fmt.Errorf("%w: order must be a string or an array", ErrInvalidFilter)
	}

	orders := make([]Order, 0, len(clauses))
	for _, clause := range clauses {
		parts := strings.Fields(clause)
		if len(parts) == 0 || len(parts) > 2 {
			return nil, fmt.Errorf("%w: bad order %q", ErrInvalidFilter, clause)
		}
		o := Order{Field: parts[0]}
		if len(parts) == 2 {
			switch strings.ToUpper(parts[1]) {
			case "ASC":
			case "DESC":
				o.Desc = true
			default:
				return nil, fmt.Errorf("%w: bad order direction %q", ErrInvalidFilter, parts[1])
			}
		}
		orders = append(orders, o)
	}
	return orders, nil
}

func parseCount(doc map[string]interface{}, key string) (int64, error) {
	v, ok := doc[key]
	if !ok || v == nil {
		return 0, nil
	}
	n, ok := v.(float64)
	if !ok || n < 0 || n != math.Trunc(n) || n > math.MaxInt64 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", ErrInvalidFilter, key)
	}
	return int64(n), nil
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Accessor returns a document's value for a filterable field, or nil when
// the field is unset.
type Accessor func(field string) interface{}

// Match evaluates w against a document. w should be normalized first.
func (w Where) Match(get Accessor) bool {
	for _, p := range w.Predicates {
		if !p.Match(get) {
			return false
		}
	}
	for _, sub := range w.And {
		if !sub.Match(get) {
			return false
		}
	}
	if len(w.Or) == 0 {
		return true
	}
	for _, sub := range w.Or {
		if sub.Match(get) {
			return true
		}
	}
	return false
}

// Match evaluates a single predicate with SQL NULL semantics: an unset
// field only satisfies `eq null`.
func (p Predicate) Match(get Accessor) bool {
	actual := get(p.Field)
	switch p.Op {
	case OpEq:
		if p.Value == nil {
			return actual == nil
		}
	case OpNeq:
		if p.Value == nil {
			return actual != nil
		}
	}
	if actual == nil {
		return false
	}

	switch p.Op {
	case OpInq, OpNin:
		found := false
		for _, v := range listValues(p.Value) {
			if c, ok := Compare(actual, v); ok && c == 0 {
				found = true
				break
			}
		}
		return found == (p.Op == OpInq)
	case OpLike:
		s, ok1 := actual.(string)
		pattern, ok2 := p.Value.(string)
		return ok1 && ok2 && likeRegexp(pattern).MatchString(s)
	}

	c, ok := Compare(actual, p.Value)
	if !ok {
		return false
	}
	switch p.Op {
	case OpEq:
		return c == 0
	case OpNeq:
		return c != 0
	case OpGt:
		return c > 0
	case OpGte:
		return c >= 0
	case OpLt:
		return c < 0
	case OpLte:
		return c <= 0
	}
	return false
}

// Compare orders two scalar values of the same kind. ok is false when the
// values are not comparable.
func Compare(a, b interface{}) (int, bool) {
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(av, bv), true
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case av == bv:
			return 0, true
		case !av:
			return -1, true
		default:
			return 1, true
		}
	}
	af, ok1 := toFloat(a)
	bf, ok2 := toFloat(b)
	if !ok1 || !ok2 {
		return 0, false
	}
	switch {
	case af < bf:
		return -1, true
	case af > bf:
		return 1, true
	}
	return 0, true
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	}
	return 0, false
}

func listValues(v interface{}) []interface{} {
	switch t := v.(type) {
	case []interface{}:
		return t
	case []string:
		out := make([]interface{}, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	case []bool:
		out := make([]interface{}, len(t))
		for i, b := range t {
			out[i] = b
		}
		return out
	}
	return nil
}

// likeRegexp translates a SQL LIKE pattern (% and _ wildcards, backslash
// escape) into an anchored regular expression.
func likeRegexp(pattern string) *regexp.Regexp {
	var sb strings.Builder
	sb.WriteString("(?s)^")
	escaped := false
	for _, r := range pattern {
		switch {
		case escaped:
			sb.WriteString(regexp.QuoteMeta(string(r)))
			escaped = false
		case r == '\\':
			escaped = true
		case r == '%':
			sb.WriteString(".*")
		case r == '_':
			sb.WriteString(".")
		default:
			sb.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	sb.WriteString("$")
	return regexp.MustCompile(sb.String())
}
