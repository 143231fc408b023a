package types

// Op is a comparison operator in a filter predicate.
type Op string

// Recognized operators.
const (
	OpEq Op = "="
	OpNe Op = "!="
	OpGt Op = ">"
	OpGe Op = ">="
	OpLt Op = "<"
	OpLe Op = "<="
)

var validOps = map[Op]bool{
	OpEq: true, OpNe: true, OpGt: true, OpGe: true, OpLt: true, OpLe: true,
}

// Valid reports whether o is a recognized operator.
func (o Op) Valid() bool {
	return validOps[o]
}

// Filter is one structured predicate. The Store turns filters into
// parametrized queries; values are never interpolated into SQL text.
type Filter struct {
	Field string
	Op    Op
	Value any
}

// Eq builds an equality filter.
func Eq(field string, value any) Filter {
	return Filter{Field: field, Op: OpEq, Value: value}
}

// Query bundles the filter and paging arguments of a Store read. And filters
// are conjoined; Or filters form a single disjunction conjoined with the And
// part. Limit <= 0 means no limit.
type Query struct {
	And    []Filter
	Or     []Filter
	Offset int
	Limit  int
}
