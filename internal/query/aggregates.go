package query

import "fmt"

// Aggregate is an expression attached to the rendered return list via
// Annotate, projected as "expression AS alias".
type Aggregate interface {
	fmt.Stringer

	// InputName is the variable the aggregate reduces over; it doubles
	// as the default alias.
	InputName() string
}

// Collect is the collect() reducer over a named variable.
type Collect struct {
	Input    string
	Distinct bool
}

func (c Collect) String() string {
	if c.Distinct {
		return fmt.Sprintf("collect(DISTINCT %s)", c.Input)
	}
	return fmt.Sprintf("collect(%s)", c.Input)
}

// InputName implements Aggregate.
func (c Collect) InputName() string { return c.Input }

// Last is the last() reducer over a named variable.
type Last struct {
	Input string
}

func (l Last) String() string { return fmt.Sprintf("last(%s)", l.Input) }

// InputName implements Aggregate.
func (l Last) InputName() string { return l.Input }
