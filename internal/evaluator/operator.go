package evaluator

// Operator is one of the four binary operators on the keypad.
type Operator int

const (
	Add Operator = iota
	Subtract
	Multiply
	Divide
)

func (o Operator) String() string {
	switch o {
	case Add:
		return "add"
	case Subtract:
		return "subtract"
	case Multiply:
		return "multiply"
	case Divide:
		return "divide"
	default:
		return "unknown"
	}
}

// multiplicative reports whether o binds tighter than Add and Subtract.
func (o Operator) multiplicative() bool {
	return o == Multiply || o == Divide
}

// apply folds a and b with o. ok is false only for a division whose divisor
// is zero.
func (o Operator) apply(a, b float64) (result float64, ok bool) {
	switch o {
	case Add:
		return a + b, true
	case Subtract:
		return a - b, true
	case Multiply:
		return a * b, true
	default:
		if b == 0 {
			return 0, false
		}
		return a / b, true
	}
}
