// Package evaluator implements a four-function keypad calculator. Operator
// precedence comes from state transitions alone: multiplication and division
// are folded before a pending addition or subtraction, without an expression
// tree.
//
// An Evaluator is not safe for concurrent use; callers serialize access.
package evaluator

// Evaluator owns the current state and routes every input to it.
type Evaluator struct {
	state state
}

// New returns an Evaluator waiting for its first operand. It displays "0".
func New() *Evaluator {
	return &Evaluator{state: &firstOperand{}}
}

func (e *Evaluator) transitionTo(s state) {
	e.state = s
}

// PressDigit enters d. Values outside 0-9 are ignored.
func (e *Evaluator) PressDigit(d int) {
	if d < 0 || d > 9 {
		return
	}
	e.state.digit('0' + byte(d))
}

func (e *Evaluator) PressDecimalSeparator() { e.state.decimalSeparator() }

func (e *Evaluator) PressBinaryOperator(op Operator) { e.state.binaryOperator(e, op) }

func (e *Evaluator) PressAdd()      { e.PressBinaryOperator(Add) }
func (e *Evaluator) PressSubtract() { e.PressBinaryOperator(Subtract) }
func (e *Evaluator) PressMultiply() { e.PressBinaryOperator(Multiply) }
func (e *Evaluator) PressDivide()   { e.PressBinaryOperator(Divide) }

func (e *Evaluator) PressEquals() { e.state.equals(e) }

// PressClear resets the whole expression. It is the only way out of the
// error state.
func (e *Evaluator) PressClear() { e.state.clear(e) }

// PressSqrt replaces the expression with the square root of its first
// operand, discarding anything pending.
func (e *Evaluator) PressSqrt() { e.state.sqrt(e) }

// Press dispatches k to the matching press method.
func (e *Evaluator) Press(k Key) {
	switch {
	case k.IsDigit():
		e.PressDigit(int(k - Key0))
	case k == KeyDecimal:
		e.PressDecimalSeparator()
	case k == KeyAdd:
		e.PressAdd()
	case k == KeySubtract:
		e.PressSubtract()
	case k == KeyMultiply:
		e.PressMultiply()
	case k == KeyDivide:
		e.PressDivide()
	case k == KeyEquals:
		e.PressEquals()
	case k == KeyClear:
		e.PressClear()
	case k == KeySqrt:
		e.PressSqrt()
	}
}

// Display returns the text currently shown. It has no side effects.
func (e *Evaluator) Display() string {
	return e.state.display()
}

// Failed reports whether a division by zero put the evaluator in its error
// state.
func (e *Evaluator) Failed() bool {
	_, ok := e.state.(errorState)
	return ok
}

// StateName names the current state for logs and traces.
func (e *Evaluator) StateName() string {
	return e.state.name()
}
