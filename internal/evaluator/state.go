package evaluator

import "math"

// ErrorMarker is what the display shows once a division by zero happened.
const ErrorMarker = "ERR"

// state is the closed set of evaluator states. Handlers either edit their own
// buffers or hand the evaluator a freshly built state.
type state interface {
	digit(d byte)
	decimalSeparator()
	binaryOperator(e *Evaluator, op Operator)
	equals(e *Evaluator)
	clear(e *Evaluator)
	sqrt(e *Evaluator)
	display() string
	name() string
}

var (
	_ state = (*firstOperand)(nil)
	_ state = (*secondOperand)(nil)
	_ state = (*thirdOperand)(nil)
	_ state = errorState{}
)

// sqrtOf replaces the whole expression with the square root of its first
// operand. Negative operands yield NaN.
func sqrtOf(e *Evaluator, first buffer) {
	e.transitionTo(&firstOperand{buf: numberBuffer(math.Sqrt(first.value()))})
}

// ---------------------------------------------------------------------------
// First operand
// ---------------------------------------------------------------------------

type firstOperand struct {
	buf buffer
}

func (s *firstOperand) digit(d byte)      { s.buf.appendDigit(d) }
func (s *firstOperand) decimalSeparator() { s.buf.appendSeparator() }

func (s *firstOperand) binaryOperator(e *Evaluator, op Operator) {
	first := s.buf
	if first == "" {
		first = "0"
	}
	e.transitionTo(&secondOperand{first: first, pending: op})
}

// equals has nothing to combine yet.
func (s *firstOperand) equals(*Evaluator) {}

func (s *firstOperand) clear(*Evaluator) { s.buf = "0" }

func (s *firstOperand) sqrt(e *Evaluator) { sqrtOf(e, s.buf) }

func (s *firstOperand) display() string {
	if s.buf == "" {
		return "0"
	}
	return string(s.buf)
}

func (s *firstOperand) name() string { return "first_operand" }

// ---------------------------------------------------------------------------
// Second operand: first <pending> second
// ---------------------------------------------------------------------------

type secondOperand struct {
	first   buffer
	second  buffer
	pending Operator
}

func (s *secondOperand) digit(d byte)      { s.second.appendDigit(d) }
func (s *secondOperand) decimalSeparator() { s.second.appendSeparator() }

func (s *secondOperand) binaryOperator(e *Evaluator, op Operator) {
	// A multiplicative operator after an additive one must wait for its
	// right operand before the additive fold can happen.
	if op.multiplicative() && !s.pending.multiplicative() {
		e.transitionTo(&thirdOperand{
			first:    s.first,
			second:   s.second,
			firstOp:  s.pending,
			secondOp: op,
		})
		return
	}

	result, ok := s.pending.apply(s.first.value(), s.second.value())
	if !ok {
		e.transitionTo(errorState{})
		return
	}
	s.first = numberBuffer(result)
	s.second = ""
	s.pending = op
}

func (s *secondOperand) equals(e *Evaluator) {
	result, ok := s.pending.apply(s.first.value(), s.second.value())
	if !ok {
		e.transitionTo(errorState{})
		return
	}
	e.transitionTo(&firstOperand{buf: numberBuffer(result)})
}

func (s *secondOperand) clear(e *Evaluator) { e.transitionTo(&firstOperand{buf: "0"}) }

func (s *secondOperand) sqrt(e *Evaluator) { sqrtOf(e, s.first) }

func (s *secondOperand) display() string {
	if s.second != "" {
		return string(s.second)
	}
	return string(s.first)
}

func (s *secondOperand) name() string { return "second_operand" }

// ---------------------------------------------------------------------------
// Third operand: first <firstOp> (second <secondOp> third)
// ---------------------------------------------------------------------------

// thirdOperand always has an additive firstOp and a multiplicative secondOp.
type thirdOperand struct {
	first    buffer
	second   buffer
	third    buffer
	firstOp  Operator
	secondOp Operator
}

func (s *thirdOperand) digit(d byte)      { s.third.appendDigit(d) }
func (s *thirdOperand) decimalSeparator() { s.third.appendSeparator() }

func (s *thirdOperand) binaryOperator(e *Evaluator, op Operator) {
	second, third := s.second.value(), s.third.value()

	switch {
	case op == Multiply:
		s.second = numberBuffer(second * third)
		s.third = ""
	case s.secondOp == Divide:
		quotient, ok := Divide.apply(second, third)
		if !ok {
			e.transitionTo(errorState{})
			return
		}
		s.second = numberBuffer(quotient)
		s.third = ""
	case !op.multiplicative():
		result, ok := s.resolve()
		if !ok {
			e.transitionTo(errorState{})
			return
		}
		e.transitionTo(&secondOperand{first: numberBuffer(result), pending: op})
	}
}

func (s *thirdOperand) equals(e *Evaluator) {
	result, ok := s.resolve()
	if !ok {
		e.transitionTo(errorState{})
		return
	}
	e.transitionTo(&firstOperand{buf: numberBuffer(result)})
}

// resolve evaluates the deferred multiplicative term and folds it into first.
func (s *thirdOperand) resolve() (float64, bool) {
	term, ok := s.secondOp.apply(s.second.value(), s.third.value())
	if !ok {
		return 0, false
	}
	return s.firstOp.apply(s.first.value(), term)
}

func (s *thirdOperand) clear(e *Evaluator) { e.transitionTo(&firstOperand{buf: "0"}) }

func (s *thirdOperand) sqrt(e *Evaluator) { sqrtOf(e, s.first) }

func (s *thirdOperand) display() string {
	switch {
	case s.third != "":
		return string(s.third)
	case s.second != "":
		return string(s.second)
	default:
		return "0"
	}
}

func (s *thirdOperand) name() string { return "third_operand" }

// ---------------------------------------------------------------------------
// Error: only clear leaves it
// ---------------------------------------------------------------------------

type errorState struct{}

func (errorState) digit(byte)                          {}
func (errorState) decimalSeparator()                   {}
func (errorState) binaryOperator(*Evaluator, Operator) {}
func (errorState) equals(*Evaluator)                   {}
func (errorState) clear(e *Evaluator)                  { e.transitionTo(&firstOperand{buf: "0"}) }
func (errorState) sqrt(*Evaluator)                     {}
func (errorState) display() string                     { return ErrorMarker }
func (errorState) name() string                        { return "error" }
