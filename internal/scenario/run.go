package scenario

import (
	"context"

	"borrowck/internal/borrow"
	"borrowck/internal/driver"
)

// Outcome is the result of running one scenario.
type Outcome struct {
	Scenario Scenario
	Result   *driver.CheckResult
	Got      borrow.ViolationKind
}

// Pass reports whether the verdict matches the expectation and the script
// parsed cleanly.
func (o Outcome) Pass() bool {
	if o.Result == nil {
		return false
	}
	if o.Got == borrow.ViolationNone && !o.Result.OK() {
		// синтаксическая ошибка в самом каталоге
		return false
	}
	return o.Got == o.Scenario.Want
}

// Run checks s. base supplies everything but the rules, which come from the
// scenario itself.
func Run(ctx context.Context, s Scenario, base driver.Options) Outcome {
	opts := base
	opts.Rules = s.Rules()
	res := driver.CheckSource(ctx, s.FileName(), []byte(s.Script), opts)
	out := Outcome{Scenario: s, Result: res}
	if res.Violation != nil {
		out.Got = res.Violation.Kind
	}
	return out
}

// RunAll runs scenarios in order and stops early only on cancellation.
func RunAll(ctx context.Context, list []Scenario, base driver.Options) ([]Outcome, error) {
	out := make([]Outcome, 0, len(list))
	for _, s := range list {
		if err := ctx.Err(); err != nil {
			return out, err
		}
		out = append(out, Run(ctx, s, base))
	}
	return out, nil
}
