package borrow

// Validate checks events under the base rule set and returns nil when the
// whole sequence is legal, or the first *Violation.
func Validate(events []Event) error {
	return ValidateWith(events, Options{})
}

// ValidateWith is Validate with optional rules enabled.
func ValidateWith(events []Event, opts Options) error {
	c := NewChecker(opts)
	for _, ev := range events {
		if err := c.Apply(ev); err != nil {
			return err
		}
	}
	return nil
}
