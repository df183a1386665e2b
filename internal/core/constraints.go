package core

import "fmt"

// Unbounded is the upper invocation limit meaning "any number".
const Unbounded = -1

// constraints tracks an expectation's call-count bounds and its running count.
type constraints struct {
	min   int
	max   int
	count int
}

func newConstraints(nonStrict bool) constraints {
	var c constraints
	c.setDefaultLimits(nonStrict)

	return c
}

// adjustMax raises a positive upper bound so that every configured result can be consumed.
func (c *constraints) adjustMax(results int) {
	if c.max > 0 && c.max < results {
		c.max = results
	}
}

func (c *constraints) belowMin() bool {
	return c.count < c.min
}

func (c *constraints) exceeded() bool {
	return c.max >= 0 && c.count > c.max
}

func (c *constraints) inRange() bool {
	return c.min <= c.count && (c.max < 0 || c.count <= c.max)
}

// increment counts one more call and reports whether the upper bound has just been reached.
func (c *constraints) increment() bool {
	c.count++

	return c.count == c.max
}

func (c *constraints) setDefaultLimits(nonStrict bool) {
	if nonStrict {
		c.setLimits(0, Unbounded)

		return
	}

	c.setLimits(1, 1)
}

func (c *constraints) setLimits(minimum, maximum int) {
	c.min = minimum
	c.max = maximum
}

// verifyCount checks a count against explicit bounds. It returns the failure kind and text, or a nil kind.
func verifyCount(count, minimum, maximum int, desc string) (error, string) { //nolint:revive,staticcheck // kind first
	if count < minimum {
		missing := minimum - count

		return ErrMissingInvocation, fmt.Sprintf("Missing %d invocation%s to:\n%s", missing, plural(missing), desc)
	}

	if maximum >= 0 && count > maximum {
		unexpected := count - maximum

		return ErrUnexpectedInvocation,
			fmt.Sprintf("%d unexpected invocation%s to:\n%s", unexpected, plural(unexpected), desc)
	}

	return nil, ""
}
