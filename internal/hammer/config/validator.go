package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors struct {
	Errors []*ValidationError
}

func (e *ValidationErrors) Error() string {
	if len(e.Errors) == 0 {
		return "no validation errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e.Errors)))
	for i, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Add adds an error to the collection.
func (e *ValidationErrors) Add(field, message string) {
	e.Errors = append(e.Errors, &ValidationError{Field: field, Message: message})
}

// HasErrors returns true if there are any errors.
func (e *ValidationErrors) HasErrors() bool {
	return len(e.Errors) > 0
}

// Validate checks a run for values that can never be measured.
//
// Returns nil if valid, or a *ValidationErrors containing every problem.
func (c *RunConfig) Validate() error {
	errs := &ValidationErrors{}
	c.validate("", errs)
	if errs.HasErrors() {
		return errs
	}
	return nil
}

func (c *RunConfig) validate(prefix string, errs *ValidationErrors) {
	if c.Threads < 0 {
		errs.Add(prefix+"threads", "thread count must be positive")
	}
	if c.Acquisitions < 0 {
		errs.Add(prefix+"acquisitions", "acquire count must be positive")
	}
	if c.Hold < 0 {
		errs.Add(prefix+"hold", "critical iteration count must be positive")
	}
	if c.Post < 0 {
		errs.Add(prefix+"post", "parallel iteration count must be positive")
	}
	if c.Settings.NoRealtime && c.Settings.RequireRealtime {
		errs.Add(prefix+"settings", "requireRealtime conflicts with noRealtime")
	}
}

// Validate checks every run of the sweep and the threshold expressions.
func (c *TestConfig) Validate() error {
	errs := &ValidationErrors{}

	for i, run := range c.Runs() {
		run.validate(fmt.Sprintf("runs[%d].", i), errs)
	}
	for i, expr := range c.Thresholds {
		if _, err := ParseThreshold(expr); err != nil {
			errs.Add(fmt.Sprintf("thresholds[%d]", i), err.Error())
		}
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

// Threshold is a parsed pass/fail expression such as "nsPerAccess < 500".
// Metric is a path into the JSON form of a run result.
type Threshold struct {
	Expression string
	Metric     string
	Op         string
	Value      float64
}

var thresholdPattern = regexp.MustCompile(`^([\w.$\[\]]+)\s*(<=|>=|==|!=|<>|<|>|=)\s*(.+)$`)

// ParseThreshold parses an expression like "spread.p99 <= 900".
func ParseThreshold(expr string) (Threshold, error) {
	expr = strings.TrimSpace(expr)

	matches := thresholdPattern.FindStringSubmatch(expr)
	if len(matches) != 4 {
		return Threshold{}, fmt.Errorf("invalid expression format: %s", expr)
	}

	value, err := strconv.ParseFloat(strings.TrimSpace(matches[3]), 64)
	if err != nil {
		return Threshold{}, fmt.Errorf("invalid threshold value in %q: %w", expr, err)
	}

	return Threshold{
		Expression: expr,
		Metric:     matches[1],
		Op:         matches[2],
		Value:      value,
	}, nil
}

// Compare applies the threshold's operator to actual.
func (t Threshold) Compare(actual float64) bool {
	switch t.Op {
	case "<":
		return actual < t.Value
	case "<=":
		return actual <= t.Value
	case ">":
		return actual > t.Value
	case ">=":
		return actual >= t.Value
	case "==", "=":
		return actual == t.Value
	case "!=", "<>":
		return actual != t.Value
	default:
		return false
	}
}
