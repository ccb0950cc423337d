package region

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidArgument is returned when a region is built from too few points
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrParse is returned when encoded text is not a region
	ErrParse = errors.New("parse error")

	// ErrMalformedPoint is returned in strict mode for point strings that are not "lat,lng"
	ErrMalformedPoint = errors.New("malformed point")

	errMissingField = errors.New("missing field")
)

// InvalidArgumentError reports how many points a constructor received
type InvalidArgumentError struct {
	Got  int
	Want int
}

func (e *InvalidArgumentError) Error() string {
	return fmt.Sprintf("region needs at least %d points, got %d", e.Want, e.Got)
}

func (e *InvalidArgumentError) Unwrap() error {
	return ErrInvalidArgument
}

// ParseError reports a structural problem with encoded region text.
// Field is empty when the text is not a JSON object at all.
type ParseError struct {
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("parse region: %v", e.Err)
	}
	return fmt.Sprintf("parse region: field %q: %v", e.Field, e.Err)
}

func (e *ParseError) Unwrap() []error {
	return []error{ErrParse, e.Err}
}

// MalformedPointError identifies the offending entry of the points array
type MalformedPointError struct {
	Index int
	Value string
	Err   error
}

func (e *MalformedPointError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("point %d %q: expected \"lat,lng\"", e.Index, e.Value)
	}
	return fmt.Sprintf("point %d %q: %v", e.Index, e.Value, e.Err)
}

func (e *MalformedPointError) Unwrap() []error {
	errs := []error{ErrMalformedPoint, ErrParse}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}
