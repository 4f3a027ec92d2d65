package pipeline

import "fmt"

// MalformedPayloadError reports a bootstrap payload whose top-level shape does
// not match the API contract — a missing key, a non-array value, or records
// without usable ids.
type MalformedPayloadError struct {
	Key    string
	Reason string
}

func (e *MalformedPayloadError) Error() string {
	return fmt.Sprintf("malformed payload: key %q: %s", e.Key, e.Reason)
}

// DataTypeError reports a configured numeric column whose value could not be
// coerced to float. Fatal for the run — a wrong type poisons every aggregate
// downstream.
type DataTypeError struct {
	Column string
	Value  any
}

func (e *DataTypeError) Error() string {
	return fmt.Sprintf("column %q: cannot coerce %v to float", e.Column, e.Value)
}

// UnresolvedReferenceError reports an id with no match in a lookup table.
// Never fatal: the cell becomes null and the miss is logged.
type UnresolvedReferenceError struct {
	Column string
	ID     int
}

func (e *UnresolvedReferenceError) Error() string {
	return fmt.Sprintf("column %q: no reference entry for id %d", e.Column, e.ID)
}
