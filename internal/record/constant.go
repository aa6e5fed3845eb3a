package record

import (
	"fmt"
	"hash/fnv"

	"golang.org/x/text/unicode/norm"
)

// Constant is the value stored in a single field: exactly one of an int32
// or a string is set. Its fields are pointers, so == compares identity,
// not value; use Equals/CompareTo to compare values.
type Constant struct {
	ival *int32
	sval *string
}

// NewIntConstant wraps an int32 value.
func NewIntConstant(v int32) Constant {
	return Constant{ival: &v}
}

// NewStringConstant wraps a string value.
func NewStringConstant(v string) Constant {
	return Constant{sval: &v}
}

// AsInt returns the wrapped int32 and true, or (0, false) if this constant
// holds a string.
func (c Constant) AsInt() (int32, bool) {
	if c.ival == nil {
		return 0, false
	}
	return *c.ival, true
}

// AsString returns the wrapped string and true, or ("", false) if this
// constant holds an int.
func (c Constant) AsString() (string, bool) {
	if c.sval == nil {
		return "", false
	}
	return *c.sval, true
}

// IsZero reports whether this Constant was never assigned a value.
func (c Constant) IsZero() bool {
	return c.ival == nil && c.sval == nil
}

// Equals reports whether two constants hold the same kind and value.
func (c Constant) Equals(other Constant) bool {
	if c.ival != nil && other.ival != nil {
		return *c.ival == *other.ival
	}
	if c.sval != nil && other.sval != nil {
		return *c.sval == *other.sval
	}
	return false
}

// CompareTo returns a negative number, zero, or a positive number as c is
// less than, equal to, or greater than other. Comparing an int constant to
// a string constant is a programming error and panics.
func (c Constant) CompareTo(other Constant) int {
	if c.ival != nil && other.ival != nil {
		switch {
		case *c.ival < *other.ival:
			return -1
		case *c.ival > *other.ival:
			return 1
		default:
			return 0
		}
	}
	if c.sval != nil && other.sval != nil {
		switch {
		case *c.sval < *other.sval:
			return -1
		case *c.sval > *other.sval:
			return 1
		default:
			return 0
		}
	}
	panic("record: cannot compare constants of different kinds")
}

// HashCode returns a stable hash of the constant's value, normalizing
// strings to NFKC first so that equivalent strings hash identically.
// Equals and CompareTo compare the raw strings without normalizing.
func (c Constant) HashCode() uint64 {
	h := fnv.New64a()
	if c.ival != nil {
		fmt.Fprintf(h, "i:%d", *c.ival)
		return h.Sum64()
	}
	if c.sval != nil {
		normalized := norm.NFKC.String(*c.sval)
		fmt.Fprintf(h, "s:%s", normalized)
		return h.Sum64()
	}
	return 0
}

// String renders the constant's value for display and for storing view
// definitions and error messages.
func (c Constant) String() string {
	if c.ival != nil {
		return fmt.Sprintf("%d", *c.ival)
	}
	if c.sval != nil {
		return *c.sval
	}
	return "<null>"
}
