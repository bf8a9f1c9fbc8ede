package provider

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/calyx-network/calyx-client/errs"
)

// Range is an inclusive byte range over an object's content. Either bound may
// be open: "10-" reads from offset 10 to the end, "-5" reads the final 5
// bytes, mirroring HTTP range semantics.
type Range struct {
	Start *uint64
	End   *uint64
}

// NewRange builds a fully-bounded inclusive range.
func NewRange(start, end uint64) *Range {
	return &Range{Start: &start, End: &end}
}

// ParseRange reads a range of the form "start-end", "start-" or "-suffix".
// An optional "bytes=" prefix is accepted.
func ParseRange(s string) (*Range, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "bytes=")

	first, second, found := strings.Cut(s, "-")
	if !found || (first == "" && second == "") {
		return nil, errs.New(errs.RangeNotSatisfiable, "invalid range %q", s)
	}

	r := &Range{}
	if first != "" {
		n, err := strconv.ParseUint(first, 10, 64)
		if err != nil {
			return nil, errs.New(errs.RangeNotSatisfiable, "invalid range start %q", first)
		}
		r.Start = &n
	}
	if second != "" {
		n, err := strconv.ParseUint(second, 10, 64)
		if err != nil {
			return nil, errs.New(errs.RangeNotSatisfiable, "invalid range end %q", second)
		}
		r.End = &n
	}
	return r, nil
}

// resolve turns the range into a concrete "start-end" spec against an object
// of the given size. Fails with RangeNotSatisfiable when the range is
// inverted, starts past the end of the object, or asks for a zero-length
// suffix.
func (r *Range) resolve(size uint64) (string, error) {
	var start, end uint64

	switch {
	case r.Start != nil && r.End != nil:
		start, end = *r.Start, *r.End
		if start > end {
			return "", errs.New(errs.RangeNotSatisfiable, "range start %d after end %d", start, end)
		}
		if end >= size {
			end = size - 1
		}
	case r.Start != nil:
		start, end = *r.Start, size-1
	case r.End != nil:
		if *r.End == 0 {
			return "", errs.New(errs.RangeNotSatisfiable, "zero-length suffix range")
		}
		end = size - 1
		if *r.End < size {
			start = size - *r.End
		}
	}

	if size == 0 || start >= size {
		return "", errs.New(errs.RangeNotSatisfiable, "range start %d exceeds object size %d", start, size)
	}
	return fmt.Sprintf("%d-%d", start, end), nil
}

func (r *Range) String() string {
	s := ""
	if r.Start != nil {
		s = strconv.FormatUint(*r.Start, 10)
	}
	s += "-"
	if r.End != nil {
		s += strconv.FormatUint(*r.End, 10)
	}
	return s
}
