package shape

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// TagName is the struct tag key read from shape fields.
const TagName = "duck"

// Tag options.
const (
	optField    = "field"
	optReadOnly = "readonly"
	optOptional = "optional"
	optInclude  = "include"
	optGeneric  = "generic"
	optOut      = "out"
)

// tagOptions is the parsed form of `duck:"[name][,option...]"`.
type tagOptions struct {
	name     string
	field    bool
	readOnly bool
	optional bool
	include  bool
	generic  int
	out      []int
}

// skip reports whether the field is excluded with `duck:"-"`.
func (o tagOptions) skip() bool {
	return o.name == "-"
}

func parseTag(tag string) (tagOptions, error) {
	var opts tagOptions
	if tag == "" {
		return opts, nil
	}

	parts := strings.Split(tag, ",")
	opts.name = strings.TrimSpace(parts[0])

	for _, raw := range parts[1:] {
		opt := strings.TrimSpace(raw)
		key, value, hasValue := strings.Cut(opt, "=")

		switch key {
		case optField, optReadOnly, optOptional, optInclude:
			if hasValue {
				return opts, fmt.Errorf("option %q takes no value", key)
			}

			switch key {
			case optField:
				opts.field = true
			case optReadOnly:
				opts.readOnly = true
			case optOptional:
				opts.optional = true
			case optInclude:
				opts.include = true
			}
		case optGeneric:
			n, err := parseCount(key, value, hasValue)
			if err != nil {
				return opts, err
			}

			if n == 0 {
				return opts, fmt.Errorf("option %q needs a positive count", key)
			}

			if opts.generic != 0 {
				return opts, fmt.Errorf("option %q given twice", key)
			}

			opts.generic = n
		case optOut:
			n, err := parseCount(key, value, hasValue)
			if err != nil {
				return opts, err
			}

			if slices.Contains(opts.out, n) {
				return opts, fmt.Errorf("parameter %d marked %q twice", n, key)
			}

			opts.out = append(opts.out, n)
		case "":
			return opts, fmt.Errorf("empty option in tag %q", tag)
		default:
			return opts, fmt.Errorf("unknown option %q", opt)
		}
	}

	slices.Sort(opts.out)

	return opts, nil
}

func parseCount(key, value string, hasValue bool) (int, error) {
	if !hasValue {
		return 0, fmt.Errorf("option %q needs a value", key)
	}

	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("option %q: %q is not a non-negative integer", key, value)
	}

	return n, nil
}
