package schema

import (
	"fmt"
	"strings"
)

// Describe returns a short human readable form of a rule, such as
// "string", "range 0..150" or "any(string, undefined)". Nested schemas are
// described as "object{N fields}". Validators that are not built in report "custom".
func Describe(v any) string {
	switch n := v.(type) {
	case Schema:
		return fmt.Sprintf("object{%d fields}", len(n))
	case fmt.Stringer:
		return n.String()
	case wrapped:
		return Describe(n.Validator)
	}
	return "custom"
}

func (k kind) String() string {
	switch k {
	case kindUndefined:
		return "undefined"
	case kindString:
		return "string"
	case kindNumber:
		return "number"
	case kindBoolean:
		return "boolean"
	case kindArray:
		return "array"
	case kindObject:
		return "object"
	}
	return "unknown"
}

func (r TypeRule) String() string { return r.kind.String() }

func (r BoundsRule) String() string {
	switch {
	case r.hasMin && r.hasMax:
		return fmt.Sprintf("range %s..%s", formatNumber(r.min), formatNumber(r.max))
	case r.hasMin:
		return "min " + formatNumber(r.min)
	}
	return "max " + formatNumber(r.max)
}

func (r LengthRule) String() string {
	switch {
	case r.hasMin && r.hasMax:
		return fmt.Sprintf("length %d..%d", r.min, r.max)
	case r.hasMin:
		return fmt.Sprintf("minLength %d", r.min)
	}
	return fmt.Sprintf("maxLength %d", r.max)
}

func (r PatternRule) String() string {
	switch r.re {
	case emailRegexp:
		return "email"
	case urlRegexp:
		return "url"
	}
	return "regexp /" + r.re.String() + "/"
}

func (r EnumRule) String() string {
	parts := make([]string, len(r.values))
	for i, v := range r.values {
		parts[i] = fmt.Sprint(v)
	}
	return "oneOf(" + strings.Join(parts, ", ") + ")"
}

func (r AnyRule) String() string { return describeAll("any", r.validators) }

func (r AllRule) String() string { return describeAll("all", r.validators) }

func describeAll(name string, validators []Validator) string {
	parts := make([]string, len(validators))
	for i, v := range validators {
		parts[i] = Describe(v)
	}
	return name + "(" + strings.Join(parts, ", ") + ")"
}
