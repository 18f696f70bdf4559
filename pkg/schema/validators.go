package schema

import (
	"encoding/json"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// --- Type rules ---

type kind int

const (
	kindUndefined kind = iota
	kindString
	kindNumber
	kindBoolean
	kindArray
	kindObject
)

// TypeRule accepts values of a single runtime type.
type TypeRule struct {
	leaf
	kind    kind
	message string
}

func (r TypeRule) Validate(_, value any) []ValidationError {
	if r.kind.matches(value) {
		return nil
	}
	return fail(r.message)
}

func (k kind) matches(value any) bool {
	switch k {
	case kindUndefined:
		return IsUndefined(value)
	case kindString:
		return isString(value)
	case kindNumber:
		_, ok := toFloat(value)
		return ok
	case kindBoolean:
		_, ok := value.(bool)
		return ok
	case kindArray:
		return isArray(value)
	case kindObject:
		return isObject(value)
	}
	return false
}

// UndefinedV accepts only absent fields.
func UndefinedV(message ...string) Rule {
	return TypeRule{kind: kindUndefined, message: messageOr(message, "Expected undefined")}
}

// StringV accepts string values.
func StringV(message ...string) Rule {
	return TypeRule{kind: kindString, message: messageOr(message, "Expected string")}
}

// NumberV accepts any integer or floating point value, including json.Number.
func NumberV(message ...string) Rule {
	return TypeRule{kind: kindNumber, message: messageOr(message, "Expected number")}
}

// BooleanV accepts true and false.
func BooleanV(message ...string) Rule {
	return TypeRule{kind: kindBoolean, message: messageOr(message, "Expected boolean")}
}

// ArrayV accepts slices and arrays.
func ArrayV(message ...string) Rule {
	return TypeRule{kind: kindArray, message: messageOr(message, "Expected array")}
}

// ObjectV accepts non-nil maps keyed by strings.
func ObjectV(message ...string) Rule {
	return TypeRule{kind: kindObject, message: messageOr(message, "Expected object")}
}

// --- Numeric bounds ---

// BoundsRule checks a numeric value against an inclusive lower and/or upper bound.
type BoundsRule struct {
	leaf
	min, max       float64
	hasMin, hasMax bool
	message        string
}

func (r BoundsRule) Validate(_, value any) []ValidationError {
	n, ok := toFloat(value)
	if !ok || (r.hasMin && n < r.min) || (r.hasMax && n > r.max) {
		return fail(r.message)
	}
	return nil
}

// Min accepts numbers greater than or equal to n.
func Min(n float64, message ...string) Rule {
	return BoundsRule{
		min: n, hasMin: true,
		message: messageOr(message, "Expected a value greater than or equal to "+formatNumber(n)),
	}
}

// Max accepts numbers less than or equal to n.
func Max(n float64, message ...string) Rule {
	return BoundsRule{
		max: n, hasMax: true,
		message: messageOr(message, "Expected a value less than or equal to "+formatNumber(n)),
	}
}

// Range accepts numbers between lo and hi, inclusive.
func Range(lo, hi float64, message ...string) Rule {
	return BoundsRule{
		min: lo, hasMin: true,
		max: hi, hasMax: true,
		message: messageOr(message, fmt.Sprintf("Expected a value between %s and %s", formatNumber(lo), formatNumber(hi))),
	}
}

// --- Length bounds ---

// LengthRule checks the length of a string (in characters) or a slice.
type LengthRule struct {
	leaf
	min, max       int
	hasMin, hasMax bool
	message        string
}

func (r LengthRule) Validate(_, value any) []ValidationError {
	n, ok := lengthOf(value)
	if !ok || (r.hasMin && n < r.min) || (r.hasMax && n > r.max) {
		return fail(r.message)
	}
	return nil
}

// MinLength accepts values at least n long.
func MinLength(n int, message ...string) Rule {
	return LengthRule{
		min: n, hasMin: true,
		message: messageOr(message, fmt.Sprintf("Please enter at least %d characters", n)),
	}
}

// MaxLength accepts values at most n long.
func MaxLength(n int, message ...string) Rule {
	return LengthRule{
		max: n, hasMax: true,
		message: messageOr(message, fmt.Sprintf("Please enter no more than %d characters", n)),
	}
}

// RangeLength accepts values whose length is between lo and hi, inclusive.
func RangeLength(lo, hi int, message ...string) Rule {
	return LengthRule{
		min: lo, hasMin: true,
		max: hi, hasMax: true,
		message: messageOr(message, fmt.Sprintf("Please enter a value between %d and %d characters long", lo, hi)),
	}
}

// --- Formats ---

const (
	emailPattern = `(?i)^[a-z0-9!#$%&'*+/=?^_` + "`" + `{|}~-]+(?:\.[a-z0-9!#$%&'*+/=?^_` + "`" + `{|}~-]+)*` +
		`@(?:[a-z0-9](?:[a-z0-9-]*[a-z0-9])?\.)+[a-z0-9](?:[a-z0-9-]*[a-z0-9])?$`

	urlPattern = `(?i)^(?:https?|ftp)://(?:[^\s:@/]+(?::[^\s:@/]*)?@)?` +
		`(?:[a-z0-9](?:[a-z0-9-]*[a-z0-9])?(?:\.[a-z0-9](?:[a-z0-9-]*[a-z0-9])?)*|\[[0-9a-f:.]+\])` +
		`(?::\d{1,5})?(?:[/?#]\S*)?$`
)

var (
	emailRegexp = regexp.MustCompile(emailPattern)
	urlRegexp   = regexp.MustCompile(urlPattern)
)

// PatternRule matches string values against a regular expression.
type PatternRule struct {
	leaf
	re      *regexp.Regexp
	message string
}

func (r PatternRule) Validate(_, value any) []ValidationError {
	s, ok := value.(string)
	if !ok || !r.re.MatchString(s) {
		return fail(r.message)
	}
	return nil
}

// Regexp compiles pattern and accepts strings it matches.
// It panics if the pattern does not compile, like regexp.MustCompile.
func Regexp(pattern string, message ...string) Rule {
	return MatchRegexp(regexp.MustCompile(pattern), message...)
}

// MatchRegexp accepts strings matched by re.
func MatchRegexp(re *regexp.Regexp, message ...string) Rule {
	return PatternRule{re: re, message: messageOr(message, "Invalid format")}
}

// Email accepts RFC 2822 style addresses.
func Email(message ...string) Rule {
	return MatchRegexp(emailRegexp, messageOr(message, "Please enter a valid email address"))
}

// URL accepts http, https and ftp URLs.
func URL(message ...string) Rule {
	return MatchRegexp(urlRegexp, messageOr(message, "Please enter a valid URL"))
}

// --- Enumerations ---

// EnumRule accepts one of a fixed set of values.
type EnumRule struct {
	leaf
	values  []any
	message string
}

func (r EnumRule) Validate(_, value any) []ValidationError {
	for _, candidate := range r.values {
		if equalValues(candidate, value) {
			return nil
		}
	}
	return fail(r.message)
}

// OneOf accepts values equal to one of values. Numbers compare by value, so
// an int in the schema matches a float64 decoded from JSON.
func OneOf(values []any, message ...string) Rule {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprint(v)
	}
	return EnumRule{
		values:  values,
		message: messageOr(message, "Expected one of "+strings.Join(parts, ", ")),
	}
}

// --- Helpers ---

func formatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

var jsonNumberType = reflect.TypeOf(json.Number(""))

func isString(value any) bool {
	if value == nil {
		return false
	}
	t := reflect.TypeOf(value)
	return t.Kind() == reflect.String && t != jsonNumberType
}

func isArray(value any) bool {
	if value == nil {
		return false
	}
	k := reflect.TypeOf(value).Kind()
	return k == reflect.Slice || k == reflect.Array
}

func isObject(value any) bool {
	if value == nil {
		return false
	}
	rv := reflect.ValueOf(value)
	return rv.Kind() == reflect.Map && rv.Type().Key().Kind() == reflect.String && !rv.IsNil()
}

func toFloat(value any) (float64, bool) {
	if n, ok := value.(json.Number); ok {
		f, err := n.Float64()
		return f, err == nil
	}
	if value == nil {
		return 0, false
	}
	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

func lengthOf(value any) (int, bool) {
	if isString(value) {
		return utf8.RuneCountInString(reflect.ValueOf(value).String()), true
	}
	if isArray(value) {
		return reflect.ValueOf(value).Len(), true
	}
	if rv := reflect.ValueOf(value); rv.Kind() == reflect.Map {
		return rv.Len(), true
	}
	return 0, false
}

func equalValues(a, b any) bool {
	fa, aNum := toFloat(a)
	fb, bNum := toFloat(b)
	if aNum && bNum {
		return fa == fb
	}
	return reflect.DeepEqual(a, b)
}
