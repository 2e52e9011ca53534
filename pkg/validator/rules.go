package validator

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"ecommerce-api/internal/errs"
)

// Violations maps a field name to every message recorded for it.
type Violations map[string][]string

// Add records a message for field.
func (v Violations) Add(field, message string) {
	v[field] = append(v[field], message)
}

// Fields returns the offending field names in sorted order.
func (v Violations) Fields() []string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

func (v Violations) Error() string {
	parts := make([]string, 0, len(v))
	for _, f := range v.Fields() {
		parts = append(parts, fmt.Sprintf("%s: %s", f, strings.Join(v[f], ", ")))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Constraint is one check applied to a present field value. The set of
// implementations is closed: Format, LengthRange, NumericRange, Pattern, Enum and ArrayBounds.
type Constraint interface {
	check(value interface{}) []string
}

type FormatKind string

const (
	FormatEmail FormatKind = "email"
	FormatPhone FormatKind = "phone"
	FormatURL   FormatKind = "url"
)

// Format checks the string form of the value against a well-known format.
type Format struct {
	Kind FormatKind
}

// LengthRange bounds the length of the string form of the value.
type LengthRange struct {
	Min, Max       int
	HasMin, HasMax bool
}

// NumericRange bounds the numeric coercion of the value, inclusive on both ends.
type NumericRange struct {
	Min, Max       float64
	HasMin, HasMax bool
}

// Pattern requires the string form of the value to match Expr.
type Pattern struct {
	Expr *regexp.Regexp
}

// Enum restricts the string form of the value to Values.
type Enum struct {
	Values []string
}

// ArrayBounds requires an array and optionally bounds its item count.
type ArrayBounds struct {
	Min, Max       int
	HasMin, HasMax bool
}

func Email() Constraint { return Format{Kind: FormatEmail} }
func Phone() Constraint { return Format{Kind: FormatPhone} }
func URL() Constraint { return Format{Kind: FormatURL} }

func MinLength(n int) Constraint { return LengthRange{Min: n, HasMin: true} }
func MaxLength(n int) Constraint { return LengthRange{Max: n, HasMax: true} }
func LengthBetween(min, max int) Constraint {
	return LengthRange{Min: min, Max: max, HasMin: true, HasMax: true}
}

func AtLeast(n float64) Constraint { return NumericRange{Min: n, HasMin: true} }
func AtMost(n float64) Constraint { return NumericRange{Max: n, HasMax: true} }
func Between(min, max float64) Constraint {
	return NumericRange{Min: min, Max: max, HasMin: true, HasMax: true}
}

func Matches(expr string) Constraint { return Pattern{Expr: regexp.MustCompile(expr)} }
func OneOf(values ...string) Constraint { return Enum{Values: values} }

func IsArray() Constraint { return ArrayBounds{} }
func MinItems(n int) Constraint { return ArrayBounds{Min: n, HasMin: true} }
func MaxItems(n int) Constraint { return ArrayBounds{Max: n, HasMax: true} }
func ItemsBetween(min, max int) Constraint {
	return ArrayBounds{Min: min, Max: max, HasMin: true, HasMax: true}
}

// Field is the rule for one named field.
type Field struct {
	Name        string
	Required    bool
	Constraints []Constraint
}

// Required declares a field that must be present and non-empty.
func Required(name string, constraints ...Constraint) Field {
	return Field{Name: name, Required: true, Constraints: constraints}
}

// Optional declares a field that is only checked when present.
func Optional(name string, constraints ...Constraint) Field {
	return Field{Name: name, Constraints: constraints}
}

// RuleSet is an ordered list of field rules. Fields not named in it are ignored.
type RuleSet []Field

// Partial returns a copy of the rule set where no field is required, for partial updates.
func (rs RuleSet) Partial() RuleSet {
	out := make(RuleSet, len(rs))
	for i, f := range rs {
		f.Required = false
		out[i] = f
	}
	return out
}

var engine = newEngine()

// MessageFailed is the message of the error returned by Validate.
const MessageFailed = "Validation failed"

// Validate evaluates rules against target. Failures come back as a validation AppError
// whose details are the Violations.
func Validate(target map[string]interface{}, rules RuleSet) error {
	if violations := Check(target, rules); violations != nil {
		return errs.Validation(MessageFailed, violations)
	}
	return nil
}

// Check evaluates rules against target and collects every failure. It returns nil when
// every rule passes.
func Check(target map[string]interface{}, rules RuleSet) Violations {
	violations := Violations{}

	for _, field := range rules {
		value, present := target[field.Name]
		if !present || isEmpty(value) {
			if field.Required {
				violations.Add(field.Name, "is required")
			}
			continue
		}

		for _, c := range field.Constraints {
			for _, msg := range c.check(value) {
				violations.Add(field.Name, msg)
			}
		}
	}

	if len(violations) == 0 {
		return nil
	}
	return violations
}

// ValidateAt validates the object found at a dotted path inside payload. A path that
// resolves to nothing is validated as an empty object.
func ValidateAt(payload map[string]interface{}, path string, rules RuleSet) error {
	return Validate(Lookup(payload, path), rules)
}

// Lookup resolves a dotted path to a nested object, or an empty object when absent.
func Lookup(payload map[string]interface{}, path string) map[string]interface{} {
	current := payload
	if path == "" {
		if current == nil {
			return map[string]interface{}{}
		}
		return current
	}

	for _, key := range strings.Split(path, ".") {
		next, ok := current[key].(map[string]interface{})
		if !ok {
			return map[string]interface{}{}
		}
		current = next
	}
	return current
}

func isEmpty(value interface{}) bool {
	if value == nil {
		return true
	}
	s, ok := value.(string)
	return ok && s == ""
}

func (f Format) check(value interface{}) []string {
	s := stringify(value)
	switch f.Kind {
	case FormatEmail:
		if engine.Var(s, "email") != nil {
			return []string{"must be a valid email"}
		}
	case FormatPhone:
		if !IsPhone(s) {
			return []string{"must be a valid phone number"}
		}
	case FormatURL:
		if engine.Var(s, "url") != nil {
			return []string{"must be a valid URL"}
		}
	}
	return nil
}

func (l LengthRange) check(value interface{}) []string {
	n := len([]rune(stringify(value)))
	var out []string
	if l.HasMin && n < l.Min {
		out = append(out, fmt.Sprintf("must be at least %d characters", l.Min))
	}
	if l.HasMax && n > l.Max {
		out = append(out, fmt.Sprintf("must not exceed %d characters", l.Max))
	}
	return out
}

func (r NumericRange) check(value interface{}) []string {
	n, ok := ToFloat(value)
	if !ok {
		return []string{"must be a valid number"}
	}
	var out []string
	if r.HasMin && n < r.Min {
		out = append(out, "must be at least "+FormatNumber(r.Min))
	}
	if r.HasMax && n > r.Max {
		out = append(out, "must not exceed "+FormatNumber(r.Max))
	}
	return out
}

func (p Pattern) check(value interface{}) []string {
	if !p.Expr.MatchString(stringify(value)) {
		return []string{"format is invalid"}
	}
	return nil
}

// check accepts a single value or a list whose every item is allowed.
func (e Enum) check(value interface{}) []string {
	candidates := []interface{}{value}
	if items, ok := value.([]interface{}); ok {
		candidates = items
	}
	for _, candidate := range candidates {
		if !e.allows(stringify(candidate)) {
			return []string{"must be one of: " + strings.Join(e.Values, ", ")}
		}
	}
	return nil
}

func (e Enum) allows(s string) bool {
	for _, allowed := range e.Values {
		if s == allowed {
			return true
		}
	}
	return false
}

func (a ArrayBounds) check(value interface{}) []string {
	n, ok := arrayLen(value)
	if !ok {
		return []string{"must be an array"}
	}
	var out []string
	if a.HasMin && n < a.Min {
		out = append(out, fmt.Sprintf("must contain at least %d items", a.Min))
	}
	if a.HasMax && n > a.Max {
		out = append(out, fmt.Sprintf("must not exceed %d items", a.Max))
	}
	return out
}

// ToFloat coerces JSON-decoded numbers and numeric strings. NaN and infinities are
// not numbers for validation purposes.
func ToFloat(value interface{}) (float64, bool) {
	f, ok := toFloat(value)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case int32:
		return float64(v), true
	case uint:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// FormatNumber renders a bound without trailing zeros ("0.01", "99999").
func FormatNumber(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

func stringify(value interface{}) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return FormatNumber(v)
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

func arrayLen(value interface{}) (int, bool) {
	if items, ok := value.([]interface{}); ok {
		return len(items), true
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		return rv.Len(), true
	}
	return 0, false
}
