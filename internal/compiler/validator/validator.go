package validator

import (
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/btouchard/seed/internal/compiler/ast"
	"github.com/btouchard/seed/internal/compiler/errors"
)

// PrimitiveTypes is the set of built-in field types. Any other well-formed
// type name is a model reference.
var PrimitiveTypes = map[string]bool{
	"text":     true,
	"num":      true,
	"bool":     true,
	"email":    true,
	"date":     true,
	"datetime": true,
	"url":      true,
	"phone":    true,
	"uuid":     true,
	"password": true,
	"longtext": true,
}

// KnownConstraints lists the constraint keys understood by consumers.
// Keys mapped to true take numeric values on num fields.
var KnownConstraints = map[string]bool{
	"min":       true,
	"max":       true,
	"minLength": true,
	"maxLength": true,
	"step":      true,
	"pattern":   false,
	"format":    false,
	"required":  false,
	"unique":    false,
}

var (
	identRe     = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	referenceRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*$`)
)

// IsIdentifier reports whether name is a well-formed declaration name.
func IsIdentifier(name string) bool {
	return identRe.MatchString(name)
}

// IsPrimitive reports whether typ is a built-in field type.
func IsPrimitive(typ string) bool {
	return PrimitiveTypes[typ]
}

// FieldType validates a declared type and reports whether it is a model
// reference. References are letters and digits only.
func FieldType(typ string) (bool, error) {
	if IsPrimitive(typ) {
		return false, nil
	}
	if referenceRe.MatchString(typ) {
		return true, nil
	}
	return false, errors.New(errors.InvalidFieldType, "'%s' is not a valid type", typ)
}

// CoerceDefault normalizes a default literal for the given field type.
// Surrounding quotes are stripped before coercion.
func CoerceDefault(typ, raw string) (string, error) {
	value := strings.Trim(raw, `"`)
	switch typ {
	case "bool":
		lower := strings.ToLower(value)
		if lower != "true" && lower != "false" {
			return "", errors.New(errors.InvalidDefaultValue, "invalid default value for bool field: %s", value)
		}
		return lower, nil
	case "num":
		if _, err := strconv.ParseFloat(value, 64); err != nil {
			return "", errors.New(errors.InvalidDefaultValue, "invalid default value for num field: %s", value)
		}
		return value, nil
	default:
		return value, nil
	}
}

// Entry is one raw `key: value` pair of an inline constraint block.
type Entry struct {
	Key   string
	Value string
}

// Validator applies the per-field checks run before a field joins its model.
type Validator struct {
	strict bool
	logger *zap.Logger
}

// New creates a Validator. A nil logger is replaced by a no-op logger.
func New(strict bool, logger *zap.Logger) *Validator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Validator{strict: strict, logger: logger}
}

// Strict reports whether unknown constraint keys are rejected.
func (v *Validator) Strict() bool {
	return v.strict
}

// Constraints validates an inline constraint block for field and stores the
// result on it.
func (v *Validator) Constraints(field *ast.Field, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	out := make(map[string]ast.Constraint, len(entries))
	for _, e := range entries {
		if _, dup := out[e.Key]; dup {
			return errors.New(errors.InvalidConstraint, "duplicate constraint '%s' on field '%s'", e.Key, field.Name)
		}
		numeric, known := KnownConstraints[e.Key]
		if !known {
			if v.strict {
				return errors.New(errors.UnknownConstraint, "unknown constraint '%s' on field '%s'", e.Key, field.Name)
			}
			v.logger.Warn("unknown constraint key",
				zap.String("field", field.Name),
				zap.String("key", e.Key),
				zap.String("file", field.Pos.File),
				zap.Int("line", field.Pos.Line))
		}

		c := ast.Constraint{Raw: strings.Trim(e.Value, `"`)}
		if numeric && field.Type == "num" {
			n, err := strconv.ParseFloat(c.Raw, 64)
			if err != nil {
				return errors.New(errors.InvalidConstraint, "constraint '%s' on num field '%s' must be a number, got %s", e.Key, field.Name, c.Raw)
			}
			c.Number = n
			c.Numeric = true
		}
		out[e.Key] = c
	}

	lo, hasMin := out["min"]
	hi, hasMax := out["max"]
	if hasMin && hasMax && lo.Numeric && hi.Numeric && lo.Number > hi.Number {
		return errors.New(errors.InvalidConstraint, "min %s is greater than max %s on field '%s'", lo.Raw, hi.Raw, field.Name)
	}

	field.Constraints = out
	return nil
}

// CheckReferences verifies that every name reference in spec resolves.
// The parser only records references, so callers opt into this pass.
func CheckReferences(spec *ast.Spec) error {
	ix := ast.NewIndex(spec)
	for _, m := range spec.Models {
		for _, f := range m.Fields {
			if f.IsReference && ix.Model(f.Type) == nil {
				return withPos(errors.New(errors.UnknownReference, "field '%s.%s' references unknown model '%s'", m.Name, f.Name, f.Type), f.Pos)
			}
		}
	}
	for _, s := range spec.Screens {
		if ix.Model(s.Model) == nil {
			return withPos(errors.New(errors.UnknownReference, "screen '%s' uses unknown model '%s'", s.Name, s.Model), s.Pos)
		}
	}
	if spec.App != nil && spec.App.Theme != "" && ix.Theme(spec.App.Theme) == nil {
		return withPos(errors.New(errors.UnknownReference, "app '%s' uses unknown theme '%s'", spec.App.Name, spec.App.Theme), spec.App.Pos)
	}
	return nil
}

func withPos(err *errors.ParseError, pos ast.Pos) *errors.ParseError {
	return err.At(pos.File, pos.Line, pos.Column)
}
