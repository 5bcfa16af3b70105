package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/btouchard/seed/internal/compiler/ast"
	"github.com/btouchard/seed/internal/compiler/errors"
)

func TestIsIdentifier(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"Task", true},
		{"task_item", true},
		{"_private", true},
		{"Item2", true},
		{"2fast", false},
		{"my-model", false},
		{"", false},
		{"a.b", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.valid, IsIdentifier(tt.name))
		})
	}
}

func TestFieldType(t *testing.T) {
	tests := []struct {
		typ   string
		isRef bool
		err   bool
	}{
		{"text", false, false},
		{"num", false, false},
		{"longtext", false, false},
		{"User", true, false},
		{"Category2", true, false},
		{"invalid_type", false, true},
		{"my-type", false, true},
		{"9lives", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.typ, func(t *testing.T) {
			isRef, err := FieldType(tt.typ)
			if tt.err {
				require.Error(t, err)
				assert.True(t, errors.IsKind(err, errors.InvalidFieldType))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.isRef, isRef)
		})
	}
}

func TestCoerceDefault(t *testing.T) {
	tests := []struct {
		name string
		typ  string
		raw  string
		want string
		err  bool
	}{
		{"bool lowercase", "bool", "false", "false", false},
		{"bool mixed case", "bool", "TRUE", "true", false},
		{"bool quoted", "bool", `"True"`, "true", false},
		{"bool invalid", "bool", "yes", "", true},
		{"bool numeric", "bool", "1", "", true},
		{"num int", "num", "42", "42", false},
		{"num float", "num", "3.14", "3.14", false},
		{"num negative", "num", "-1.5", "-1.5", false},
		{"num invalid", "num", "abc", "", true},
		{"text quoted", "text", `"Untitled"`, "Untitled", false},
		{"text bare", "text", "draft", "draft", false},
		{"reference", "User", "admin", "admin", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := CoerceDefault(tt.typ, tt.raw)
			if tt.err {
				require.Error(t, err)
				assert.True(t, errors.IsKind(err, errors.InvalidDefaultValue))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConstraintsNumericOnNumField(t *testing.T) {
	v := New(false, nil)
	f := &ast.Field{Name: "priority", Type: "num"}

	err := v.Constraints(f, []Entry{{"min", "1"}, {"max", "5"}, {"step", "0.5"}})
	require.NoError(t, err)

	assert.True(t, f.Constraints["min"].Numeric)
	assert.Equal(t, 1.0, f.Constraints["min"].Number)
	assert.Equal(t, 5.0, f.Constraints["max"].Number)
	assert.Equal(t, 0.5, f.Constraints["step"].Number)
}

func TestConstraintsRawOnTextField(t *testing.T) {
	v := New(false, nil)
	f := &ast.Field{Name: "code", Type: "text"}

	err := v.Constraints(f, []Entry{{"minLength", "3"}, {"pattern", `"^[A-Z]+$"`}})
	require.NoError(t, err)

	assert.False(t, f.Constraints["minLength"].Numeric)
	assert.Equal(t, "3", f.Constraints["minLength"].Raw)
	assert.Equal(t, "^[A-Z]+$", f.Constraints["pattern"].Raw)
}

func TestConstraintsInvalid(t *testing.T) {
	v := New(false, nil)

	err := v.Constraints(&ast.Field{Name: "n", Type: "num"}, []Entry{{"min", "low"}})
	assert.True(t, errors.IsKind(err, errors.InvalidConstraint))

	err = v.Constraints(&ast.Field{Name: "n", Type: "num"}, []Entry{{"min", "10"}, {"max", "1"}})
	assert.True(t, errors.IsKind(err, errors.InvalidConstraint))

	err = v.Constraints(&ast.Field{Name: "n", Type: "num"}, []Entry{{"min", "1"}, {"min", "2"}})
	assert.True(t, errors.IsKind(err, errors.InvalidConstraint))
}

func TestConstraintsUnknownKeyPermissive(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	v := New(false, zap.New(core))
	f := &ast.Field{Name: "title", Type: "text"}

	err := v.Constraints(f, []Entry{{"placeholder", `"Enter a title"`}})
	require.NoError(t, err)

	assert.Equal(t, "Enter a title", f.Constraints["placeholder"].Raw)
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "unknown constraint key", entry.Message)
	assert.Equal(t, "placeholder", entry.ContextMap()["key"])
}

func TestConstraintsUnknownKeyStrict(t *testing.T) {
	v := New(true, nil)
	assert.True(t, v.Strict())

	err := v.Constraints(&ast.Field{Name: "title", Type: "text"}, []Entry{{"placeholder", "x"}})
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.UnknownConstraint))
}

func TestCheckReferences(t *testing.T) {
	spec := ast.NewSpec()
	spec.Models = []*ast.Model{
		{Name: "User"},
		{Name: "Task", Fields: []*ast.Field{{Name: "owner", Type: "User", IsReference: true}}},
	}
	spec.Screens = []*ast.Screen{{Name: "Tasks", Model: "Task"}}
	spec.Themes = []*ast.Theme{{Name: "Light"}}
	spec.App = &ast.App{Name: "Todo", Title: "Todo", Theme: "Light"}

	require.NoError(t, CheckReferences(spec))

	spec.Screens = append(spec.Screens, &ast.Screen{Name: "Users", Model: "Person", Pos: ast.Pos{Line: 7}})
	err := CheckReferences(spec)
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.UnknownReference))
	pe, _ := errors.As(err)
	assert.Equal(t, 7, pe.Pos.Line)
}

func TestCheckReferencesUnknownFieldModel(t *testing.T) {
	spec := ast.NewSpec()
	spec.Models = []*ast.Model{
		{Name: "Task", Fields: []*ast.Field{{Name: "category", Type: "Category", IsReference: true}}},
	}

	err := CheckReferences(spec)
	assert.True(t, errors.IsKind(err, errors.UnknownReference))
}

func TestCheckReferencesUnknownAppTheme(t *testing.T) {
	spec := ast.NewSpec()
	spec.App = &ast.App{Name: "Todo", Title: "Todo", Theme: "Dark"}

	err := CheckReferences(spec)
	assert.True(t, errors.IsKind(err, errors.UnknownReference))
}
