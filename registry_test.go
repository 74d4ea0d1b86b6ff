package flatty

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

type (
	testSecret string

	maskConverter struct{}

	testAudited struct {
		Seen bool `format:"name=seen"`
	}

	testEvent struct {
		testAudited
		Name string `format:"name=name"`
	}

	auditConverter struct{}
)

func (c *maskConverter) CheckType(registry *Registry, declared *Type, value interface{}) error {
	return checkAssignable(declared, value)
}

func (c *maskConverter) ToFlat(registry *Registry, declared *Type, value, existing interface{}) (interface{}, error) {
	if isNilValue(value) {
		return nil, nil
	}
	return "***", nil
}

func (c *maskConverter) ToObject(registry *Registry, declared *Type, tree, existing interface{}) (interface{}, error) {
	if tree == nil {
		return nil, nil
	}
	return testSecret(tree.(string)), nil
}

func (c *auditConverter) CheckType(registry *Registry, declared *Type, value interface{}) error {
	return (&RecordConverter{}).CheckType(registry, declared, value)
}

func (c *auditConverter) ToFlat(registry *Registry, declared *Type, value, existing interface{}) (interface{}, error) {
	tree, err := (&RecordConverter{}).ToFlat(registry, declared, value, existing)
	if err != nil {
		return nil, err
	}
	if out, ok := tree.(map[string]interface{}); ok {
		out["seen"] = true
	}
	return tree, nil
}

func (c *auditConverter) ToObject(registry *Registry, declared *Type, tree, existing interface{}) (interface{}, error) {
	return (&RecordConverter{}).ToObject(registry, declared, tree, existing)
}

func TestRegistry_Register(t *testing.T) {
	registry := NewRegistry()
	secretType := TypeFor(reflect.TypeOf(testSecret("")))
	registry.Register(secretType, &maskConverter{})

	actual, err := registry.Flatten(testSecret("hunter2"), nil, nil)
	assert.Nil(t, err)
	assert.EqualValues(t, "***", actual)

	restored, err := registry.Unflatten("hunter2", secretType, nil)
	assert.Nil(t, err)
	assert.EqualValues(t, testSecret("hunter2"), restored)
}

func TestRegistry_RegisterOverwrite(t *testing.T) {
	registry := NewRegistry()
	secretType := TypeFor(reflect.TypeOf(testSecret("")))
	registry.Register(secretType, &maskConverter{})
	registry.Register(secretType, &maskConverter{})

	count := 0
	registry.mu.RLock()
	for _, item := range registry.entries {
		if item.key.Equals(secretType) {
			count++
		}
	}
	registry.mu.RUnlock()
	assert.Equal(t, 1, count)
}

func TestRegistry_Unregister(t *testing.T) {
	registry := NewRegistry()
	secretType := TypeFor(reflect.TypeOf(testSecret("")))
	registry.Register(secretType, &maskConverter{})
	registry.Unregister(secretType)

	actual, err := registry.Flatten(testSecret("hunter2"), nil, nil)
	assert.Nil(t, err)
	assert.EqualValues(t, testSecret("hunter2"), actual)
}

func TestRegistry_SubtypeDispatch(t *testing.T) {
	registry := NewRegistry()
	registry.Register(TypeFor(reflect.TypeOf(testAudited{})), &auditConverter{}, WithSubtypes())

	actual, err := registry.Flatten(&testEvent{Name: "boot"}, nil, nil)
	assert.Nil(t, err)
	assert.EqualValues(t, map[string]interface{}{"seen": true, "name": "boot"}, actual)
}

func TestRegistry_ExactSkipsSubtype(t *testing.T) {
	registry := NewRegistry()
	registry.Register(TypeFor(reflect.TypeOf(testAudited{})), &auditConverter{})

	actual, err := registry.Flatten(&testEvent{Name: "boot"}, nil, nil)
	assert.Nil(t, err)
	assert.EqualValues(t, map[string]interface{}{"seen": false, "name": "boot"}, actual)
}

func TestRegistry_CheckType(t *testing.T) {

	var testCases = []struct {
		description string
		declared    *Type
		value       interface{}
		valid       bool
	}{
		{
			description: "untyped accepts anything",
			declared:    nil,
			value:       struct{}{},
			valid:       true,
		},
		{
			description: "nil satisfies any declared type",
			declared:    TypeFor(reflect.TypeOf(&testEvent{})),
			value:       nil,
			valid:       true,
		},
		{
			description: "exact instance",
			declared:    TypeFor(reflect.TypeOf(&testEvent{})),
			value:       &testEvent{},
			valid:       true,
		},
		{
			description: "subtype instance",
			declared:    TypeFor(reflect.TypeOf(testAudited{})),
			value:       &testEvent{},
			valid:       true,
		},
		{
			description: "numeric widths are interchangeable",
			declared:    TypeFor(reflect.TypeOf(0)),
			value:       float64(1),
			valid:       true,
		},
		{
			description: "string is not numeric",
			declared:    TypeFor(reflect.TypeOf(0)),
			value:       "1",
			valid:       false,
		},
		{
			description: "plain sequence satisfies typed sequence",
			declared:    SliceOf(TypeFor(reflect.TypeOf(testEvent{}))),
			value:       []interface{}{},
			valid:       true,
		},
		{
			description: "mapping does not satisfy record",
			declared:    TypeFor(reflect.TypeOf(&testEvent{})),
			value:       map[string]interface{}{},
			valid:       false,
		},
	}

	registry := NewRegistry()
	for _, testCase := range testCases {
		err := registry.CheckType(testCase.declared, testCase.value)
		if testCase.valid {
			assert.Nil(t, err, testCase.description)
		} else {
			assert.NotNil(t, err, testCase.description)
		}
	}
}
