package json

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/flatty"
)

func TestMarshal(t *testing.T) {

	var testCases = []struct {
		description string
		tree        interface{}
		expect      string
	}{
		{
			description: "keys in ascending order",
			tree: map[string]interface{}{
				"b": 1,
				"a": "x",
				"c": nil,
			},
			expect: `{"a":"x","b":1,"c":null}`,
		},
		{
			description: "nested containers",
			tree: map[string]interface{}{
				"items": []interface{}{1, true, nil, "a"},
				"inner": map[string]interface{}{"k": "v"},
			},
			expect: `{"inner":{"k":"v"},"items":[1,true,null,"a"]}`,
		},
		{
			description: "top level sequence",
			tree:        []interface{}{map[string]interface{}{"a": 1}},
			expect:      `[{"a":1}]`,
		},
		{
			description: "null tree",
			tree:        nil,
			expect:      `null`,
		},
		{
			description: "scalar tree",
			tree:        "abc",
			expect:      `"abc"`,
		},
	}

	for _, testCase := range testCases {
		actual, err := Marshal(testCase.tree)
		if !assert.Nil(t, err, testCase.description) {
			continue
		}
		assert.Equal(t, testCase.expect, string(actual), testCase.description)
	}
}

func TestUnmarshal(t *testing.T) {
	tree, err := Unmarshal([]byte(`{"a":1,"b":[true,null],"c":{"d":"x"}}`))
	assert.Nil(t, err)
	assert.EqualValues(t, map[string]interface{}{
		"a": float64(1),
		"b": []interface{}{true, nil},
		"c": map[string]interface{}{"d": "x"},
	}, tree)
}

func TestObjectRoundTrip(t *testing.T) {
	type point struct {
		X int `format:"name=x"`
		Y int `format:"name=y"`
	}

	data, err := MarshalObject(&point{X: 3, Y: 4})
	assert.Nil(t, err)
	assert.Equal(t, `{"x":3,"y":4}`, string(data))

	restored, err := UnmarshalObject(data, flatty.TypeFor(reflect.TypeOf(&point{})))
	assert.Nil(t, err)
	assert.EqualValues(t, &point{X: 3, Y: 4}, restored)
}

func TestUnmarshalObject_Merge(t *testing.T) {
	type profile struct {
		Name string `format:"name=name"`
		Age  int    `format:"name=age"`
	}
	existing := &profile{Name: "ann", Age: 30}
	restored, err := UnmarshalObject([]byte(`{"age":31}`), flatty.TypeFor(reflect.TypeOf(&profile{})), flatty.WithTarget(existing))
	assert.Nil(t, err)
	assert.Same(t, existing, restored)
	assert.Equal(t, 31, existing.Age)
	assert.Equal(t, "ann", existing.Name)
}
