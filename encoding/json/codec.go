//Package json renders primitive trees produced by flatty as JSON documents
//and parses JSON documents back into primitive trees. Object keys are written
//in ascending order so the output is deterministic.
package json

import (
	"github.com/francoispqt/gojay"
	"github.com/viant/flatty"
	"github.com/viant/flatty/visitor"
)

type (
	treeObject map[string]interface{}
	treeArray  []interface{}
)

//Marshal renders a primitive tree as JSON
func Marshal(tree interface{}) ([]byte, error) {
	switch actual := tree.(type) {
	case nil:
		return []byte("null"), nil
	case map[string]interface{}:
		return gojay.MarshalJSONObject(treeObject(actual))
	case []interface{}:
		return gojay.MarshalJSONArray(treeArray(actual))
	}
	return gojay.Marshal(tree)
}

//Unmarshal parses a JSON document into a primitive tree
func Unmarshal(data []byte) (interface{}, error) {
	var tree interface{}
	if err := gojay.Unmarshal(data, &tree); err != nil {
		return nil, err
	}
	return tree, nil
}

//MarshalObject flattens supplied value and renders the tree as JSON
func MarshalObject(value interface{}, opts ...flatty.Option) ([]byte, error) {
	tree, err := flatty.Flatten(value, opts...)
	if err != nil {
		return nil, err
	}
	return Marshal(tree)
}

//UnmarshalObject parses a JSON document and reconstructs a typed value for
//supplied declared type
func UnmarshalObject(data []byte, declared *flatty.Type, opts ...flatty.Option) (interface{}, error) {
	tree, err := Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return flatty.Unflatten(tree, declared, opts...)
}

func (o treeObject) IsNil() bool {
	return o == nil
}

func (o treeObject) MarshalJSONObject(enc *gojay.Encoder) {
	visit, err := visitor.Mapping(map[string]interface{}(o))
	if err != nil {
		return
	}
	_ = visit(func(key string, element any) (bool, error) {
		encodeKey(enc, key, element)
		return true, nil
	})
}

func (a treeArray) IsNil() bool {
	return a == nil
}

func (a treeArray) MarshalJSONArray(enc *gojay.Encoder) {
	for _, element := range a {
		encodeItem(enc, element)
	}
}

func encodeKey(enc *gojay.Encoder, key string, value interface{}) {
	switch actual := value.(type) {
	case nil:
		enc.AddNullKey(key)
	case map[string]interface{}:
		enc.AddObjectKey(key, treeObject(actual))
	case []interface{}:
		enc.AddArrayKey(key, treeArray(actual))
	case string:
		enc.AddStringKey(key, actual)
	case bool:
		enc.AddBoolKey(key, actual)
	case int:
		enc.AddIntKey(key, actual)
	case int64:
		enc.AddIntKey(key, int(actual))
	case float64:
		enc.AddFloatKey(key, actual)
	default:
		enc.AddInterfaceKey(key, value)
	}
}

func encodeItem(enc *gojay.Encoder, value interface{}) {
	switch actual := value.(type) {
	case nil:
		enc.AddNull()
	case map[string]interface{}:
		enc.AddObject(treeObject(actual))
	case []interface{}:
		enc.AddArray(treeArray(actual))
	case string:
		enc.AddString(actual)
	case bool:
		enc.AddBool(actual)
	case int:
		enc.AddInt(actual)
	case int64:
		enc.AddInt(int(actual))
	case float64:
		enc.AddFloat(actual)
	default:
		enc.AddInterface(value)
	}
}
