package flatty

import (
	"reflect"

	"github.com/viant/flatty/visitor"
)

//SequenceConverter converts homogeneous sequences element-wise; the element
//type comes from the declared container type tag or, for heterogeneous
//templates, positionally.
type SequenceConverter struct{}

//CheckType accepts the declared container type, any plain sequence or nil
func (c *SequenceConverter) CheckType(registry *Registry, declared *Type, value interface{}) error {
	if isNilValue(value) {
		return nil
	}
	if reflect.TypeOf(value).Kind() == reflect.Slice {
		return nil
	}
	return NewTypeMismatch(value, declared)
}

func (c *SequenceConverter) ToFlat(registry *Registry, declared *Type, value, existing interface{}) (interface{}, error) {
	if isNilValue(value) {
		return nil, nil
	}
	if err := c.CheckType(registry, declared, value); err != nil {
		return nil, err
	}
	visit, err := visitor.Sequence(value)
	if err != nil {
		return nil, NewTypeMismatch(value, declared)
	}
	existingSeq, _ := existing.([]interface{})
	out := []interface{}{}
	err = visit(func(index int, element any) (bool, error) {
		if isNilValue(element) {
			element = nil
		}
		elemType := declared.ElementType(index)
		if err := registry.CheckType(elemType, element); err != nil {
			return false, err
		}
		var sub interface{}
		if index < len(existingSeq) {
			sub = existingSeq[index]
		}
		flat, err := registry.Flatten(element, elemType, sub)
		if err != nil {
			return false, err
		}
		out = append(out, flat)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *SequenceConverter) ToObject(registry *Registry, declared *Type, tree, existing interface{}) (interface{}, error) {
	if tree == nil {
		return nil, nil
	}
	visit, err := visitor.Sequence(tree)
	if err != nil {
		return nil, NewTypeMismatch(tree, declared)
	}
	sliceType := declared.Type()
	if sliceType == nil || derefType(sliceType).Kind() != reflect.Slice {
		sliceType = reflect.TypeOf([]interface{}{})
	}
	result := reflect.MakeSlice(derefType(sliceType), 0, 0)
	if !isNilValue(existing) && reflect.TypeOf(existing).Kind() == reflect.Slice {
		result = reflect.ValueOf(existing)
	}
	itemType := result.Type().Elem()
	err = visit(func(index int, element any) (bool, error) {
		elemType := declared.ElementType(index)
		if elemType == nil {
			return false, &UnresolvableElementTypeError{Value: element}
		}
		item, err := registry.Unflatten(element, elemType, nil)
		if err != nil {
			return false, err
		}
		if err := registry.CheckType(elemType, item); err != nil {
			return false, err
		}
		itemValue, err := coerceValue(item, itemType, elemType)
		if err != nil {
			return false, err
		}
		result = reflect.Append(result, itemValue)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return result.Interface(), nil
}

//MappingConverter converts homogeneous mappings entry-wise; the element type
//comes from the declared container type tag or, for heterogeneous templates,
//by key. Mapping keys must be strings per the primitive tree contract.
type MappingConverter struct{}

//CheckType accepts the declared container type, any plain mapping or nil
func (c *MappingConverter) CheckType(registry *Registry, declared *Type, value interface{}) error {
	if isNilValue(value) {
		return nil
	}
	if reflect.TypeOf(value).Kind() == reflect.Map {
		return nil
	}
	return NewTypeMismatch(value, declared)
}

func (c *MappingConverter) ToFlat(registry *Registry, declared *Type, value, existing interface{}) (interface{}, error) {
	if isNilValue(value) {
		return nil, nil
	}
	if err := c.CheckType(registry, declared, value); err != nil {
		return nil, err
	}
	visit, err := visitor.Mapping(value)
	if err != nil {
		return nil, NewTypeMismatch(value, declared)
	}
	out, _ := existing.(map[string]interface{})
	if out == nil {
		out = map[string]interface{}{}
	}
	err = visit(func(key string, element any) (bool, error) {
		if isNilValue(element) {
			element = nil
		}
		elemType := declared.EntryType(key)
		if err := registry.CheckType(elemType, element); err != nil {
			return false, err
		}
		flat, err := registry.Flatten(element, elemType, out[key])
		if err != nil {
			return false, err
		}
		out[key] = flat
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *MappingConverter) ToObject(registry *Registry, declared *Type, tree, existing interface{}) (interface{}, error) {
	if tree == nil {
		return nil, nil
	}
	visit, err := visitor.Mapping(tree)
	if err != nil {
		return nil, NewTypeMismatch(tree, declared)
	}
	mapType := declared.Type()
	if mapType == nil || derefType(mapType).Kind() != reflect.Map {
		mapType = reflect.TypeOf(map[string]interface{}{})
	}
	result := reflect.MakeMap(derefType(mapType))
	if !isNilValue(existing) && reflect.TypeOf(existing).Kind() == reflect.Map {
		result = reflect.ValueOf(existing)
	}
	itemType := result.Type().Elem()
	err = visit(func(key string, element any) (bool, error) {
		elemType := declared.EntryType(key)
		if elemType == nil {
			return false, &UnresolvableElementTypeError{Value: element}
		}
		item, err := registry.Unflatten(element, elemType, valueAt(result, key))
		if err != nil {
			return false, err
		}
		if err := registry.CheckType(elemType, item); err != nil {
			return false, err
		}
		itemValue, err := coerceValue(item, itemType, elemType)
		if err != nil {
			return false, err
		}
		result.SetMapIndex(reflect.ValueOf(key), itemValue)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return result.Interface(), nil
}

func valueAt(aMap reflect.Value, key string) interface{} {
	item := aMap.MapIndex(reflect.ValueOf(key))
	if !item.IsValid() {
		return nil
	}
	return item.Interface()
}

//coerceValue adjusts an unflattened element to the container item type
func coerceValue(value interface{}, itemType reflect.Type, declared *Type) (reflect.Value, error) {
	if value == nil {
		return reflect.Zero(itemType), nil
	}
	src := reflect.ValueOf(value)
	switch {
	case src.Type().AssignableTo(itemType):
		return src, nil
	case convertibleValue(src.Type(), itemType):
		return src.Convert(itemType), nil
	case itemType.Kind() == reflect.Ptr && src.Type().AssignableTo(itemType.Elem()):
		holder := reflect.New(itemType.Elem())
		holder.Elem().Set(src)
		return holder, nil
	case src.Kind() == reflect.Ptr && src.Type().Elem().AssignableTo(itemType):
		return src.Elem(), nil
	case src.Kind() == reflect.Ptr && convertibleValue(src.Type().Elem(), itemType):
		return src.Elem().Convert(itemType), nil
	}
	return reflect.Value{}, NewTypeMismatch(value, declared)
}
