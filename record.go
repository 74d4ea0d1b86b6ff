package flatty

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/viant/flatty/visitor"
	"github.com/viant/tagly/format"
	"github.com/viant/xunsafe"
)

type (
	fieldPath struct {
		field *xunsafe.Field
		rType reflect.Type
		isPtr bool
	}

	recordField struct {
		chain    []*fieldPath
		name     string
		declared *Type
	}

	//recordType holds registration time metadata of a record: the statically
	//declared attribute list with output names and declared attribute types
	recordType struct {
		rType  reflect.Type
		fields []*recordField
		index  map[string]int
	}
)

var recordTypes = visitor.NewSyncMap[reflect.Type, *recordType]()

//recordTypeOf returns cached record metadata for supplied type
func recordTypeOf(rType reflect.Type) (*recordType, error) {
	structType := ensureStruct(rType)
	if structType == nil {
		return nil, fmt.Errorf("expected record type, got %s", rType.String())
	}
	return recordTypes.GetOrPut(structType, func() *recordType {
		return newRecordType(structType, nil)
	}), nil
}

func newRecordType(structType reflect.Type, ancestors []*fieldPath) *recordType {
	ret := &recordType{rType: structType, index: map[string]int{}}
	xStruct := xunsafe.NewStruct(structType)
	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		if !field.IsExported() && !field.Anonymous {
			continue
		}
		switch field.Type.Kind() {
		case reflect.Func, reflect.Chan, reflect.UnsafePointer:
			continue
		}
		tag := fieldTag(field.Tag)
		if tag.Ignore {
			continue
		}
		aPath := &fieldPath{field: &xStruct.Fields[i], rType: field.Type, isPtr: field.Type.Kind() == reflect.Ptr}
		if field.Anonymous {
			//an embed named by an unexported type still promotes its
			//exported fields
			if embedded := ensureStruct(field.Type); embedded != nil && !isTemporal(embedded) {
				sub := newRecordType(embedded, append(append([]*fieldPath{}, ancestors...), aPath))
				for _, promoted := range sub.fields {
					ret.add(promoted)
				}
				continue
			}
		}
		if !field.IsExported() {
			continue
		}
		name := field.Name
		if tag.Name != "" {
			name = tag.Name
		}
		ret.add(&recordField{
			chain:    append(append([]*fieldPath{}, ancestors...), aPath),
			name:     name,
			declared: TypeFor(field.Type),
		})
	}
	return ret
}

func (t *recordType) add(field *recordField) {
	if _, ok := t.index[field.name]; ok {
		return
	}
	t.index[field.name] = len(t.fields)
	t.fields = append(t.fields, field)
}

func (t *recordType) lookup(name string) *recordField {
	index, ok := t.index[name]
	if !ok {
		return nil
	}
	return t.fields[index]
}

func fieldTag(tag reflect.StructTag) *format.Tag {
	ret, _ := format.Parse(tag)
	if ret == nil {
		ret = &format.Tag{}
	}
	return ret
}

func isTemporal(structType reflect.Type) bool {
	switch structType {
	case timeType, dateType, timeOfDayType:
		return true
	}
	return false
}

func (f *recordField) leaf() *fieldPath {
	return f.chain[len(f.chain)-1]
}

//upstream walks the embed chain down to the leaf holder pointer; ok is false
//when a nil pointer embed makes the leaf unreachable
func (f *recordField) upstream(ptr unsafe.Pointer) (unsafe.Pointer, bool) {
	for _, aPath := range f.chain[:len(f.chain)-1] {
		if aPath.isPtr {
			if aPath.field.IsNil(ptr) {
				return nil, false
			}
			ptr = xunsafe.DerefPointer(aPath.field.Pointer(ptr))
			continue
		}
		ptr = aPath.field.Pointer(ptr)
	}
	return ptr, true
}

//value reads the current field value; a nil pointer embed reads as nil
func (f *recordField) value(ptr unsafe.Pointer) interface{} {
	holder, ok := f.upstream(ptr)
	if !ok {
		return nil
	}
	return f.leaf().field.Value(holder)
}

//set assigns value onto the field, allocating nil pointer embeds on the way
func (f *recordField) set(ptr unsafe.Pointer, value interface{}) error {
	for _, aPath := range f.chain[:len(f.chain)-1] {
		if aPath.isPtr {
			if aPath.field.IsNil(ptr) {
				aPath.field.SetValue(ptr, reflect.New(derefType(aPath.rType)).Interface())
			}
			ptr = xunsafe.DerefPointer(aPath.field.Pointer(ptr))
			continue
		}
		ptr = aPath.field.Pointer(ptr)
	}
	return f.assign(ptr, value)
}

func (f *recordField) assign(holder unsafe.Pointer, value interface{}) error {
	leaf := f.leaf().field
	dest := reflect.NewAt(leaf.Type, leaf.Pointer(holder)).Elem()
	if value == nil {
		dest.Set(reflect.Zero(leaf.Type))
		return nil
	}
	src := reflect.ValueOf(value)
	switch {
	case src.Type().AssignableTo(leaf.Type):
		dest.Set(src)
	case convertibleValue(src.Type(), leaf.Type):
		dest.Set(src.Convert(leaf.Type))
	case leaf.Type.Kind() == reflect.Ptr && src.Type().AssignableTo(leaf.Type.Elem()):
		holderPtr := reflect.New(leaf.Type.Elem())
		holderPtr.Elem().Set(src)
		dest.Set(holderPtr)
	case leaf.Type.Kind() == reflect.Ptr && convertibleValue(src.Type(), leaf.Type.Elem()):
		holderPtr := reflect.New(leaf.Type.Elem())
		holderPtr.Elem().Set(src.Convert(leaf.Type.Elem()))
		dest.Set(holderPtr)
	case src.Kind() == reflect.Ptr && src.Type().Elem().AssignableTo(leaf.Type):
		dest.Set(src.Elem())
	case src.Kind() == reflect.Ptr && convertibleValue(src.Type().Elem(), leaf.Type):
		dest.Set(src.Elem().Convert(leaf.Type))
	default:
		return NewTypeMismatch(value, f.declared)
	}
	return nil
}

//RecordConverter flattens and unflattens record instances attribute by
//attribute; any struct type routes here unless a more specific converter has
//been registered for it.
type RecordConverter struct{}

//CheckType accepts nil or an instance of declared record type or any of its
//subtypes
func (c *RecordConverter) CheckType(registry *Registry, declared *Type, value interface{}) error {
	if isNilValue(value) {
		return nil
	}
	runtime := TypeOf(value).base()
	target := declared.base()
	if runtime.Equals(target) || runtime.isSubtypeOf(target) {
		return nil
	}
	return NewTypeMismatch(value, declared)
}

//ToFlat converts a record instance into a map of flattened attributes,
//merging into existing sub trees when supplied
func (c *RecordConverter) ToFlat(registry *Registry, declared *Type, value, existing interface{}) (interface{}, error) {
	if isNilValue(value) {
		return nil, nil
	}
	rType := declared.Type()
	if rType == nil {
		rType = reflect.TypeOf(value)
	}
	recType, err := recordTypeOf(rType)
	if err != nil {
		return nil, err
	}
	out, _ := existing.(map[string]interface{})
	if out == nil {
		out = map[string]interface{}{}
	}
	ptr := holderPointer(value)
	for _, field := range recType.fields {
		attrValue := field.value(ptr)
		if isNilValue(attrValue) {
			attrValue = nil
		}
		if err := registry.CheckType(field.declared, attrValue); err != nil {
			return nil, err
		}
		flat, err := registry.Flatten(attrValue, field.declared, out[field.name])
		if err != nil {
			return nil, err
		}
		out[field.name] = flat
	}
	return out, nil
}

//ToObject reconstructs a record instance from a map of flattened attributes;
//attributes absent from the tree leave the instance untouched
func (c *RecordConverter) ToObject(registry *Registry, declared *Type, tree, existing interface{}) (interface{}, error) {
	if tree == nil {
		return nil, nil
	}
	treeMap, ok := tree.(map[string]interface{})
	if !ok {
		return nil, NewTypeMismatch(tree, declared)
	}
	structType := ensureStruct(declared.Type())
	if structType == nil {
		return nil, fmt.Errorf("expected record type, got %s", declared.Name())
	}
	recType, err := recordTypeOf(structType)
	if err != nil {
		return nil, err
	}
	var holder reflect.Value
	asValue := false
	switch {
	case isNilValue(existing):
		holder = reflect.New(structType)
		asValue = declared.Type().Kind() != reflect.Ptr
	default:
		rValue := reflect.ValueOf(existing)
		if rValue.Kind() == reflect.Ptr {
			holder = rValue
		} else {
			holder = reflect.New(structType)
			holder.Elem().Set(rValue)
			asValue = true
		}
	}
	ptr := holder.UnsafePointer()
	for _, field := range recType.fields {
		raw, ok := treeMap[field.name]
		if !ok {
			continue
		}
		attrValue, err := registry.Unflatten(raw, field.declared, field.value(ptr))
		if err != nil {
			return nil, err
		}
		if err := registry.CheckType(field.declared, attrValue); err != nil {
			return nil, err
		}
		if isNilValue(attrValue) {
			attrValue = nil
		}
		if err := field.set(ptr, attrValue); err != nil {
			return nil, err
		}
	}
	if asValue {
		return holder.Elem().Interface(), nil
	}
	return holder.Interface(), nil
}

//convertibleValue returns true for value preserving conversions: numeric to
//numeric and same kind named type conversions; rune style cross kind
//conversions such as int to string are rejected
func convertibleValue(src, dest reflect.Type) bool {
	if !src.ConvertibleTo(dest) {
		return false
	}
	if isNumericKind(src.Kind()) && isNumericKind(dest.Kind()) {
		return true
	}
	return src.Kind() == dest.Kind()
}

func holderPointer(value interface{}) unsafe.Pointer {
	rValue := reflect.ValueOf(value)
	if rValue.Kind() == reflect.Ptr {
		return xunsafe.AsPointer(value)
	}
	holder := reflect.New(rValue.Type())
	holder.Elem().Set(rValue)
	return holder.UnsafePointer()
}
