package flatty

import (
	"fmt"
	"reflect"

	"github.com/viant/xunsafe"
	"unsafe"
)

//State provides name based access to record instance attributes; attribute
//names are the flattened output names, with the Go field name accepted as a
//fallback. Accessing an attribute not declared on the record type fails with
//UndeclaredAttributeError.
type State struct {
	recType *recordType
	value   interface{}
	ptr     unsafe.Pointer
}

//StateOf creates a state over supplied record instance pointer
func StateOf(value interface{}) (*State, error) {
	rType := reflect.TypeOf(value)
	if rType == nil || rType.Kind() != reflect.Ptr || rType.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("expected record pointer, got %T", value)
	}
	recType, err := recordTypeOf(rType)
	if err != nil {
		return nil, err
	}
	return &State{recType: recType, value: value, ptr: xunsafe.AsPointer(value)}, nil
}

//New populates a freshly allocated record instance with supplied attribute
//values; an undeclared attribute name is an error
func New(target interface{}, values map[string]interface{}) error {
	state, err := StateOf(target)
	if err != nil {
		return err
	}
	for name, value := range values {
		if err := state.SetValue(name, value); err != nil {
			return err
		}
	}
	return nil
}

//Type returns underlying record reflect type
func (s *State) Type() reflect.Type {
	return s.recType.rType
}

//State returns underlying record instance
func (s *State) State() interface{} {
	return s.value
}

//Fields returns declared attribute names in declaration order
func (s *State) Fields() []string {
	ret := make([]string, 0, len(s.recType.fields))
	for _, field := range s.recType.fields {
		ret = append(ret, field.name)
	}
	return ret
}

//Value returns the current value of a declared attribute
func (s *State) Value(name string) (interface{}, error) {
	field, err := s.lookup(name)
	if err != nil {
		return nil, err
	}
	return field.value(s.ptr), nil
}

//SetValue assigns a declared attribute; the value has to satisfy the
//attribute declared type
func (s *State) SetValue(name string, value interface{}) error {
	field, err := s.lookup(name)
	if err != nil {
		return err
	}
	if err := checkAssignable(field.declared, value); err != nil {
		return err
	}
	return field.set(s.ptr, value)
}

func (s *State) lookup(name string) (*recordField, error) {
	if field := s.recType.lookup(name); field != nil {
		return field, nil
	}
	for _, field := range s.recType.fields {
		if field.leaf().field.Name == name {
			return field, nil
		}
	}
	return nil, &UndeclaredAttributeError{Owner: s.recType.rType.String(), Name: name}
}
