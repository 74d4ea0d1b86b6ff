package flatty

import (
	"fmt"
	"reflect"
)

//TypeMismatchError indicates a runtime value that does not satisfy a declared
//type during check, flatten or unflatten
type TypeMismatchError struct {
	Actual   string
	Expected string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch: %v != %v", e.Actual, e.Expected)
}

//NewTypeMismatch creates a type mismatch error naming actual and expected type
func NewTypeMismatch(value interface{}, expected *Type) *TypeMismatchError {
	actual := "nil"
	if rType := reflect.TypeOf(value); rType != nil {
		actual = rType.String()
	}
	return &TypeMismatchError{Actual: actual, Expected: expected.Name()}
}

//UnresolvableElementTypeError indicates a container element whose target type
//cannot be determined during unflattening
type UnresolvableElementTypeError struct {
	Value interface{}
}

func (e *UnresolvableElementTypeError) Error() string {
	return fmt.Sprintf("unable to resolve element type for: %v", e.Value)
}

//FormatError indicates a scalar literal that does not parse under the
//expected layout
type FormatError struct {
	Literal string
	Layout  string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid literal %q for layout %q", e.Literal, e.Layout)
}

//UndeclaredAttributeError indicates an access to an attribute not declared on
//a record type
type UndeclaredAttributeError struct {
	Owner string
	Name  string
}

func (e *UndeclaredAttributeError) Error() string {
	return fmt.Sprintf("undeclared attribute %v on %v", e.Name, e.Owner)
}
