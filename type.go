package flatty

import (
	"reflect"
	"sort"
	"strings"
	"time"
)

var (
	timeType      = reflect.TypeOf(time.Time{})
	interfaceType = reflect.TypeOf((*interface{})(nil)).Elem()
)

//Type represents a declared conversion type; a nil *Type means untyped
//(identity pass-through). Container types carry their element type as an
//explicit parameter, heterogeneous templates carry per-position or per-key
//element types. Types compare structurally by canonical name, never by
//pointer identity.
type Type struct {
	name    string
	rType   reflect.Type
	elem    *Type
	items   []*Type
	entries map[string]*Type
	anyKind reflect.Kind
}

//TypeOf returns the declared type matching the runtime type of supplied value
func TypeOf(value interface{}) *Type {
	if value == nil {
		return nil
	}
	return TypeFor(reflect.TypeOf(value))
}

//TypeFor returns a declared type for supplied reflect type
func TypeFor(rType reflect.Type) *Type {
	if rType == nil || rType == interfaceType {
		return nil
	}
	ret := &Type{name: rType.String(), rType: rType}
	switch derefType(rType).Kind() {
	case reflect.Slice, reflect.Map:
		ret.elem = TypeFor(derefType(rType).Elem())
	}
	return ret
}

//SliceOf returns a typed sequence type with supplied element type
func SliceOf(elem *Type) *Type {
	ret := &Type{name: "[]" + elem.Name(), elem: elem}
	if elem.Type() != nil {
		ret.rType = reflect.SliceOf(elem.rType)
	} else {
		ret.rType = reflect.TypeOf([]interface{}{})
	}
	return ret
}

//MapOf returns a typed mapping type with supplied element type
func MapOf(elem *Type) *Type {
	ret := &Type{name: "map[string]" + elem.Name(), elem: elem}
	if elem.Type() != nil {
		ret.rType = reflect.MapOf(reflect.TypeOf(""), elem.rType)
	} else {
		ret.rType = reflect.TypeOf(map[string]interface{}{})
	}
	return ret
}

//Tuple returns a heterogeneous sequence template; element types are resolved
//by position
func Tuple(items ...*Type) *Type {
	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Name())
	}
	return &Type{
		name:  "(" + strings.Join(names, ",") + ")",
		rType: reflect.TypeOf([]interface{}{}),
		items: items,
	}
}

//Template returns a heterogeneous mapping template; element types are
//resolved by key
func Template(entries map[string]*Type) *Type {
	names := make([]string, 0, len(entries))
	for key, entry := range entries {
		names = append(names, key+":"+entry.Name())
	}
	sort.Strings(names)
	return &Type{
		name:    "{" + strings.Join(names, ",") + "}",
		rType:   reflect.TypeOf(map[string]interface{}{}),
		entries: entries,
	}
}

func anyOfKind(name string, kind reflect.Kind) *Type {
	return &Type{name: name, anyKind: kind}
}

//Name returns type canonical name
func (t *Type) Name() string {
	if t == nil {
		return "untyped"
	}
	return t.name
}

//Type returns underlying reflect type or nil
func (t *Type) Type() reflect.Type {
	if t == nil {
		return nil
	}
	return t.rType
}

//Elem returns container element type
func (t *Type) Elem() *Type {
	if t == nil {
		return nil
	}
	return t.elem
}

//Kind returns pointer normalized reflect kind
func (t *Type) Kind() reflect.Kind {
	if t == nil {
		return reflect.Invalid
	}
	if t.anyKind != reflect.Invalid {
		return t.anyKind
	}
	if t.rType == nil {
		return reflect.Invalid
	}
	return derefType(t.rType).Kind()
}

//Equals returns true when both types have matching canonical names
func (t *Type) Equals(other *Type) bool {
	if t == nil || other == nil {
		return t == nil && other == nil
	}
	return t.name == other.name
}

//ElementType resolves a sequence element type for supplied position; the
//attached element type wins unconditionally, then a positional template
//entry, otherwise nil (untyped)
func (t *Type) ElementType(index int) *Type {
	if t == nil {
		return nil
	}
	if t.elem != nil {
		return t.elem
	}
	if index < len(t.items) {
		return t.items[index]
	}
	return nil
}

//EntryType resolves a mapping element type for supplied key
func (t *Type) EntryType(key string) *Type {
	if t == nil {
		return nil
	}
	if t.elem != nil {
		return t.elem
	}
	if entry, ok := t.entries[key]; ok {
		return entry
	}
	return nil
}

//base returns pointer normalized lookup candidate
func (t *Type) base() *Type {
	if t == nil || t.rType == nil || t.rType.Kind() != reflect.Ptr {
		return t
	}
	ret := TypeFor(derefType(t.rType))
	ret.elem, ret.items, ret.entries = t.elem, t.items, t.entries
	return ret
}

//isSubtypeOf returns true if t is an equal or strict subtype of key; ancestry
//covers the full struct embedding chain and interface satisfaction
func (t *Type) isSubtypeOf(key *Type) bool {
	if t == nil || key == nil {
		return false
	}
	if key.anyKind != reflect.Invalid {
		return t.Kind() == key.anyKind
	}
	if t.Equals(key) {
		return true
	}
	if t.rType == nil || key.rType == nil {
		return false
	}
	candidate := derefType(t.rType)
	if key.rType.Kind() == reflect.Interface {
		return candidate.Implements(key.rType) || reflect.PtrTo(candidate).Implements(key.rType)
	}
	return hasAncestor(candidate, derefType(key.rType))
}

//hasAncestor walks the embedded field chain of a struct type
func hasAncestor(candidate, target reflect.Type) bool {
	if candidate == target {
		return true
	}
	if candidate.Kind() != reflect.Struct {
		return false
	}
	for i := 0; i < candidate.NumField(); i++ {
		field := candidate.Field(i)
		if !field.Anonymous {
			continue
		}
		if hasAncestor(derefType(field.Type), target) {
			return true
		}
	}
	return false
}

func derefType(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t
}

func ensureStruct(t reflect.Type) reflect.Type {
	switch t.Kind() {
	case reflect.Struct:
		return t
	case reflect.Ptr:
		return ensureStruct(t.Elem())
	}
	return nil
}

func isNilValue(value interface{}) bool {
	if value == nil {
		return true
	}
	switch rValue := reflect.ValueOf(value); rValue.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface:
		return rValue.IsNil()
	}
	return false
}
