package flatty

import (
	"reflect"
	"sync"
)

type (
	entry struct {
		key   *Type
		conv  Converter
		exact bool
	}

	//Registry is a dispatch table from declared type to converter. Lookup
	//consults exact name matches first, then subtype eligible entries, then
	//the built-in kind wildcards, each group in registration order, so
	//dispatch is deterministic. Registration with a structurally equal key
	//replaces the previous entry in place, keeping one converter per
	//structural type key.
	Registry struct {
		mu      sync.RWMutex
		entries []*entry
	}

	registerOptions struct {
		subtypes bool
	}

	//RegisterOption represents a registration option
	RegisterOption func(o *registerOptions)
)

//WithSubtypes makes a registry entry match any strict subtype of its key in
//addition to the key itself
func WithSubtypes() RegisterOption {
	return func(o *registerOptions) {
		o.subtypes = true
	}
}

//Built-in registry keys; one entry per container kind covers both the typed
//and the plain untyped collection forms.
var (
	AnyRecord   = anyOfKind("record", reflect.Struct)
	AnySequence = anyOfKind("sequence", reflect.Slice)
	AnyMapping  = anyOfKind("mapping", reflect.Map)
)

//NewRegistry creates a registry with the built-in converters registered
func NewRegistry() *Registry {
	ret := &Registry{}
	ret.Register(TypeFor(dateType), &dateConverter{})
	ret.Register(TypeFor(timeType), &dateTimeConverter{})
	ret.Register(TypeFor(timeOfDayType), &timeOfDayConverter{})
	ret.Register(AnySequence, &SequenceConverter{})
	ret.Register(AnyMapping, &MappingConverter{})
	ret.Register(AnyRecord, &RecordConverter{}, WithSubtypes())
	return ret
}

//Register installs or overwrites the converter entry for supplied type key;
//last write wins
func (r *Registry) Register(key *Type, conv Converter, opts ...RegisterOption) {
	options := &registerOptions{}
	for _, opt := range opts {
		opt(options)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, candidate := range r.entries {
		if candidate.key.Equals(key) {
			candidate.conv = conv
			candidate.exact = !options.subtypes
			return
		}
	}
	r.entries = append(r.entries, &entry{key: key, conv: conv, exact: !options.subtypes})
}

//Unregister removes the entry for supplied type key if present
func (r *Registry) Unregister(key *Type) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, candidate := range r.entries {
		if candidate.key.Equals(key) {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return
		}
	}
}

//converterFor resolves a converter for supplied declared type; exact name
//matches are consulted first, then subtype eligible entries, then the kind
//wildcards as a backstop, each group in registration order; nil means
//identity pass-through
func (r *Registry) converterFor(declared *Type) Converter {
	if declared == nil {
		return nil
	}
	candidate := declared.base()
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, item := range r.entries {
		if item.exact && item.key.anyKind == reflect.Invalid && candidate.Equals(item.key) {
			return item.conv
		}
	}
	for _, item := range r.entries {
		if item.exact || item.key.anyKind != reflect.Invalid {
			continue
		}
		if candidate.isSubtypeOf(item.key) {
			return item.conv
		}
	}
	for _, item := range r.entries {
		if item.key.anyKind != reflect.Invalid && candidate.Kind() == item.key.anyKind {
			return item.conv
		}
	}
	return nil
}

//Flatten converts value to a primitive tree; declared defaults to the value
//runtime type, existing is an optional sub tree merged into
func (r *Registry) Flatten(value interface{}, declared *Type, existing interface{}) (interface{}, error) {
	if declared == nil {
		declared = TypeOf(value)
	}
	conv := r.converterFor(declared)
	if conv == nil {
		return flatScalar(value), nil
	}
	return conv.ToFlat(r, declared, value, existing)
}

//flatScalar normalizes a pass-through value for the primitive tree: a pointer
//to a scalar is dereferenced, a nil pointer becomes nil
func flatScalar(value interface{}) interface{} {
	rValue := reflect.ValueOf(value)
	if !rValue.IsValid() || rValue.Kind() != reflect.Ptr {
		return value
	}
	if rValue.IsNil() {
		return nil
	}
	switch rValue.Elem().Kind() {
	case reflect.Bool, reflect.String:
		return rValue.Elem().Interface()
	}
	if isNumericKind(rValue.Elem().Kind()) {
		return rValue.Elem().Interface()
	}
	return value
}

//Unflatten reconstructs a typed value from a primitive tree, optionally
//merging onto an existing instance
func (r *Registry) Unflatten(tree interface{}, declared *Type, existing interface{}) (interface{}, error) {
	conv := r.converterFor(declared)
	if conv == nil {
		return tree, nil
	}
	return conv.ToObject(r, declared, tree, existing)
}

//CheckType returns nil when value satisfies declared type; delegates to the
//resolved converter type check when one exists, otherwise performs the
//baseline instance check
func (r *Registry) CheckType(declared *Type, value interface{}) error {
	if declared == nil {
		return nil
	}
	if conv := r.converterFor(declared); conv != nil {
		return conv.CheckType(r, declared, value)
	}
	return checkAssignable(declared, value)
}

//checkAssignable is the baseline type check: value must be nil or an instance
//of declared type; numeric kinds are mutually acceptable since primitive
//trees do not preserve numeric width
func checkAssignable(declared *Type, value interface{}) error {
	if declared == nil || isNilValue(value) {
		return nil
	}
	runtime := TypeOf(value).base()
	target := declared.base()
	if runtime.Equals(target) || runtime.isSubtypeOf(target) {
		return nil
	}
	if runtime.rType != nil && target.rType != nil {
		if isNumericKind(runtime.rType.Kind()) && isNumericKind(target.rType.Kind()) {
			return nil
		}
		if runtime.rType.AssignableTo(target.rType) {
			return nil
		}
	}
	return NewTypeMismatch(value, declared)
}

func isNumericKind(kind reflect.Kind) bool {
	switch kind {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

//Default is the process wide registry used by the package level entry points
var Default = NewRegistry()

//Register installs a converter in the default registry
func Register(key *Type, conv Converter, opts ...RegisterOption) {
	Default.Register(key, conv, opts...)
}

//Unregister removes a converter from the default registry
func Unregister(key *Type) {
	Default.Unregister(key)
}
