package flatty

//Converter implements type checking, flattening and unflattening for one
//declared type. Converters never call each other directly; nested values are
//always dispatched back through the registry so that user registrations take
//effect at every level.
type Converter interface {
	//CheckType returns nil when value satisfies declared type
	CheckType(registry *Registry, declared *Type, value interface{}) error

	//ToFlat converts value to a primitive tree, optionally merging into an
	//existing sub tree
	ToFlat(registry *Registry, declared *Type, value, existing interface{}) (interface{}, error)

	//ToObject reconstructs a typed value from a primitive tree, optionally
	//merging onto an existing instance
	ToObject(registry *Registry, declared *Type, tree, existing interface{}) (interface{}, error)
}
