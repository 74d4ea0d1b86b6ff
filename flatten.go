package flatty

type (
	session struct {
		registry *Registry
		declared *Type
		tree     interface{}
		target   interface{}
	}

	//Option represents a conversion option
	Option func(s *session)
)

//WithRegistry uses supplied registry instead of the default one
func WithRegistry(registry *Registry) Option {
	return func(s *session) {
		s.registry = registry
	}
}

//WithType overrides the declared type inferred from the flattened value
func WithType(declared *Type) Option {
	return func(s *session) {
		s.declared = declared
	}
}

//WithExistingTree merges flattened output into supplied sub tree
func WithExistingTree(tree interface{}) Option {
	return func(s *session) {
		s.tree = tree
	}
}

//WithTarget merges unflattened output onto supplied existing instance,
//preserving its identity for attributes absent from the tree
func WithTarget(target interface{}) Option {
	return func(s *session) {
		s.target = target
	}
}

func newSession(opts []Option) *session {
	ret := &session{registry: Default}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

//Flatten converts a typed value into a primitive tree of maps, sequences,
//scalars and nil; the declared type defaults to the value runtime type
func Flatten(value interface{}, opts ...Option) (interface{}, error) {
	sess := newSession(opts)
	return sess.registry.Flatten(value, sess.declared, sess.tree)
}

//Unflatten reconstructs a typed value from a primitive tree for supplied
//declared type
func Unflatten(tree interface{}, declared *Type, opts ...Option) (interface{}, error) {
	sess := newSession(opts)
	return sess.registry.Unflatten(tree, declared, sess.target)
}

//CheckType returns nil when value satisfies declared type
func CheckType(declared *Type, value interface{}, opts ...Option) error {
	sess := newSession(opts)
	return sess.registry.CheckType(declared, value)
}
