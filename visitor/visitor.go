package visitor

//Visitor visits pairs of (key, element). The callback returning (false, nil)
//stops the visit early; a returned error stops the visit and is propagated.
type Visitor[K comparable, E any] func(func(key K, element E) (bool, error)) error
