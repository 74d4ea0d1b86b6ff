//Package store defines the persistence boundary for flattened records: a
//store accepts the primitive tree produced by flatty.Flatten, assigns a
//backend generated identifier when the record has none, and reconstructs
//typed instances on load, merging onto previously loaded instances so that
//repeated loads of the same document preserve reference identity.
package store

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	"github.com/viant/flatty"
	"github.com/viant/tagly/format/text"
)

//ErrStaleDocument indicates the stored document changed since it was loaded
var ErrStaleDocument = errors.New("stored document is newer than the supplied document")

//Document is the embeddable base for stored records
type Document struct {
	ID string `format:"name=_id"`
}

//Store represents a document store boundary
type Store interface {
	//Store persists supplied record and returns its identifier
	Store(ctx context.Context, record interface{}) (string, error)

	//Load reconstructs a record of supplied declared type for an identifier
	Load(ctx context.Context, id string, declared *flatty.Type) (interface{}, error)
}

type (
	//Memory is an in process Store used for tests and as the reference
	//implementation of the boundary contract. Each loaded instance remembers
	//the document it came from; storing an instance whose source document has
	//been replaced in the meantime fails with ErrStaleDocument.
	Memory struct {
		mu          sync.RWMutex
		registry    *flatty.Registry
		collections map[string]map[string]map[string]interface{}
		loaded      map[string]interface{}
		origins     map[interface{}]map[string]interface{}
		seq         uint64
	}

	//Option represents a memory store option
	Option func(m *Memory)
)

//WithRegistry uses supplied converter registry instead of the default one
func WithRegistry(registry *flatty.Registry) Option {
	return func(m *Memory) {
		m.registry = registry
	}
}

//NewMemory creates an in memory store
func NewMemory(opts ...Option) *Memory {
	ret := &Memory{
		registry:    flatty.Default,
		collections: map[string]map[string]map[string]interface{}{},
		loaded:      map[string]interface{}{},
		origins:     map[interface{}]map[string]interface{}{},
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

//Store flattens and persists supplied record pointer; when the record
//identifier is unset a new one is generated and assigned back onto the
//record. Updating a document that changed since it was loaded fails with
//ErrStaleDocument.
func (m *Memory) Store(ctx context.Context, record interface{}) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if rType := reflect.TypeOf(record); rType == nil || rType.Kind() != reflect.Ptr {
		return "", fmt.Errorf("expected record pointer, got %T", record)
	}
	flattened, err := flatty.Flatten(record, flatty.WithRegistry(m.registry))
	if err != nil {
		return "", err
	}
	tree, ok := flattened.(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("expected record, got %T", record)
	}
	collection := collectionOf(reflect.TypeOf(record))
	id, _ := tree["_id"].(string)
	if id == "" {
		id = m.nextID()
		tree["_id"] = id
		state, err := flatty.StateOf(record)
		if err != nil {
			return "", err
		}
		if err := state.SetValue("_id", id); err != nil {
			return "", err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	documents, ok := m.collections[collection]
	if !ok {
		documents = map[string]map[string]interface{}{}
		m.collections[collection] = documents
	}
	if origin, tracked := m.origins[record]; tracked {
		if !reflect.DeepEqual(documents[id], origin) {
			return "", ErrStaleDocument
		}
	}
	documents[id] = copyTree(tree)
	m.origins[record] = documents[id]
	return id, nil
}

//Load reconstructs a record for supplied identifier; a previously loaded
//instance is reused as the merge target so its identity is preserved
func (m *Memory) Load(ctx context.Context, id string, declared *flatty.Type) (interface{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	collection := collectionOf(declared.Type())
	key := collection + "/" + id
	m.mu.Lock()
	defer m.mu.Unlock()
	tree, ok := m.collections[collection][id]
	if !ok {
		return nil, fmt.Errorf("document not found: %v", key)
	}
	record, err := flatty.Unflatten(copyTree(tree), declared,
		flatty.WithRegistry(m.registry), flatty.WithTarget(m.loaded[key]))
	if err != nil {
		return nil, err
	}
	m.loaded[key] = record
	m.origins[record] = tree
	return record, nil
}

func (m *Memory) nextID() string {
	return fmt.Sprintf("%024x", atomic.AddUint64(&m.seq, 1))
}

//collectionOf derives a collection name from the record type name
func collectionOf(rType reflect.Type) string {
	for rType != nil && rType.Kind() == reflect.Ptr {
		rType = rType.Elem()
	}
	if rType == nil {
		return ""
	}
	return text.CaseFormatUpperCamel.Format(rType.Name(), text.CaseFormatLowerUnderscore)
}

func copyTree(tree map[string]interface{}) map[string]interface{} {
	ret := make(map[string]interface{}, len(tree))
	for key, value := range tree {
		ret[key] = value
	}
	return ret
}
