package visitor

import (
	"fmt"
	"reflect"
	"sort"
)

//Mapping creates a visitor over any string keyed map value, visiting entries
//in ascending key order. The common primitive tree form
//map[string]interface{} avoids reflection.
func Mapping(value interface{}) (Visitor[string, any], error) {
	if actual, ok := value.(map[string]interface{}); ok {
		keys := make([]string, 0, len(actual))
		for key := range actual {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		return func(f func(key string, element any) (bool, error)) error {
			for _, key := range keys {
				continueVisit, err := f(key, actual[key])
				if err != nil {
					return err
				}
				if !continueVisit {
					break
				}
			}
			return nil
		}, nil
	}
	rValue := reflect.ValueOf(value)
	if rValue.Kind() != reflect.Map {
		return nil, fmt.Errorf("expected map, got %T", value)
	}
	if rValue.Type().Key().Kind() != reflect.String {
		return nil, fmt.Errorf("expected string keyed map, got %T", value)
	}
	keys := make([]string, 0, rValue.Len())
	index := map[string]reflect.Value{}
	for _, key := range rValue.MapKeys() {
		keys = append(keys, key.String())
		index[key.String()] = key
	}
	sort.Strings(keys)
	return func(f func(key string, element any) (bool, error)) error {
		for _, key := range keys {
			continueVisit, err := f(key, rValue.MapIndex(index[key]).Interface())
			if err != nil {
				return err
			}
			if !continueVisit {
				break
			}
		}
		return nil
	}, nil
}
