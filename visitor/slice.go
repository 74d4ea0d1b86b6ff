package visitor

import (
	"fmt"
	"reflect"
)

//Sequence creates a visitor over any slice value; the key is the element
//index. The common primitive tree form []interface{} avoids reflection.
func Sequence(value interface{}) (Visitor[int, any], error) {
	if actual, ok := value.([]interface{}); ok {
		return func(f func(key int, element any) (bool, error)) error {
			for i, elem := range actual {
				continueVisit, err := f(i, elem)
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
	if rValue.Kind() != reflect.Slice {
		return nil, fmt.Errorf("expected slice, got %T", value)
	}
	return func(f func(key int, element any) (bool, error)) error {
		for i := 0; i < rValue.Len(); i++ {
			continueVisit, err := f(i, rValue.Index(i).Interface())
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
