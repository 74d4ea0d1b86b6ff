package flatty

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStateOf(t *testing.T) {
	type user struct {
		Login string `format:"name=login"`
		Age   int    `format:"name=age"`
		Note  string
	}

	t.Run("typed access", func(t *testing.T) {
		instance := &user{Login: "ann", Age: 30}
		state, err := StateOf(instance)
		assert.Nil(t, err)
		assert.EqualValues(t, []string{"login", "age", "Note"}, state.Fields())

		value, err := state.Value("login")
		assert.Nil(t, err)
		assert.Equal(t, "ann", value)

		err = state.SetValue("age", 31)
		assert.Nil(t, err)
		assert.Equal(t, 31, instance.Age)
	})

	t.Run("go field name fallback", func(t *testing.T) {
		instance := &user{}
		state, err := StateOf(instance)
		assert.Nil(t, err)
		err = state.SetValue("Login", "bob")
		assert.Nil(t, err)
		assert.Equal(t, "bob", instance.Login)
	})

	t.Run("undeclared attribute", func(t *testing.T) {
		state, err := StateOf(&user{})
		assert.Nil(t, err)
		_, err = state.Value("missing")
		undeclared := &UndeclaredAttributeError{}
		assert.True(t, errors.As(err, &undeclared))

		err = state.SetValue("missing", 1)
		assert.True(t, errors.As(err, &undeclared))
	})

	t.Run("type checked assignment", func(t *testing.T) {
		state, err := StateOf(&user{})
		assert.Nil(t, err)
		err = state.SetValue("age", "oops")
		mismatch := &TypeMismatchError{}
		assert.True(t, errors.As(err, &mismatch))
	})

	t.Run("non record value", func(t *testing.T) {
		_, err := StateOf(user{})
		assert.NotNil(t, err)
		_, err = StateOf(nil)
		assert.NotNil(t, err)
	})
}

func TestNew(t *testing.T) {
	type account struct {
		ID    string `format:"name=_id"`
		Login string `format:"name=login"`
		Quota int    `format:"name=quota"`
	}

	t.Run("declared attributes", func(t *testing.T) {
		instance := &account{}
		err := New(instance, map[string]interface{}{
			"_id":   "a1",
			"login": "ann",
			"quota": 10,
		})
		assert.Nil(t, err)
		assert.EqualValues(t, &account{ID: "a1", Login: "ann", Quota: 10}, instance)
	})

	t.Run("undeclared attribute fails", func(t *testing.T) {
		err := New(&account{}, map[string]interface{}{"unknown": 1})
		undeclared := &UndeclaredAttributeError{}
		assert.True(t, errors.As(err, &undeclared))
	})
}
