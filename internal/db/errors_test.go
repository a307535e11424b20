package db

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWrap(t *testing.T) {
	base := errors.New("unable to open database file")

	t.Run("nil stays nil", func(t *testing.T) {
		require.NoError(t, Wrap(OpOpen, "", nil))
	})

	t.Run("message is the driver's", func(t *testing.T) {
		err := Wrap(OpSelectRows, "users", base)
		require.Error(t, err)
		assert.Equal(t, "unable to open database file", err.Error())
		assert.ErrorIs(t, err, base)

		var se *StoreError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, OpSelectRows, se.Op)
		assert.Equal(t, "users", se.Table)
	})

	t.Run("already tagged", func(t *testing.T) {
		first := Wrap(OpListTables, "", base)
		second := Wrap(OpSelectRows, "users", first)
		assert.Same(t, first, second)
	})

	t.Run("tagged inside another wrap", func(t *testing.T) {
		err := fmt.Errorf("run: %w", Wrap(OpOpen, "", context.Canceled))
		assert.ErrorAs(t, err, new(*StoreError))
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestStoreErrorWithoutCause(t *testing.T) {
	var se *StoreError
	assert.False(t, errors.As(errors.New("plain"), &se))
	assert.Equal(t, "store access error", (&StoreError{Op: OpOpen}).Error())
}

func TestColumnNames(t *testing.T) {
	cols := []Column{{Name: "a", Type: "INTEGER"}, {Name: "b", Type: "TEXT"}}
	assert.Equal(t, []string{"a", "b"}, ColumnNames(cols))
	assert.Empty(t, ColumnNames(nil))
}
