package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifiedError(t *testing.T) {
	t.Run("Basic error creation", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid configuration").
			WithSeverity(SeverityFatal).
			WithContext("file", "hotbuild.yaml").
			Build()

		assert.Equal(t, CategoryConfig, err.Category())
		assert.Equal(t, SeverityFatal, err.Severity())
		assert.Equal(t, "invalid configuration", err.Message())

		file, exists := err.Context().GetString("file")
		require.True(t, exists)
		assert.Equal(t, "hotbuild.yaml", file)
	})

	t.Run("Error detection through wrapping", func(t *testing.T) {
		err := fmt.Errorf("outer: %w", DependencyError("raylib.dll missing").Build())

		assert.True(t, IsClassified(err))
		assert.True(t, HasCategory(err, CategoryDependency))
		assert.Equal(t, CategoryDependency, GetCategory(err))
		assert.Equal(t, CategoryInternal, GetCategory(errors.New("plain")))
	})

	t.Run("Unwrap and Is", func(t *testing.T) {
		cause := errors.New("exit status 1")
		err := WrapError(cause, CategoryBuild, "library build failed").Fatal().Build()

		assert.ErrorIs(t, err, cause)
		assert.True(t, errors.Is(err, BuildError("library build failed").Build()))
		assert.False(t, errors.Is(err, BuildError("executable build failed").Build()))
		assert.True(t, err.IsFatal())
	})

	t.Run("WithContext does not mutate the original", func(t *testing.T) {
		base := StateError("counter").Build()
		extended := base.WithContext("path", "pdbs/pdb_number")

		_, ok := base.Context().Get("path")
		assert.False(t, ok)
		path, ok := extended.Context().GetString("path")
		require.True(t, ok)
		assert.Equal(t, "pdbs/pdb_number", path)
	})
}

func TestErrorContextMerge(t *testing.T) {
	var empty ErrorContext
	other := ErrorContext{"a": 1}
	assert.Equal(t, other, empty.Merge(other))

	merged := ErrorContext{"a": 1, "b": 2}.Merge(ErrorContext{"b": 3})
	assert.Equal(t, ErrorContext{"a": 1, "b": 3}, merged)
}
