package gridmodel_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/gridkit/pkg/gridmodel"
)

func TestParseValue(t *testing.T) {
	t.Parallel()

	t.Run("blank input parses to null for every kind", func(t *testing.T) {
		for _, kind := range []gridmodel.Kind{
			gridmodel.KindString, gridmodel.KindInt, gridmodel.KindFloat,
			gridmodel.KindBool, gridmodel.KindTime,
		} {
			v, err := gridmodel.ParseValue("   ", kind)
			require.NoError(t, err)
			assert.True(t, v.IsNull())
		}
	})

	t.Run("parses int", func(t *testing.T) {
		v, err := gridmodel.ParseValue("42", gridmodel.KindInt)
		require.NoError(t, err)
		i, err := v.AsInt()
		require.NoError(t, err)
		assert.Equal(t, int64(42), i)
	})

	t.Run("invalid int reports type mismatch", func(t *testing.T) {
		_, err := gridmodel.ParseValue("forty", gridmodel.KindInt)
		require.ErrorIs(t, err, gridmodel.ErrTypeMismatch)
	})

	t.Run("parses float with surrounding whitespace", func(t *testing.T) {
		v, err := gridmodel.ParseValue(" 3.5 ", gridmodel.KindFloat)
		require.NoError(t, err)
		f, err := v.AsFloat()
		require.NoError(t, err)
		assert.Equal(t, 3.5, f)
	})

	t.Run("parses bool", func(t *testing.T) {
		v, err := gridmodel.ParseValue("true", gridmodel.KindBool)
		require.NoError(t, err)
		b, err := v.AsBool()
		require.NoError(t, err)
		assert.True(t, b)
	})

	t.Run("parses ISO date", func(t *testing.T) {
		v, err := gridmodel.ParseValue("2024-06-15", gridmodel.KindTime)
		require.NoError(t, err)
		ts, err := v.AsTime()
		require.NoError(t, err)
		assert.Equal(t, time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC), ts)
	})
}

func TestValueConversions(t *testing.T) {
	t.Parallel()

	t.Run("string to int", func(t *testing.T) {
		i, err := gridmodel.StringValue("19").AsInt()
		require.NoError(t, err)
		assert.Equal(t, int64(19), i)
	})

	t.Run("int widens to float", func(t *testing.T) {
		f, err := gridmodel.IntValue(7).AsFloat()
		require.NoError(t, err)
		assert.Equal(t, 7.0, f)
	})

	t.Run("fractional float refuses int conversion", func(t *testing.T) {
		_, err := gridmodel.FloatValue(7.5).AsInt()
		require.ErrorIs(t, err, gridmodel.ErrTypeMismatch)
	})

	t.Run("bool refuses float conversion", func(t *testing.T) {
		_, err := gridmodel.BoolValue(true).AsFloat()
		require.ErrorIs(t, err, gridmodel.ErrTypeMismatch)
	})

	t.Run("convertible checks do not error", func(t *testing.T) {
		assert.True(t, gridmodel.StringValue("12").ConvertibleTo(gridmodel.KindInt))
		assert.False(t, gridmodel.StringValue("abc").ConvertibleTo(gridmodel.KindInt))
		assert.True(t, gridmodel.NullValue().ConvertibleTo(gridmodel.KindInt))
	})
}

func TestValueEqual(t *testing.T) {
	t.Parallel()

	t.Run("strings compare trimmed", func(t *testing.T) {
		assert.True(t, gridmodel.StringValue(" a ").Equal(gridmodel.StringValue("a")))
		assert.False(t, gridmodel.StringValue("a").Equal(gridmodel.StringValue("b")))
	})

	t.Run("blank values compare equal across kinds", func(t *testing.T) {
		assert.True(t, gridmodel.NullValue().Equal(gridmodel.StringValue("  ")))
	})

	t.Run("numbers compare by payload", func(t *testing.T) {
		assert.True(t, gridmodel.IntValue(5).Equal(gridmodel.IntValue(5)))
		assert.False(t, gridmodel.IntValue(5).Equal(gridmodel.FloatValue(5)))
	})
}

func TestValueFormat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "", gridmodel.NullValue().Format())
	assert.Equal(t, "hello", gridmodel.StringValue("hello").Format())
	assert.Equal(t, "42", gridmodel.IntValue(42).Format())
	assert.Equal(t, "3.5", gridmodel.FloatValue(3.5).Format())
	assert.Equal(t, "true", gridmodel.BoolValue(true).Format())
	assert.Equal(t, "2024-06-15", gridmodel.TimeValue(time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)).Format())
}

func TestKindFromString(t *testing.T) {
	t.Parallel()

	for name, want := range map[string]gridmodel.Kind{
		"Integer": gridmodel.KindInt,
		"decimal": gridmodel.KindFloat,
		"number":  gridmodel.KindFloat,
		"double":  gridmodel.KindFloat,
		"text":    gridmodel.KindString,
		"date":    gridmodel.KindTime,
	} {
		k, err := gridmodel.KindFromString(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, k, name)
	}

	for _, name := range []string{"matrix", "blob"} {
		_, err := gridmodel.KindFromString(name)
		require.ErrorIs(t, err, gridmodel.ErrTypeMismatch, name)
	}
}
