package kv

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func getStorage() *Storage {
	return New().
		Add("hello", "world").
		Add("some", "value").
		Add("hello", "nether")
}

func TestStorage(t *testing.T) {
	t.Run("get first value", func(t *testing.T) {
		s := getStorage()
		value, found := s.Get("hello")
		require.True(t, found)
		require.Equal(t, "world", value)
	})

	t.Run("case-insensitive lookup", func(t *testing.T) {
		s := getStorage()
		require.Equal(t, "world", s.Value("Hello"))
		require.Equal(t, "value", s.Value("SOME"))
		require.True(t, s.Has("HELLO"))
		require.False(t, s.Has("nonexistent"))
	})

	t.Run("value or fallback", func(t *testing.T) {
		s := getStorage()
		require.Equal(t, "world", s.ValueOr("hello", "default"))
		require.Equal(t, "default", s.ValueOr("nonexistent", "default"))
	})

	t.Run("all values in insertion order", func(t *testing.T) {
		s := getStorage()
		require.Equal(t, []string{"world", "nether"}, s.Values("hello"))
		require.Nil(t, s.Values("nonexistent"))
	})

	t.Run("unique keys", func(t *testing.T) {
		s := getStorage()
		require.Equal(t, []string{"hello", "some"}, s.Keys())
	})

	t.Run("iter preserves wire order", func(t *testing.T) {
		s := getStorage()
		var pairs []Pair
		iterator := s.Iter()
		for {
			pair, ok := iterator.Next()
			if !ok {
				break
			}

			pairs = append(pairs, pair)
		}

		require.Equal(t, []Pair{
			{"hello", "world"},
			{"some", "value"},
			{"hello", "nether"},
		}, pairs)
	})

	t.Run("from map", func(t *testing.T) {
		s := NewFromMap(map[string][]string{
			"hello": {"world", "nether"},
		})
		require.Equal(t, 2, s.Len())
		require.Equal(t, []string{"world", "nether"}, s.Values("hello"))
	})

	t.Run("clone is independent", func(t *testing.T) {
		s := getStorage()
		copied := s.Clone()
		s.Clear()
		require.True(t, s.Empty())
		require.Equal(t, 3, copied.Len())
		require.Equal(t, "world", copied.Value("hello"))
	})

	t.Run("clear keeps capacity usable", func(t *testing.T) {
		s := getStorage().Clear()
		require.True(t, s.Empty())
		s.Add("new", "entry")
		require.Equal(t, "entry", s.Value("new"))
	})
}
