package errors

import (
	"log/slog"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAnnotatedError(t *testing.T) {
	err := New("test error", slog.String("id", "123"))
	require.Equal(t, "test error", err.Error())

	// Assert that wrapping sentinel errors works as expected.
	sentinel := NewSentinel("sentinel")
	require.NotErrorIs(t, err, NewSentinel("sentinel"))
	wrapped := Wrap(sentinel, "add context")
	require.ErrorIs(t, wrapped, sentinel)
	require.Equal(t, "add context: sentinel", wrapped.Error())

	// Ensure log values are coming through.
	var annotated AnnotatedError
	require.True(t, As(err, &annotated))
	group := annotated.LogValue().Group()
	require.Contains(t, group, slog.String("id", "123"))

	// Assert there's a valid source.
	sourceIdx := slices.IndexFunc(group, func(attr slog.Attr) bool {
		return attr.Key == "source"
	})
	require.NotEqual(t, -1, sourceIdx)
	source := group[sourceIdx]
	require.Contains(t, source.Value.String(), "annotatederror_test.go")
}

func TestSlogError(t *testing.T) {
	sentinel := NewSentinel("connection refused")
	err := Wrap(sentinel, "fetch cases", slog.String("url", "http://localhost:0"))

	attr := SlogError(err)
	require.Equal(t, "error", attr.Key)
	require.Contains(t, attr.Value.String(), "fetch cases: connection refused")
}
