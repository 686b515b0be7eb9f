package maskspec

import (
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func yearOf(t time.Time) int { return t.Year() }

func nonEmpty(s string) (string, error) {
	if s == "" {
		return "", errors.New("empty input")
	}

	return strings.ToUpper(s), nil
}

func TestParseTransformPlain(t *testing.T) {
	tr, err := ParseTransform(yearOf)
	require.NoError(t, err)

	assert.Equal(t, reflect.TypeFor[time.Time](), tr.In)
	assert.Equal(t, reflect.TypeFor[int](), tr.Out)
	assert.Contains(t, tr.Name, "yearOf")
}

func TestParseTransformWithError(t *testing.T) {
	tr, err := ParseTransform(nonEmpty)
	require.NoError(t, err)

	assert.Equal(t, reflect.TypeFor[string](), tr.In)
	assert.Equal(t, reflect.TypeFor[string](), tr.Out)
}

func TestParseTransformRejectsNonFunction(t *testing.T) {
	_, err := ParseTransform(42)
	assert.ErrorIs(t, err, ErrTransformNotAFunction)
}

func TestParseTransformRejectsBadSignatures(t *testing.T) {
	bad := []any{
		func() int { return 0 },
		func(a, b int) int { return a + b },
		func(a int) {},
		func(a int) (int, string) { return a, "" },
		func(a int) (int, error, bool) { return a, nil, false },
	}

	for _, fn := range bad {
		_, err := ParseTransform(fn)
		assert.ErrorIs(t, err, ErrTransformBadSignature)
	}
}

func TestTransformApply(t *testing.T) {
	tr, err := ParseTransform(yearOf)
	require.NoError(t, err)

	got, err := tr.Apply(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, 2024, got)
}

func TestTransformApplyNilUsesZeroInput(t *testing.T) {
	tr, err := ParseTransform(yearOf)
	require.NoError(t, err)

	got, err := tr.Apply(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, got)
}

func TestTransformApplyPropagatesError(t *testing.T) {
	tr, err := ParseTransform(nonEmpty)
	require.NoError(t, err)

	got, err := tr.Apply("ok")
	require.NoError(t, err)
	assert.Equal(t, "OK", got)

	_, err = tr.Apply("")
	assert.ErrorContains(t, err, "empty input")
}

func TestTransformApplyRejectsWrongInputType(t *testing.T) {
	tr, err := ParseTransform(yearOf)
	require.NoError(t, err)

	_, err = tr.Apply("not a time")
	assert.ErrorContains(t, err, "cannot apply")
}
