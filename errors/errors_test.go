package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAndNewf(t *testing.T) {
	err := New("upload rejected")
	require.NotNil(t, err)
	assert.Equal(t, "upload rejected", err.Error())

	err = Newf("page %d out of range", 7)
	assert.Equal(t, "page 7 out of range", err.Error())
}

func TestWrapPreservesChain(t *testing.T) {
	base := New("no such requirement")
	wrapped := Wrap(base, "load annotation")

	assert.Contains(t, wrapped.Error(), "load annotation")
	assert.Contains(t, wrapped.Error(), "no such requirement")
	assert.True(t, Is(wrapped, base))

	wrapped = Wrapf(base, "requirement %d", 42)
	assert.Contains(t, wrapped.Error(), "requirement 42")
}

type pathError struct{ path string }

func (e *pathError) Error() string { return "bad path: " + e.path }

func TestAsFindsConcreteType(t *testing.T) {
	original := &pathError{path: "uploads/x.pdf"}
	wrapped := Wrap(original, "store drawing")

	var target *pathError
	require.True(t, As(wrapped, &target))
	assert.Equal(t, "uploads/x.pdf", target.path)
}

func TestHintsAndDetailsSurvivesWrapping(t *testing.T) {
	err := New("tolerance missing")
	err = WithHint(err, "set a tolerance value on the requirement")
	err = WithDetail(err, "symbol: position")
	err = Wrap(err, "validate requirement")

	assert.Contains(t, GetAllHints(err), "set a tolerance value on the requirement")
	assert.Contains(t, GetAllDetails(err), "symbol: position")
}

func TestStackTracePresent(t *testing.T) {
	err := New("with stack")
	assert.Contains(t, fmt.Sprintf("%+v", err), "errors_test.go")
}

func TestNilPassthrough(t *testing.T) {
	assert.Nil(t, Wrap(nil, "context"))
	assert.Nil(t, Wrapf(nil, "context %d", 1))
	assert.Nil(t, WithStack(nil))
	assert.Nil(t, WithHint(nil, "hint"))
}

func ExampleWrap() {
	baseErr := New("connection failed")
	err := Wrap(baseErr, "failed to open database")
	fmt.Println(err)
	// Output: failed to open database: connection failed
}
