package errors

import (
	stderrs "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatusCode(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:        http.StatusBadRequest,
		KindInvalidTransition: http.StatusBadRequest,
		KindNotFound:          http.StatusNotFound,
		KindForbidden:         http.StatusForbidden,
		KindUnauthorized:      http.StatusUnauthorized,
		KindDependency:        http.StatusInternalServerError,
		KindStore:             http.StatusInternalServerError,
		KindUnknown:           http.StatusInternalServerError,
	}
	for k, want := range cases {
		assert.Equal(t, want, HTTPStatusCode(k), k.String())
	}
}

func TestKindOf_ThroughWrapping(t *testing.T) {
	base := New(KindForbidden, "forbidden")
	wrapped := fmt.Errorf("op: %w", base)

	assert.Equal(t, KindForbidden, KindOf(wrapped))
	assert.True(t, IsKind(wrapped, KindForbidden))
	assert.True(t, stderrs.Is(wrapped, ErrForbidden))
	assert.Equal(t, KindUnknown, KindOf(stderrs.New("plain")))
	assert.False(t, IsKind(nil, KindUnknown))
}

func TestStore_KeepsDomainErrors(t *testing.T) {
	nf := New(KindNotFound, "pet not found")
	assert.Same(t, nf, Store(nf, "load pet"))

	raw := stderrs.New("connection refused")
	err := Store(raw, "load pet")
	require.Error(t, err)
	assert.Equal(t, KindStore, KindOf(err))
	assert.ErrorIs(t, err, raw)
	assert.Nil(t, Store(nil, "noop"))
}

func TestWireFrom_HidesInternalDetail(t *testing.T) {
	w := WireFrom(Store(stderrs.New("pq: password authentication failed"), "insert"))
	assert.Equal(t, "store_failure", w.Code)
	assert.Equal(t, "internal error", w.Message)

	w = WireFrom(stderrs.New("boom"))
	assert.Equal(t, "internal_error", w.Code)

	w = WireFrom(Validation(FieldError{Field: "images", Message: "at least one image is required"}))
	assert.Equal(t, "validation_error", w.Code)
	require.Len(t, w.Details, 1)
	assert.Equal(t, "images", w.Details[0].Field)
}

func TestError_MessageIncludesFields(t *testing.T) {
	err := InvalidField("species", "must be dog or cat")
	assert.Contains(t, err.Error(), "species: must be dog or cat")
}
