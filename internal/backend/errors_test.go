package backend

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLinkClassification(t *testing.T) {
	t.Run("InvalidByStatus", func(t *testing.T) {
		err := &APIError{StatusCode: 404, Message: "not found"}
		assert.True(t, IsLinkInvalid(err))
		assert.False(t, IsLinkInactive(err))
	})

	t.Run("InvalidByMessage", func(t *testing.T) {
		for _, msg := range []string{"Token expirado", "Link inválido", "link invalido", "recurso inexistente"} {
			err := &APIError{StatusCode: 400, Message: msg}
			assert.True(t, IsLinkInvalid(err), msg)
		}
	})

	t.Run("InactiveByStatus", func(t *testing.T) {
		err := &APIError{StatusCode: 403, Message: "forbidden"}
		assert.True(t, IsLinkInactive(err))
		assert.False(t, IsLinkInvalid(err))
	})

	t.Run("InactiveByMessage", func(t *testing.T) {
		for _, msg := range []string{"Link inativo", "link desativado pelo dono"} {
			err := &APIError{StatusCode: 400, Message: msg}
			assert.True(t, IsLinkInactive(err), msg)
		}
	})

	t.Run("InvalidWinsOverInactive", func(t *testing.T) {
		// 404 carrying an "inativo" message still reads as invalid.
		err := &APIError{StatusCode: 404, Message: "link inativo"}
		assert.True(t, IsLinkInvalid(err))
	})

	t.Run("PlainErrors", func(t *testing.T) {
		err := errors.New("connection refused")
		assert.False(t, IsLinkInvalid(err))
		assert.False(t, IsLinkInactive(err))
	})
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "Link inativo", Message(&APIError{StatusCode: 403, Message: "Link inativo"}, "fallback"))
	assert.Equal(t, "fallback", Message(&APIError{StatusCode: 500}, "fallback"))
	assert.Equal(t, "fallback", Message(errors.New("dial tcp: timeout"), "fallback"))
	assert.Equal(t, "fallback", Message(nil, "fallback"))
}
