package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewErrorf(t *testing.T) {
	err := NewErrorf("invalid doc type: %s", "receipt").
		WithHint("Unsupported document type").
		Mark(ErrValidation)

	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "invalid doc type: receipt")
}

func TestWithMessagef(t *testing.T) {
	base := NewError("object not found").Mark(ErrNotFound)
	err := WithError(base).
		WithMessagef("bucket:%s, key:%s", "invoices", "inv_123.pdf").
		Mark(ErrDatabase)

	assert.True(t, IsNotFound(err))
	assert.Contains(t, err.Error(), "bucket:invoices, key:inv_123.pdf")
}
