package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateContentType(t *testing.T) {
	assert.True(t, ValidateContentType("application/json"))
	assert.True(t, ValidateContentType("application/x-www-form-urlencoded"))
	assert.True(t, ValidateContentType("multipart/form-data"))

	assert.False(t, ValidateContentType("text/html"))
	assert.False(t, ValidateContentType("application/xml"))
	assert.False(t, ValidateContentType(""))
}
