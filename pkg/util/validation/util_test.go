package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidHostPort(t *testing.T) {
	assert.NoError(t, ValidHostPort("0.0.0.0:25565"))
	assert.NoError(t, ValidHostPort(":8080"))
	assert.Error(t, ValidHostPort("localhost"))
	assert.Error(t, ValidHostPort("localhost:70000"))
}

func TestValidProtocol(t *testing.T) {
	assert.True(t, ValidProtocol(754))
	assert.False(t, ValidProtocol(-1))
}
