package redis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJWTKey(t *testing.T) {
	key := jwtKey("header.payload.signature")

	assert.True(t, strings.HasPrefix(key, "carematch.jwt.block."))
	assert.NotContains(t, key, "payload")
	assert.Equal(t, key, jwtKey("header.payload.signature"))
	assert.NotEqual(t, key, jwtKey("header.payload.other"))
}
