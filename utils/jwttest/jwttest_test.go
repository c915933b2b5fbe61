package jwttest

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignWith(t *testing.T) {
	key := []byte("test-secret")
	signed, err := SignWith(key, "consultant-1", "consultant", time.Hour)
	require.NoError(t, err)

	token, err := jwt.Parse(signed, func(*jwt.Token) (interface{}, error) { return key, nil })
	require.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "consultant-1", claims["sub"])
	assert.Equal(t, "consultant", claims["role"])
	assert.Equal(t, jwt.SigningMethodHS256, token.Method)

	expired, err := SignWith(key, "client-a", "user", -time.Minute)
	require.NoError(t, err)
	_, err = jwt.Parse(expired, func(*jwt.Token) (interface{}, error) { return key, nil })
	assert.Error(t, err)
}
