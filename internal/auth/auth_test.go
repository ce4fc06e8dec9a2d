package auth

import (
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test-secret"

func sign(t *testing.T, method jwt.SigningMethod, key any, claims jwt.MapClaims) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return s
}

func bearer(token string) events.APIGatewayProxyRequest {
	return events.APIGatewayProxyRequest{Headers: map[string]string{"Authorization": "Bearer " + token}}
}

func TestUserIDFromAuthorizer(t *testing.T) {
	a := NewAuthenticator("")

	req := events.APIGatewayProxyRequest{}
	req.RequestContext.Authorizer = map[string]interface{}{
		"claims": map[string]interface{}{"sub": "cognito-user"},
	}
	id, err := a.UserID(req)
	require.NoError(t, err)
	assert.Equal(t, "cognito-user", id)

	req.RequestContext.Authorizer = map[string]interface{}{"principalId": "custom-user"}
	id, err = a.UserID(req)
	require.NoError(t, err)
	assert.Equal(t, "custom-user", id)
}

func TestUserIDFromBearer(t *testing.T) {
	a := NewAuthenticator(secret)
	valid := sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	id, err := a.UserID(bearer(valid))
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)

	lower := events.APIGatewayProxyRequest{Headers: map[string]string{"authorization": "Bearer " + valid}}
	id, err = a.UserID(lower)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id)
}

func TestUserIDRejects(t *testing.T) {
	a := NewAuthenticator(secret)

	wrongKey := sign(t, jwt.SigningMethodHS256, []byte("other"), jwt.MapClaims{"sub": "user-1"})
	expired := sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	noSubject := sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()})
	hs512 := sign(t, jwt.SigningMethodHS512, []byte(secret), jwt.MapClaims{"sub": "user-1"})

	tests := map[string]events.APIGatewayProxyRequest{
		"no header":  {},
		"not bearer": {Headers: map[string]string{"Authorization": "Basic abc"}},
		"garbage":    bearer("not.a.token"),
		"wrong key":  bearer(wrongKey),
		"expired":    bearer(expired),
		"no subject": bearer(noSubject),
		"hs512":      bearer(hs512),
	}
	for name, req := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := a.UserID(req)
			assert.ErrorIs(t, err, ErrUnauthenticated)
		})
	}

	_, err := NewAuthenticator("").UserID(bearer(sign(t, jwt.SigningMethodHS256, []byte(secret), jwt.MapClaims{"sub": "x"})))
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
