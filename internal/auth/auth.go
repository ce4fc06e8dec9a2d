// Package auth resolves the calling user of an API Gateway request.
package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/golang-jwt/jwt/v5"
)

var ErrUnauthenticated = errors.New("unauthenticated")

type Authenticator struct {
	secret []byte
}

// NewAuthenticator verifies bearer tokens with secret. With an empty secret only
// authorizer claims are trusted.
func NewAuthenticator(secret string) *Authenticator {
	return &Authenticator{secret: []byte(secret)}
}

// UserID returns the "sub" of the caller. Claims set by an API Gateway authorizer win over the
// Authorization header.
func (a *Authenticator) UserID(req events.APIGatewayProxyRequest) (string, error) {
	if sub := authorizerSubject(req.RequestContext.Authorizer); sub != "" {
		return sub, nil
	}

	header := req.Headers["Authorization"]
	if header == "" {
		header = req.Headers["authorization"]
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", ErrUnauthenticated
	}
	if len(a.secret) == 0 {
		return "", fmt.Errorf("%w: bearer tokens are not accepted", ErrUnauthenticated)
	}
	return a.verify(token)
}

func (a *Authenticator) verify(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return a.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub == "" {
		return "", fmt.Errorf("%w: token has no subject", ErrUnauthenticated)
	}
	return sub, nil
}

func authorizerSubject(authorizer map[string]interface{}) string {
	if authorizer == nil {
		return ""
	}
	// Cognito user pool authorizers nest the token claims.
	if claims, ok := authorizer["claims"].(map[string]interface{}); ok {
		if sub, ok := claims["sub"].(string); ok && sub != "" {
			return sub
		}
	}
	if sub, ok := authorizer["sub"].(string); ok && sub != "" {
		return sub
	}
	if principal, ok := authorizer["principalId"].(string); ok {
		return principal
	}
	return ""
}
