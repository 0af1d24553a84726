package inttest

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
	"time"

	"github.com/dhis2-sre/im-remote-cluster/internal/middleware"
	"github.com/dhis2-sre/im-remote-cluster/pkg/model"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/stretchr/testify/require"
)

// Authentication signs access tokens the middlewares it provides accept.
type Authentication struct {
	privateKey     *rsa.PrivateKey
	Authentication middleware.AuthenticationMiddleware
	Authorization  middleware.AuthorizationMiddleware
}

// SetupAuthentication creates an RSA key pair and the authentication and authorization middlewares
// verifying tokens signed with it.
func SetupAuthentication(t *testing.T) *Authentication {
	t.Helper()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err, "failed to generate RSA key")
	publicKey, err := jwk.FromRaw(&privateKey.PublicKey)
	require.NoError(t, err, "failed to create JWK")

	logger := discardLogger()
	return &Authentication{
		privateKey:     privateKey,
		Authentication: middleware.NewAuthentication(logger, publicKey),
		Authorization:  middleware.NewAuthorization(logger),
	}
}

// Token returns a signed access token of given user valid for an hour.
func (a *Authentication) Token(t *testing.T, user model.User) string {
	t.Helper()

	token, err := jwt.NewBuilder().
		Claim("user", user).
		IssuedAt(time.Now()).
		Expiration(time.Now().Add(time.Hour)).
		Build()
	require.NoError(t, err, "failed to build token")

	signed, err := jwt.Sign(token, jwt.WithKey(jwa.RS256, a.privateKey))
	require.NoError(t, err, "failed to sign token")
	return string(signed)
}

// WithUser authenticates a request as the given user.
func (a *Authentication) WithUser(t *testing.T, user model.User) RequestOption {
	t.Helper()
	return WithAuthToken(a.Token(t, user))
}
