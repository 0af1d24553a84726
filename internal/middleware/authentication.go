package middleware

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dhis2-sre/im-remote-cluster/internal/errdef"
	"github.com/dhis2-sre/im-remote-cluster/pkg/model"
	"github.com/gin-gonic/gin"
	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	userClaim           = "user"
	tokenQueryParameter = "token"
)

// ParsePublicKey parses the PEM encoded public key access tokens are signed with.
func ParsePublicKey(pem string) (jwk.Key, error) {
	return jwk.ParseKey([]byte(pem), jwk.WithPEM(true))
}

func NewAuthentication(logger *slog.Logger, publicKey jwk.Key) AuthenticationMiddleware {
	return AuthenticationMiddleware{
		logger:    logger,
		publicKey: publicKey,
	}
}

type AuthenticationMiddleware struct {
	logger    *slog.Logger
	publicKey jwk.Key
}

// TokenAuthentication verifies the access token of the request and stores the user of its claims in
// the request context. The token is read from the Authorization header or, as browsers cannot set
// headers on an EventSource, from the token query parameter.
func (m AuthenticationMiddleware) TokenAuthentication(c *gin.Context) {
	user, err := parseRequest(c.Request, m.publicKey)
	if err != nil {
		m.logger.InfoContext(c.Request.Context(), "Token not valid", "error", err)
		_ = c.Error(errdef.NewUnauthorized("token not valid"))
		c.Abort()
		return
	}

	c.Request = c.Request.WithContext(model.NewContextWithUser(c.Request.Context(), user))
	c.Next()
}

func parseRequest(request *http.Request, key jwk.Key) (*model.User, error) {
	token, err := jwt.ParseRequest(
		request,
		jwt.WithKey(jwa.RS256, key),
		jwt.WithHeaderKey("Authorization"),
		jwt.WithFormKey(tokenQueryParameter),
		jwt.WithValidate(true),
	)
	if err != nil {
		return nil, err
	}

	return extractUser(token)
}

func extractUser(token jwt.Token) (*model.User, error) {
	userData, ok := token.Get(userClaim)
	if !ok {
		return nil, errors.New("user not found in claims")
	}

	bytes, err := json.Marshal(userData)
	if err != nil {
		return nil, err
	}

	user := &model.User{}
	err = json.Unmarshal(bytes, user)
	return user, err
}
