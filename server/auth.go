package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/soderasen-au/go-common/util"
)

const MSG_UNAUTHORIZED = "Unauthorized"

// Claims identify the caller of a protected endpoint.
type Claims struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	jwt.RegisteredClaims
}

func NewClaims(issuer, subject, name string, ttl time.Duration) *Claims {
	now := time.Now()
	return &Claims{
		Name: name,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			NotBefore: jwt.NewNumericDate(now),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
}

// Sign returns the claims as an HS256 token.
func (c *Claims) Sign(secret []byte) (string, *util.Result) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, *c)
	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", util.Error("SignedString", err)
	}
	return tokenString, nil
}

func (c *Claims) GetHeader(secret []byte) (map[string]string, *util.Result) {
	token, res := c.Sign(secret)
	if res != nil {
		return nil, res.With("Sign")
	}
	return map[string]string{"Authorization": fmt.Sprintf("Bearer %s", token)}, nil
}

// ParseToken verifies an HS256 token. issuer is checked when not empty.
func ParseToken(token string, secret []byte, issuer string) (*Claims, *util.Result) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}

	claims := Claims{}
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	}, opts...)
	if err != nil {
		return nil, util.Error("ParseWithClaims", err)
	}
	return &claims, nil
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

// requireBearer rejects requests without a valid token signed with secret.
func (s *Server) requireBearer(next http.Handler) http.Handler {
	secret := []byte(s.Config.JwtSecret)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := s.requestLogger(r)
		token := bearerToken(r)
		if token == "" {
			logger.Info().Msg("missing bearer token")
			s.unauthorized(w, logger)
			return
		}
		claims, res := ParseToken(token, secret, s.Config.JwtIssuer)
		if res != nil {
			logger.Info().Err(res).Msg("invalid bearer token")
			s.unauthorized(w, logger)
			return
		}
		logger.Debug().Msgf("authorized subject [%s]", claims.Subject)
		next.ServeHTTP(w, r)
	})
}
