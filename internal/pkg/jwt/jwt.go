package jwt

import (
	"context"
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	ClaimCompanyID = "company_id"
	ClaimType      = "type"
	TokenAccess    = "access"
)

var ErrMissingCompanyClaim = errors.New("token carries no company_id claim")

// Service verifies access tokens issued by the identity service. Tokens are
// HS256 signed with a shared secret.
type Service interface {
	JWTAuth() *jwtauth.JWTAuth
	// GenerateAccessToken signs a token for subject scoped to companyID.
	GenerateAccessToken(subject, companyID string, ttl time.Duration) (token string, expiresAt int64, err error)
}

type JWTService struct {
	tokenAuth *jwtauth.JWTAuth
}

func NewJWTService(secretKey string) Service {
	return &JWTService{
		tokenAuth: jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func (j *JWTService) GenerateAccessToken(subject, companyID string, ttl time.Duration) (string, int64, error) {
	expiresAt := time.Now().Add(ttl).Unix()
	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"sub":          subject,
		ClaimCompanyID: companyID,
		ClaimType:      TokenAccess,
		"exp":          expiresAt,
	})
	return tokenString, expiresAt, err
}

// CompanyIDFromContext reads the company_id claim of the verified token.
func CompanyIDFromContext(ctx context.Context) (string, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", err
	}
	companyID, ok := claims[ClaimCompanyID].(string)
	if !ok || companyID == "" {
		return "", ErrMissingCompanyClaim
	}
	return companyID, nil
}
