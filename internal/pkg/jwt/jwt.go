package jwt

import (
	"context"
	"fmt"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/mrjaketay/timeApp-sub000/internal/domain/user"
)

// sseTokenTTL keeps stream tokens short-lived; they travel in the query string.
const sseTokenTTL = 5 * time.Minute

type Service interface {
	GenerateAccessToken(actor user.Actor) (token string, expiresAt int64, err error)
	GenerateSSEToken(actor user.Actor) (token string, expiresIn int, err error)
	ValidateSSEToken(tokenString string) (user.Actor, error)
	ActorFromContext(ctx context.Context) (user.Actor, error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	secretKey                 string
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) Service {
	return &JWTService{
		secretKey:                 secretKey,
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
	}
}

// GenerateAccessToken signs an access token. Sessions are owned by the identity
// provider; this is used by tooling and tests that need a valid bearer token.
func (j *JWTService) GenerateAccessToken(actor user.Actor) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = time.Now().Add(expDuration).Unix()

	claims := map[string]interface{}{
		"user_id":     actor.UserID,
		"employee_id": j.returnValueOrNil(actor.EmployeeID),
		"company_id":  actor.CompanyID,
		"role":        string(actor.Role),
		"type":        "access",
		"exp":         expiresAt,
	}

	_, tokenString, err := j.tokenAuth.Encode(claims)
	return tokenString, expiresAt, err
}

// ActorFromContext reads the verified access token claims placed on ctx by
// jwtauth.Verifier.
func (j *JWTService) ActorFromContext(ctx context.Context) (user.Actor, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return user.Actor{}, fmt.Errorf("failed to extract claims from context: %w", err)
	}

	if tokenType, _ := claims["type"].(string); tokenType != "access" {
		return user.Actor{}, jwt.ErrInvalidJWT()
	}

	return actorFromClaims(claims)
}

func (j *JWTService) returnValueOrNil(value *string) interface{} {
	if value == nil {
		return nil
	} else {
		return *value
	}
}

// GenerateSSEToken generates a short-lived token for SSE connections
func (j *JWTService) GenerateSSEToken(actor user.Actor) (token string, expiresIn int, err error) {
	expiresIn = int(sseTokenTTL.Seconds())
	expiresAt := time.Now().Add(sseTokenTTL).Unix()

	_, tokenString, err := j.tokenAuth.Encode(map[string]interface{}{
		"user_id":    actor.UserID,
		"company_id": actor.CompanyID,
		"role":       string(actor.Role),
		"type":       "sse",
		"exp":        expiresAt,
	})
	if err != nil {
		return "", 0, err
	}

	return tokenString, expiresIn, nil
}

// ValidateSSEToken validates an SSE token and returns the actor it was issued to
func (j *JWTService) ValidateSSEToken(tokenString string) (user.Actor, error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return user.Actor{}, err
	}

	claims, err := token.AsMap(context.Background())
	if err != nil {
		return user.Actor{}, err
	}

	// Check token type
	if tokenType, _ := claims["type"].(string); tokenType != "sse" {
		return user.Actor{}, jwt.ErrInvalidJWT()
	}

	return actorFromClaims(claims)
}

func actorFromClaims(claims map[string]interface{}) (user.Actor, error) {
	userID, _ := claims["user_id"].(string)
	companyID, _ := claims["company_id"].(string)
	role, _ := claims["role"].(string)

	if userID == "" {
		return user.Actor{}, jwt.ErrInvalidJWT()
	}
	if companyID == "" {
		return user.Actor{}, user.ErrCompanyIDRequired
	}
	if !user.Role(role).IsValid() {
		return user.Actor{}, user.ErrInvalidRole
	}

	actor := user.Actor{
		UserID:    userID,
		CompanyID: companyID,
		Role:      user.Role(role),
	}
	if employeeID, ok := claims["employee_id"].(string); ok && employeeID != "" {
		actor.EmployeeID = &employeeID
	}

	return actor, nil
}
