package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"mindful-chat/internal/domain"
)

// SessionService emite y valida el token firmado que viaja en la cookie de sesión.
type SessionService struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

type SessionClaims struct {
	SessionID string `json:"sid"`
	UserID    string `json:"uid,omitempty"`
	jwt.RegisteredClaims
}

var (
	ErrSessionInvalid = errors.New("session invalid")
	ErrSessionExpired = errors.New("session expired")
)

func NewSessionService(secret string, ttl time.Duration) *SessionService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &SessionService{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: "mindful-chat",
	}
}

// TTL devuelve la vida útil de los tokens emitidos.
func (s *SessionService) TTL() time.Duration {
	return s.ttl
}

// NewSession crea una sesión anónima con un identificador nuevo.
func (s *SessionService) NewSession() domain.Session {
	return domain.Session{
		ID:        uuid.NewString(),
		ExpiresAt: time.Now().UTC().Add(s.ttl),
	}
}

// Issue firma un token para la sesión. UserID vacío significa sesión anónima.
func (s *SessionService) Issue(session domain.Session) (string, error) {
	if len(s.secret) == 0 || strings.TrimSpace(session.ID) == "" {
		return "", ErrSessionInvalid
	}
	now := time.Now().UTC()
	expires := session.ExpiresAt
	if expires.IsZero() {
		expires = now.Add(s.ttl)
	}
	claims := SessionClaims{
		SessionID: session.ID,
		UserID:    session.UserID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   session.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Parse valida el token y devuelve la sesión que representa.
func (s *SessionService) Parse(tokenString string) (domain.Session, error) {
	if len(s.secret) == 0 || strings.TrimSpace(tokenString) == "" {
		return domain.Session{}, ErrSessionInvalid
	}
	var claims SessionClaims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithIssuer(s.issuer))
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return domain.Session{}, ErrSessionExpired
		}
		return domain.Session{}, ErrSessionInvalid
	}
	if strings.TrimSpace(claims.SessionID) == "" || claims.Subject != claims.SessionID {
		return domain.Session{}, ErrSessionInvalid
	}
	session := domain.Session{ID: claims.SessionID, UserID: claims.UserID}
	if claims.ExpiresAt != nil {
		session.ExpiresAt = claims.ExpiresAt.Time
	}
	return session, nil
}
