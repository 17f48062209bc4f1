package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mindful-chat/internal/domain"
	"mindful-chat/internal/service"
)

const sessionContextKey = "session"

// SessionCookie agrupa los parámetros de la cookie de sesión.
type SessionCookie struct {
	Name   string
	Secure bool
}

// SessionMiddleware resuelve la sesión desde la cookie firmada; si falta o no es válida crea una nueva.
func SessionMiddleware(logger *zap.Logger, sessions *service.SessionService, cookie SessionCookie) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sessions == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"message": "sessions not configured"})
			c.Abort()
			return
		}

		var (
			session domain.Session
			err     error
		)
		token, cookieErr := c.Cookie(cookie.Name)
		if cookieErr == nil {
			session, err = sessions.Parse(token)
		}
		if cookieErr != nil || err != nil {
			session = sessions.NewSession()
			signed, issueErr := sessions.Issue(session)
			if issueErr != nil {
				logger.Error("issue session failed", zap.Error(issueErr))
				c.JSON(http.StatusInternalServerError, gin.H{"message": "could not start session"})
				c.Abort()
				return
			}
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(cookie.Name, signed, int(sessions.TTL().Seconds()), "/", "", cookie.Secure, true)
		}

		c.Set(sessionContextKey, session)
		c.Next()
	}
}

// GetSession obtiene la sesión resuelta por SessionMiddleware.
func GetSession(c *gin.Context) (domain.Session, bool) {
	val, ok := c.Get(sessionContextKey)
	if !ok {
		return domain.Session{}, false
	}
	session, ok := val.(domain.Session)
	return session, ok
}

// RequireUser redirige al login cuando la sesión no tiene usuario asociado.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := GetSession(c)
		if !ok || session.UserID == "" {
			c.Redirect(http.StatusFound, "/auth/login")
			c.Abort()
			return
		}
		c.Next()
	}
}
