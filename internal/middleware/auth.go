package middleware

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"team11_backend/internal/config"
	"team11_backend/internal/util"
	"team11_backend/pkg/logger"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionUserKey is where the core app keeps the user id in its session.
const SessionUserKey = "user_id"

// Identity returns the handlers that read the caller identity shared by the
// core app. They never reject a request; use RequireAPIUser/RequireHTMLUser.
func Identity(cfg *config.AuthConfig) gin.HandlersChain {
	switch cfg.Mode {
	case "jwt":
		return gin.HandlersChain{JWTIdentity(cfg.JWTSecret, cfg.CookieName)}
	default:
		store := cookie.NewStore([]byte(cfg.SessionSecret))
		store.Options(sessions.Options{
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
		return gin.HandlersChain{sessions.Sessions(cfg.SessionName, store), SessionIdentity()}
	}
}

// SessionIdentity loads the user id from the core app's signed cookie session.
func SessionIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if userID, ok := toUserID(session.Get(SessionUserKey)); ok {
			c.Set(util.UserContextKey, &util.Claims{UserID: userID})
		}
		c.Next()
	}
}

// JWTIdentity reads a token from the Authorization header or the shared cookie.
func JWTIdentity(secret, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := ""
		if authHeader := c.GetHeader("Authorization"); strings.HasPrefix(authHeader, "Bearer ") {
			tokenString = strings.TrimPrefix(authHeader, "Bearer ")
		}
		if tokenString == "" && cookieName != "" {
			if v, err := c.Cookie(cookieName); err == nil {
				tokenString = v
			}
		}

		if tokenString != "" {
			claims, err := util.ParseJWT(tokenString, secret)
			if err != nil {
				logger.Log.Debug("shared token rejected", zap.Error(err))
			} else {
				c.Set(util.UserContextKey, claims)
			}
		}
		c.Next()
	}
}

func RequireAPIUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if util.GetUserFromContext(c) == nil {
			util.Unauthorized(c)
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireHTMLUser sends anonymous browsers to the core app's login page.
func RequireHTMLUser(loginURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if util.GetUserFromContext(c) == nil {
			c.Redirect(http.StatusFound, LoginRedirect(loginURL, c.Request.URL.RequestURI()))
			c.Abort()
			return
		}
		c.Next()
	}
}

func LoginRedirect(loginURL, next string) string {
	sep := "?"
	if strings.Contains(loginURL, "?") {
		sep = "&"
	}
	return loginURL + sep + "next=" + url.QueryEscape(next)
}

func toUserID(v interface{}) (uint, bool) {
	switch id := v.(type) {
	case uint:
		return id, id > 0
	case int:
		return uint(id), id > 0
	case int64:
		return uint(id), id > 0
	case uint64:
		return uint(id), id > 0
	case float64:
		return uint(id), id > 0
	case string:
		n := util.MustParseUint(id)
		return n, n > 0
	case nil:
		return 0, false
	default:
		logger.Log.Warn("unexpected session user id type", zap.String("type", fmt.Sprintf("%T", v)))
		return 0, false
	}
}
