package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/mand0ng/fitness-app-backend/internal/data/repos/users"
	"github.com/mand0ng/fitness-app-backend/internal/pkg/dbctx"
	"github.com/mand0ng/fitness-app-backend/internal/platform/ctxutil"
	"github.com/mand0ng/fitness-app-backend/internal/platform/logger"
)

type AuthConfig struct {
	Secret    string
	Algorithm string
}

// AuthMiddleware accepts bearer JWTs whose subject is the user's email and
// attaches the resolved user to the request context.
type AuthMiddleware struct {
	log      *logger.Logger
	secret   []byte
	methods  []string
	userRepo users.UserRepo
}

func NewAuthMiddleware(log *logger.Logger, cfg AuthConfig, userRepo users.UserRepo) *AuthMiddleware {
	alg := strings.TrimSpace(cfg.Algorithm)
	if alg == "" {
		alg = jwt.SigningMethodHS256.Alg()
	}
	return &AuthMiddleware{
		log:      log.With("middleware", "AuthMiddleware"),
		secret:   []byte(cfg.Secret),
		methods:  []string{alg},
		userRepo: userRepo,
	}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractBearer(c)
		if tokenString == "" {
			unauthorized(c, "missing or invalid token")
			return
		}
		email, err := am.subject(tokenString)
		if err != nil {
			am.log.Debug("Rejected token", "error", err)
			unauthorized(c, "could not validate credentials")
			return
		}
		u, err := am.userRepo.GetByEmail(dbctx.Background(c.Request.Context()), email)
		if errors.Is(err, users.ErrNotFound) {
			unauthorized(c, "could not validate credentials")
			return
		}
		if err != nil {
			am.log.Error("Loading token user failed", "error", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": gin.H{"message": "internal error", "code": "internal"},
			})
			return
		}
		ctx := ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{UserID: u.ID, Email: u.Email})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (am *AuthMiddleware) subject(tokenString string) (string, error) {
	if len(am.secret) == 0 {
		return "", errors.New("jwt secret not configured")
	}
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		return am.secret, nil
	}, jwt.WithValidMethods(am.methods))
	if err != nil {
		return "", err
	}
	sub, err := token.Claims.GetSubject()
	if err != nil {
		return "", err
	}
	sub = strings.TrimSpace(sub)
	if sub == "" {
		return "", errors.New("token has no subject")
	}
	return sub, nil
}

func unauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": gin.H{"message": msg, "code": "unauthorized"},
	})
}

func extractBearer(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
