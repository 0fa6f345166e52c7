package middleware

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"educa/config"
	"educa/models"
)

const tokenTTL = 24 * time.Hour

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims is the payload of an access token.
type Claims struct {
	UserID   uint   `json:"userId"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func jwtSecret() []byte {
	cfg := config.AppConfig
	if cfg == nil {
		cfg = config.FromEnv()
	}
	return []byte(cfg.JWTKey)
}

// GenerateJWT generates a JWT token for the user
func GenerateJWT(userID uint, username string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenTTL)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret())
}

// ParseToken validates tokenString and returns its claims.
func ParseToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecret(), nil
	})
	if err != nil || !token.Valid || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Authenticate accepts either a Bearer token or HTTP Basic credentials and
// stores the caller in c.Locals("userId") and c.Locals("username").
func Authenticate(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Missing or invalid Authorization header", nil)
		}

		switch {
		case strings.HasPrefix(authHeader, "Bearer "):
			claims, err := ParseToken(strings.TrimPrefix(authHeader, "Bearer "))
			if err != nil {
				return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid or expired token", nil)
			}
			c.Locals("userId", claims.UserID)
			c.Locals("username", claims.Username)

		case strings.HasPrefix(authHeader, "Basic "):
			user, err := basicUser(c, db)
			if err != nil {
				c.Set(fiber.HeaderWWWAuthenticate, `Basic realm="educa"`)
				return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid credentials", nil)
			}
			c.Locals("userId", user.ID)
			c.Locals("username", user.Username)

		default:
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid Authorization header format", nil)
		}
		return c.Next()
	}
}

func basicUser(c *fiber.Ctx, db *gorm.DB) (*models.User, error) {
	username, password, ok := basicCredentials(c.Get(fiber.HeaderAuthorization))
	if !ok {
		return nil, ErrInvalidToken
	}
	var user models.User
	if err := db.WithContext(c.UserContext()).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, err
	}
	return &user, nil
}

// UserID returns the authenticated caller set by Authenticate.
func UserID(c *fiber.Ctx) (uint, bool) {
	id, ok := c.Locals("userId").(uint)
	return id, ok && id != 0
}
