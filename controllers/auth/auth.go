package authController

import (
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"educa/logger"
	"educa/middleware"
	"educa/models"
	"educa/validators"
	authValidator "educa/validators/auth"
)

type Controller struct {
	db        *gorm.DB
	saltRound int
	log       *logger.Logger
}

func New(db *gorm.DB, saltRound int, log *logger.Logger) *Controller {
	if saltRound < bcrypt.MinCost {
		saltRound = bcrypt.DefaultCost
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Controller{db: db, saltRound: saltRound, log: log.With("controller", "Auth")}
}

func (a *Controller) Signup(c *fiber.Ctx) error {
	reqData := validators.Validated[authValidator.SignupRequest](c, authValidator.ValidatedKey)
	db := a.db.WithContext(c.UserContext())

	// Check if username already exists
	if err := db.Where("username = ?", reqData.Username).First(&models.User{}).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "Username is already taken!", nil)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), a.saltRound)
	if err != nil {
		a.log.Error("hash password", "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}

	newUser := models.User{
		Username: reqData.Username,
		Email:    strings.ToLower(strings.TrimSpace(reqData.Email)),
		Password: string(hashedPassword),
	}
	if err := db.Create(&newUser).Error; err != nil {
		a.log.Error("save user", "username", newUser.Username, "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to Signup user!", nil)
	}

	a.log.Info("user signed up", "user_id", newUser.ID, "username", newUser.Username)
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "User registered successfully.", newUser)
}

func (a *Controller) Login(c *fiber.Ctx) error {
	reqData := validators.Validated[authValidator.LoginRequest](c, authValidator.ValidatedKey)
	db := a.db.WithContext(c.UserContext())

	var user models.User
	if err := db.Where("username = ?", reqData.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid username or password!", nil)
		}
		a.log.Error("load user", "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to process your request!", nil)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(reqData.Password)); err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid username or password!", nil)
	}

	token, err := middleware.GenerateJWT(user.ID, user.Username)
	if err != nil {
		a.log.Error("sign token", "error", err)
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to generate token!", nil)
	}

	now := time.Now()
	if err := db.Model(&user).Update("last_login", now).Error; err != nil {
		a.log.Warn("update last login", "user_id", user.ID, "error", err)
	}
	user.LastLogin = &now

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successful.", fiber.Map{
		"token": token,
		"user":  user,
	})
}
