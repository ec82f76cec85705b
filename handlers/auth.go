package handlers

import (
	"errors"
	"net/http"

	"arzaq-api/apperr"
	"arzaq-api/middleware"
	"arzaq-api/models"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type RegisterRequest struct {
	Email    string          `json:"email" binding:"required,email"`
	Password string          `json:"password" binding:"required,min=6"`
	FullName string          `json:"full_name" binding:"required"`
	Role     models.UserRole `json:"role" binding:"required"`
}

// LoginRequest is form-encoded; the username field carries the email
type LoginRequest struct {
	Username string `form:"username" binding:"required"`
	Password string `form:"password" binding:"required"`
}

type GoogleAuthRequest struct {
	Token string          `json:"token" binding:"required"`
	Role  models.UserRole `json:"role"`
}

// Register creates a new user account
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Write(c, apperr.New(apperr.KindValidation, err.Error()))
		return
	}
	if !models.ValidRole(req.Role) {
		apperr.Write(c, apperr.New(apperr.KindValidation, "role must be client, restaurant, or admin"))
		return
	}

	var existing models.User
	if err := h.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		apperr.Write(c, apperr.New(apperr.KindDuplicateEmail, "user with this email already exists"))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		apperr.Write(c, err)
		return
	}

	hashStr := string(hash)
	user := models.User{
		Email:          req.Email,
		FullName:       req.FullName,
		HashedPassword: &hashStr,
		Role:           req.Role,
		IsActive:       true,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		apperr.Write(c, err)
		return
	}

	h.Log.Info().Uint("user_id", user.ID).Str("role", string(user.Role)).Msg("user registered")
	c.JSON(http.StatusCreated, user)
}

// Login authenticates form-encoded credentials and issues a bearer token
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		apperr.Write(c, apperr.New(apperr.KindValidation, err.Error()))
		return
	}

	var user models.User
	if err := h.DB.Where("email = ?", req.Username).First(&user).Error; err != nil {
		apperr.Write(c, apperr.New(apperr.KindInvalidCredentials, "incorrect email or password"))
		return
	}
	if user.HashedPassword == nil ||
		bcrypt.CompareHashAndPassword([]byte(*user.HashedPassword), []byte(req.Password)) != nil {
		apperr.Write(c, apperr.New(apperr.KindInvalidCredentials, "incorrect email or password"))
		return
	}
	if !user.IsActive {
		apperr.Write(c, apperr.New(apperr.KindInvalidCredentials, "account is deactivated"))
		return
	}

	h.issueToken(c, &user, http.StatusOK)
}

// Me returns the authenticated user's profile
func (h *Handler) Me(c *gin.Context) {
	var user models.User
	if err := h.DB.First(&user, middleware.Actor(c).ID).Error; err != nil {
		apperr.Write(c, apperr.New(apperr.KindNotFound, "user not found"))
		return
	}
	c.JSON(http.StatusOK, user)
}

// GoogleLogin authenticates an existing account via a Google access token,
// linking the Google identity on first use
func (h *Handler) GoogleLogin(c *gin.Context) {
	var req GoogleAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Write(c, apperr.New(apperr.KindValidation, err.Error()))
		return
	}

	info, err := h.Google.Verify(c.Request.Context(), req.Token)
	if err != nil {
		apperr.Write(c, err)
		return
	}

	var user models.User
	if err := h.DB.Where("email = ? OR google_id = ?", info.Email, info.GoogleID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			apperr.Write(c, apperr.New(apperr.KindNotFound, "user not found, please register first"))
			return
		}
		apperr.Write(c, err)
		return
	}

	if user.GoogleID == nil {
		if err := h.DB.Model(&user).Update("google_id", info.GoogleID).Error; err != nil {
			apperr.Write(c, err)
			return
		}
	}
	if !user.IsActive {
		apperr.Write(c, apperr.New(apperr.KindInvalidCredentials, "account is deactivated"))
		return
	}

	h.issueToken(c, &user, http.StatusOK)
}

// GoogleRegister creates a password-less account from a Google identity
func (h *Handler) GoogleRegister(c *gin.Context) {
	var req GoogleAuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Write(c, apperr.New(apperr.KindValidation, err.Error()))
		return
	}
	role := req.Role
	if role == "" {
		role = models.RoleClient
	}
	if !models.ValidRole(role) {
		apperr.Write(c, apperr.New(apperr.KindValidation, "role must be client, restaurant, or admin"))
		return
	}

	info, err := h.Google.Verify(c.Request.Context(), req.Token)
	if err != nil {
		apperr.Write(c, err)
		return
	}

	var existing models.User
	if err := h.DB.Where("email = ? OR google_id = ?", info.Email, info.GoogleID).First(&existing).Error; err == nil {
		apperr.Write(c, apperr.New(apperr.KindConflict, "user with this email or Google account already exists"))
		return
	}

	user := models.User{
		Email:      info.Email,
		FullName:   info.Name,
		GoogleID:   &info.GoogleID,
		Role:       role,
		IsActive:   true,
		IsVerified: info.EmailVerified, // trust Google's email verification
	}
	if err := h.DB.Create(&user).Error; err != nil {
		apperr.Write(c, err)
		return
	}

	h.issueToken(c, &user, http.StatusCreated)
}

func (h *Handler) issueToken(c *gin.Context, user *models.User, status int) {
	token, err := middleware.GenerateToken(user, h.Cfg.JWTSecret, h.Cfg.TokenExpiry)
	if err != nil {
		apperr.Write(c, err)
		return
	}
	c.JSON(status, gin.H{"access_token": token, "token_type": "bearer"})
}
