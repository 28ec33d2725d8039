package handlers

import (
	"net/http"
	"strings"
	"time"

	"backend/internal/domain"
	"backend/internal/http/middleware"
	"backend/internal/repositories"
	"backend/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/auth/login
func Login(c *gin.Context) {
	var req loginRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	repo := repositories.UserRepository{}
	user, hash, err := repo.GetForLogin(req.Email)
	if err != nil {
		if domain.IsNotFound(err) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Email/username atau password salah"})
			return
		}
		RespondError(c, http.StatusInternalServerError, "gagal query user", err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Email/username atau password salah"})
		return
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	})
	tokenString, err := token.SignedString([]byte(currentEnv().JWTSecret))
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "gagal membuat token", err)
		return
	}

	utils.LogEvent(middleware.GetRequestID(c), "auth", "login", "user login")
	c.JSON(http.StatusOK, gin.H{
		"token": tokenString,
		"user":  user,
	})
}

type registerRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// POST /api/auth/register
func Register(c *gin.Context) {
	var req registerRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)

	if req.Name == "" || req.Username == "" || req.Email == "" || req.Password == "" {
		RespondError(c, http.StatusBadRequest, "name, username, email, dan password wajib diisi", nil)
		return
	}
	if len(req.Password) < 8 {
		RespondError(c, http.StatusBadRequest, "password minimal 8 karakter", nil)
		return
	}

	repo := repositories.UserRepository{}
	exists, err := repo.CountByIdentity(req.Email, req.Username)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "gagal cek user", err)
		return
	}
	if exists > 0 {
		RespondError(c, http.StatusBadRequest, "email atau username sudah terdaftar", nil)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "gagal memproses password", err)
		return
	}

	id, err := repo.Create(req.Name, req.Username, req.Email, req.Phone, string(hash), domain.RoleStudent)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "gagal membuat user", err)
		return
	}

	utils.LogEvent(middleware.GetRequestID(c), "auth", "register", "user baru terdaftar")
	c.JSON(http.StatusCreated, gin.H{
		"message": "registrasi berhasil",
		"user_id": id,
	})
}

// GET /api/me
func Me(c *gin.Context) {
	actor := middleware.Actor(c)
	user, err := repositories.UserRepository{}.GetByID(actor.UserID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
