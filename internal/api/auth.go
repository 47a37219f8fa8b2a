package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/reliefgrid/reliefgrid/internal/coordinator"
	"github.com/reliefgrid/reliefgrid/internal/models"
)

type registerRequest struct {
	Handle          string      `json:"handle" binding:"required"`
	Password        string      `json:"password" binding:"required,min=8"`
	DisplayName     string      `json:"display_name" binding:"required"`
	Role            models.Role `json:"role" binding:"required"`
	WalletAddress   string      `json:"wallet_address"`
	PostalCode      string      `json:"postal_code"`
	RegistrationID  string      `json:"registration_id"`
	PostalCodeStart string      `json:"postal_code_start"`
	PostalCodeEnd   string      `json:"postal_code_end"`
	Specialization  string      `json:"specialization"`
}

type loginRequest struct {
	Handle   string `json:"handle" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type authResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to hash password"})
		return
	}

	user, err := h.coord.RegisterUser(c.Request.Context(), coordinator.RegisterUserInput{
		Handle:          req.Handle,
		DisplayName:     req.DisplayName,
		PasswordHash:    string(hash),
		Role:            req.Role,
		WalletAddress:   req.WalletAddress,
		PostalCode:      req.PostalCode,
		RegistrationID:  req.RegistrationID,
		PostalCodeStart: req.PostalCodeStart,
		PostalCodeEnd:   req.PostalCodeEnd,
		Specialization:  req.Specialization,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	token, err := h.issueToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sign token"})
		return
	}

	c.JSON(http.StatusCreated, authResponse{Token: token, User: user})
}

func (h *Handler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.store.GetUserByHandle(c.Request.Context(), req.Handle)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
		return
	}
	if user == nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}

	token, err := h.issueToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to sign token"})
		return
	}

	c.JSON(http.StatusOK, authResponse{Token: token, User: user})
}

func (h *Handler) issueToken(user *models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.ID,
		"role": string(user.Role),
		"exp":  time.Now().Add(h.tokenDuration).Unix(),
	})
	return token.SignedString([]byte(h.jwtSecret))
}
