package controllers

import (
	"net/http"
	"time"

	"elabcrm-backend/services"
	"elabcrm-backend/utils"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	auth         *services.AuthService
	secureCookie bool
}

func NewAuthController(auth *services.AuthService, secureCookie bool) *AuthController {
	return &AuthController{auth: auth, secureCookie: secureCookie}
}

func (ac *AuthController) Register(c *gin.Context) {
	var input services.RegisterInput
	if !bindJSON(c, &input) {
		return
	}

	result, err := ac.auth.Register(c.Request.Context(), input)
	if err != nil {
		respondWithServiceError(c, err, "Failed to create user")
		return
	}
	ac.setTokenCookie(c, result)

	c.JSON(http.StatusCreated, gin.H{
		"message": "Registration successful",
		"token":   result.Token,
		"user":    result.User,
	})
}

func (ac *AuthController) Login(c *gin.Context) {
	var input services.LoginInput
	if !bindJSON(c, &input) {
		return
	}

	result, err := ac.auth.Login(c.Request.Context(), input)
	if err != nil {
		respondWithServiceError(c, err, "Failed to log in")
		return
	}
	ac.setTokenCookie(c, result)

	c.JSON(http.StatusOK, gin.H{
		"token":     result.Token,
		"expiresAt": result.ExpiresAt,
		"user":      result.User,
	})
}

func (ac *AuthController) Me(c *gin.Context) {
	userID := c.GetString("userId")
	if userID == "" {
		utils.RespondWithError(c, http.StatusUnauthorized, "User ID not found in context")
		return
	}

	user, err := ac.auth.Me(c.Request.Context(), userID)
	if err != nil {
		respondWithServiceError(c, err, "Failed to load user")
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Logout revokes the presented token until it would have expired anyway.
func (ac *AuthController) Logout(c *gin.Context) {
	expiresAt, _ := c.Get("tokenExpiresAt")
	exp, _ := expiresAt.(time.Time)

	if err := ac.auth.Logout(c.Request.Context(), c.GetString("tokenId"), exp); err != nil {
		respondWithServiceError(c, err, "Failed to log out")
		return
	}
	c.SetCookie("token", "", -1, "/", "", ac.secureCookie, true)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

func (ac *AuthController) setTokenCookie(c *gin.Context, result *services.AuthResult) {
	maxAge := int(time.Until(result.ExpiresAt).Seconds())
	c.SetCookie("token", result.Token, maxAge, "/", "", ac.secureCookie, true)
}
