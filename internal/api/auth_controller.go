package api

import (
	"net/http"

	"medstock/server/internal/services"

	"github.com/gin-gonic/gin"
)

// AuthController управляет API endpoints для авторизации
type AuthController struct {
	authService     *services.AuthService
	activityService *services.ActivityService
}

// NewAuthController создает новый контроллер авторизации
func NewAuthController(authService *services.AuthService, activityService *services.ActivityService) *AuthController {
	return &AuthController{
		authService:     authService,
		activityService: activityService,
	}
}

// SignInRequest представляет запрос на вход
type SignInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SignIn обрабатывает вход пользователя
// POST /api/v1/auth/signin
func (ac *AuthController) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Неверные параметры запроса",
			"details": err.Error(),
		})
		return
	}

	result, err := ac.authService.SignIn(req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	ac.activityService.Record(result.User.ID, services.ActivityLogin, "user", &result.User.ID, "", c.ClientIP())

	c.JSON(http.StatusOK, gin.H{
		"token": result.Token,
		"user": gin.H{
			"id":    result.User.ID,
			"name":  result.User.Name,
			"email": result.User.Email,
			"role":  result.User.Role,
		},
	})
}

// CreateUser создает нового пользователя (только администратор)
// POST /api/v1/auth/create-user
func (ac *AuthController) CreateUser(c *gin.Context) {
	var req services.CreateUserInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Неверные параметры запроса",
			"details": err.Error(),
		})
		return
	}

	user, err := ac.authService.CreateUser(req)
	if err != nil {
		respondError(c, err)
		return
	}

	ac.activityService.Record(currentUserID(c), services.ActivityCreateUser, "user", &user.ID, user.Email, c.ClientIP())

	c.JSON(http.StatusCreated, gin.H{
		"user": gin.H{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
		},
	})
}
