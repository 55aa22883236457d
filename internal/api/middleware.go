package api

import (
	"net/http"
	"strings"

	"medstock/server/internal/apperrors"
	"medstock/server/internal/models"
	"medstock/server/internal/services"

	"github.com/gin-gonic/gin"
)

// Ключи контекста gin с данными аутентифицированного пользователя
const (
	ctxUserID   = "user_id"
	ctxUserName = "user_name"
	ctxUserRole = "user_role"
)

// respondError преобразует ошибку сервиса в HTTP-ответ
func respondError(c *gin.Context, err error) {
	appErr := apperrors.AsError(err)
	c.JSON(appErr.HTTPStatus(), gin.H{
		"error":   appErr.Message,
		"kind":    appErr.Kind,
		"details": appErr.Details,
	})
}

// AuthMiddleware проверяет Bearer токен и кладет данные пользователя в контекст
func AuthMiddleware(authService *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Отсутствует заголовок Authorization",
			})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error":   "Неверный формат заголовка Authorization",
				"details": "Ожидается: Bearer <token>",
			})
			c.Abort()
			return
		}

		claims, err := authService.ValidateToken(parts[1])
		if err != nil {
			message := "Недействительный токен"
			if err == services.ErrExpiredToken {
				message = "Срок действия токена истек"
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": message})
			c.Abort()
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxUserName, claims.Name)
		c.Set(ctxUserRole, claims.Role)
		c.Next()
	}
}

// RequireRoles пропускает только пользователей с одной из перечисленных ролей
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		roleValue, exists := c.Get(ctxUserRole)
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Требуется аутентификация"})
			c.Abort()
			return
		}

		role, ok := roleValue.(models.UserRole)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Требуется аутентификация"})
			c.Abort()
			return
		}

		for _, allowed := range roles {
			if role == allowed {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{
			"error":   "Недостаточно прав",
			"details": "Операция недоступна для роли " + string(role),
		})
		c.Abort()
	}
}

// currentUserID возвращает id аутентифицированного пользователя
func currentUserID(c *gin.Context) string {
	return c.GetString(ctxUserID)
}

// currentUserRole возвращает роль аутентифицированного пользователя
func currentUserRole(c *gin.Context) models.UserRole {
	if v, exists := c.Get(ctxUserRole); exists {
		if role, ok := v.(models.UserRole); ok {
			return role
		}
	}
	return ""
}
