package routes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"inmo-backoffice/internal/storage"
	"inmo-backoffice/internal/utils"
)

type userUpdateRequest struct {
	FullName *string `json:"fullName"`
	Role     *string `json:"role"`
	Password *string `json:"password"`
}

func validRole(r string) bool {
	switch r {
	case storage.RoleAdmin, storage.RoleUser, storage.RoleViewer:
		return true
	}
	return false
}

// UserRoutes is the admin-only user management surface. Regular users can
// only read and edit their own profile via /me.
func UserRoutes(r *gin.RouterGroup, deps *Deps) {

	r.GET("/me", func(c *gin.Context) {
		user, err := deps.Storage.GetUserByID(c.Request.Context(), GetUserID(c))
		if errors.Is(err, storage.ErrNotFound) {
			AbortWithError(c, ErrUserNotFound)
			return
		}
		if err != nil {
			AbortWithError(c, err)
			return
		}

		Ok(c, user, "Perfil obtenido correctamente")
	})

	admin := r.Group("", RequireAdmin())

	admin.GET("", func(c *gin.Context) {
		users, err := deps.Storage.ListUsers(c.Request.Context())
		if err != nil {
			AbortWithError(c, err)
			return
		}

		Ok(c, users, "Usuarios obtenidos correctamente")
	})

	admin.GET("/:id", func(c *gin.Context) {
		user, err := deps.Storage.GetUserByID(c.Request.Context(), c.Param("id"))
		if errors.Is(err, storage.ErrNotFound) {
			AbortWithError(c, ErrUserNotFound)
			return
		}
		if err != nil {
			AbortWithError(c, err)
			return
		}

		Ok(c, user, "Usuario obtenido correctamente")
	})

	admin.PATCH("/:id", func(c *gin.Context) {
		user, err := deps.Storage.GetUserByID(c.Request.Context(), c.Param("id"))
		if errors.Is(err, storage.ErrNotFound) {
			AbortWithError(c, ErrUserNotFound)
			return
		}
		if err != nil {
			AbortWithError(c, err)
			return
		}

		var req userUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, NewHTTPError(http.StatusBadRequest, err, "Cuerpo de la solicitud inválido"))
			return
		}

		if req.FullName != nil {
			user.FullName = req.FullName
		}
		if req.Role != nil {
			if !validRole(*req.Role) {
				AbortWithError(c, NewHTTPError(http.StatusBadRequest, nil, "Rol inválido"))
				return
			}
			user.Role = *req.Role
		}
		if req.Password != nil && *req.Password != "" {
			hash, err := utils.HashPassword(*req.Password)
			if err != nil {
				AbortWithError(c, err)
				return
			}
			user.PasswordHash = &hash
		}

		if err := deps.Storage.UpdateUser(c.Request.Context(), *user); err != nil {
			AbortWithError(c, err)
			return
		}

		Ok(c, user, "Usuario actualizado correctamente")
	})

	admin.DELETE("/:id", func(c *gin.Context) {
		if c.Param("id") == GetUserID(c) {
			AbortWithError(c, NewHTTPError(http.StatusBadRequest, nil, "No podés eliminar tu propio usuario"))
			return
		}

		err := deps.Storage.DeleteUser(c.Request.Context(), c.Param("id"))
		if errors.Is(err, storage.ErrNotFound) {
			AbortWithError(c, ErrUserNotFound)
			return
		}
		if err != nil {
			AbortWithError(c, err)
			return
		}

		Ok(c, nil, "Usuario eliminado correctamente")
	})
}
