package routes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"inmo-backoffice/internal/storage"
)

type contactRequest struct {
	Name  *string `json:"name"`
	Phone *string `json:"phone"`
	Email *string `json:"email"`
	Notes *string `json:"notes"`
}

func ContactRoutes(r *gin.RouterGroup, deps *Deps) {

	r.GET("", func(c *gin.Context) {
		page, limit := parsePagination(c, 20)

		items, total, err := deps.Storage.ListContacts(
			c.Request.Context(), GetUserID(c), c.Query("q"), page, limit)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		Paginated(c, items, pageMeta(page, limit, total), "Clientes obtenidos correctamente")
	})

	r.POST("", func(c *gin.Context) {
		var req contactRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, NewHTTPError(http.StatusBadRequest, err, "Cuerpo de la solicitud inválido"))
			return
		}
		if req.Name == nil || *req.Name == "" {
			AbortWithError(c, NewHTTPError(http.StatusBadRequest, nil, "El campo 'name' es obligatorio"))
			return
		}

		contact := storage.Contact{
			Name:   *req.Name,
			Phone:  req.Phone,
			Email:  req.Email,
			Notes:  req.Notes,
			UserID: GetUserID(c),
		}

		created, err := deps.Storage.CreateContact(c.Request.Context(), contact)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		Created(c, created, "Cliente creado correctamente")
	})

	r.GET("/:id", func(c *gin.Context) {
		contact, err := deps.Storage.GetContact(c.Request.Context(), GetUserID(c), c.Param("id"))
		if errors.Is(err, storage.ErrNotFound) {
			AbortWithError(c, ErrContactNotFound)
			return
		}
		if err != nil {
			AbortWithError(c, err)
			return
		}

		Ok(c, contact, "Cliente obtenido correctamente")
	})

	r.PATCH("/:id", func(c *gin.Context) {
		contact, err := deps.Storage.GetContact(c.Request.Context(), GetUserID(c), c.Param("id"))
		if errors.Is(err, storage.ErrNotFound) {
			AbortWithError(c, ErrContactNotFound)
			return
		}
		if err != nil {
			AbortWithError(c, err)
			return
		}

		var req contactRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, NewHTTPError(http.StatusBadRequest, err, "Cuerpo de la solicitud inválido"))
			return
		}

		if req.Name != nil {
			if *req.Name == "" {
				AbortWithError(c, NewHTTPError(http.StatusBadRequest, nil, "El campo 'name' no puede estar vacío"))
				return
			}
			contact.Name = *req.Name
		}
		if req.Phone != nil {
			contact.Phone = req.Phone
		}
		if req.Email != nil {
			contact.Email = req.Email
		}
		if req.Notes != nil {
			contact.Notes = req.Notes
		}

		if err := deps.Storage.UpdateContact(c.Request.Context(), *contact); err != nil {
			AbortWithError(c, err)
			return
		}

		Ok(c, contact, "Cliente actualizado correctamente")
	})

	r.DELETE("/:id", func(c *gin.Context) {
		err := deps.Storage.DeleteContact(c.Request.Context(), GetUserID(c), c.Param("id"))
		if errors.Is(err, storage.ErrNotFound) {
			AbortWithError(c, ErrContactNotFound)
			return
		}
		if err != nil {
			AbortWithError(c, err)
			return
		}

		Ok(c, nil, "Cliente eliminado correctamente")
	})
}
