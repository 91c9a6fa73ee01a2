package routes

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"

	"inmo-backoffice/internal/storage"
)

type propertyRequest struct {
	Address *string `json:"address"`
	City    *string `json:"city"`
	Zone    *string `json:"zone"`
	Type    *string `json:"type"`
	Status  *string `json:"status"`
}

func validPropertyStatus(s string) bool {
	switch s {
	case storage.PropertyStatusActive, storage.PropertyStatusSold,
		storage.PropertyStatusRented, storage.PropertyStatusSuspended:
		return true
	}
	return false
}

func PropertyRoutes(r *gin.RouterGroup, deps *Deps) {

	r.GET("", func(c *gin.Context) {
		page, limit := parsePagination(c, 20)

		items, total, err := deps.Storage.ListProperties(c.Request.Context(), GetUserID(c), page, limit)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		Paginated(c, items, pageMeta(page, limit, total), "Propiedades obtenidas correctamente")
	})

	r.POST("", func(c *gin.Context) {
		var req propertyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, NewHTTPError(http.StatusBadRequest, err, "Cuerpo de la solicitud inválido"))
			return
		}
		if req.Address == nil || *req.Address == "" {
			AbortWithError(c, NewHTTPError(http.StatusBadRequest, nil, "El campo 'address' es obligatorio"))
			return
		}

		property := storage.Property{
			Address: *req.Address,
			City:    req.City,
			Zone:    req.Zone,
			Type:    req.Type,
			Status:  storage.PropertyStatusActive,
			UserID:  GetUserID(c),
		}
		if req.Status != nil {
			if !validPropertyStatus(*req.Status) {
				AbortWithError(c, NewHTTPError(http.StatusBadRequest, nil, "Estado de propiedad inválido"))
				return
			}
			property.Status = *req.Status
		}

		created, err := deps.Storage.CreateProperty(c.Request.Context(), property)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		Created(c, created, "Propiedad creada correctamente")
	})

	r.GET("/:id", func(c *gin.Context) {
		property, err := deps.Storage.GetProperty(c.Request.Context(), GetUserID(c), c.Param("id"))
		if errors.Is(err, storage.ErrNotFound) {
			AbortWithError(c, ErrPropertyNotFound)
			return
		}
		if err != nil {
			AbortWithError(c, err)
			return
		}

		Ok(c, property, "Propiedad obtenida correctamente")
	})

	// QR code pointing at the property's page, for printed listings.
	r.GET("/:id/qr", func(c *gin.Context) {
		property, err := deps.Storage.GetProperty(c.Request.Context(), GetUserID(c), c.Param("id"))
		if errors.Is(err, storage.ErrNotFound) {
			AbortWithError(c, ErrPropertyNotFound)
			return
		}
		if err != nil {
			AbortWithError(c, err)
			return
		}

		png, err := qrcode.Encode(deps.BaseURL+"/propiedades/"+property.ID, qrcode.Medium, 256)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		c.Data(http.StatusOK, "image/png", png)
	})

	r.PATCH("/:id", func(c *gin.Context) {
		property, err := deps.Storage.GetProperty(c.Request.Context(), GetUserID(c), c.Param("id"))
		if errors.Is(err, storage.ErrNotFound) {
			AbortWithError(c, ErrPropertyNotFound)
			return
		}
		if err != nil {
			AbortWithError(c, err)
			return
		}

		var req propertyRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, NewHTTPError(http.StatusBadRequest, err, "Cuerpo de la solicitud inválido"))
			return
		}

		if req.Address != nil {
			if *req.Address == "" {
				AbortWithError(c, NewHTTPError(http.StatusBadRequest, nil, "El campo 'address' no puede estar vacío"))
				return
			}
			property.Address = *req.Address
		}
		if req.City != nil {
			property.City = req.City
		}
		if req.Zone != nil {
			property.Zone = req.Zone
		}
		if req.Type != nil {
			property.Type = req.Type
		}
		if req.Status != nil {
			if !validPropertyStatus(*req.Status) {
				AbortWithError(c, NewHTTPError(http.StatusBadRequest, nil, "Estado de propiedad inválido"))
				return
			}
			property.Status = *req.Status
		}

		if err := deps.Storage.UpdateProperty(c.Request.Context(), *property); err != nil {
			AbortWithError(c, err)
			return
		}

		Ok(c, property, "Propiedad actualizada correctamente")
	})

	r.DELETE("/:id", func(c *gin.Context) {
		err := deps.Storage.DeleteProperty(c.Request.Context(), GetUserID(c), c.Param("id"))
		if errors.Is(err, storage.ErrNotFound) {
			AbortWithError(c, ErrPropertyNotFound)
			return
		}
		if err != nil {
			AbortWithError(c, err)
			return
		}

		Ok(c, nil, "Propiedad eliminada correctamente")
	})
}
