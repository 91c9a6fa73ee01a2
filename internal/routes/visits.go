package routes

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"inmo-backoffice/internal/email"
	"inmo-backoffice/internal/gcal"
	"inmo-backoffice/internal/storage"
)

type visitRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Date        *string `json:"date"`
	StartTime   *string `json:"startTime"`
	EndTime     *string `json:"endTime"`
	Type        *string `json:"type"`
	PropertyID  *string `json:"propertyId"`
	ContactID   *string `json:"clientId"`
}

func validVisitType(t string) bool {
	switch t {
	case storage.VisitTypeShowing, storage.VisitTypeSigning,
		storage.VisitTypeAppraisal, storage.VisitTypeOther:
		return true
	}
	return false
}

// propertyAddress resolves the address for the calendar event's location.
// A missing or deleted property just means no location.
func propertyAddress(c *gin.Context, deps *Deps, propertyID *string) string {
	if propertyID == nil || *propertyID == "" {
		return ""
	}
	property, err := deps.Storage.GetProperty(c.Request.Context(), GetUserID(c), *propertyID)
	if err != nil {
		return ""
	}
	return property.Address
}

func eventInputFor(visit *storage.Visit, location string) gcal.EventInput {
	input := gcal.EventInput{
		Title:     visit.Title,
		Date:      visit.Date,
		StartTime: visit.StartTime,
		EndTime:   visit.EndTime,
		Location:  location,
	}
	if visit.Description != nil {
		input.Description = *visit.Description
	}
	return input
}

// sendConfirmation mails the contact when one is linked and has an email.
// Failures are logged only.
func sendConfirmation(c *gin.Context, deps *Deps, visit *storage.Visit, address string) {
	if deps.Mailer == nil || visit.ContactID == nil {
		return
	}

	contact, err := deps.Storage.GetContact(c.Request.Context(), GetUserID(c), *visit.ContactID)
	if err != nil || contact.Email == nil || *contact.Email == "" {
		return
	}

	displayDate := visit.Date
	if d, err := time.Parse("2006-01-02", visit.Date); err == nil {
		displayDate = d.Format("02/01/2006")
	}

	err = deps.Mailer.SendVisitConfirmation(email.VisitConfirmation{
		To:      *contact.Email,
		Name:    contact.Name,
		Title:   visit.Title,
		Date:    displayDate,
		Start:   visit.StartTime,
		End:     visit.EndTime,
		Address: address,
	})
	if err != nil {
		slog.Warn("Failed to send visit confirmation email",
			"visit_id", visit.ID, "error", err)
	}
}

func VisitRoutes(r *gin.RouterGroup, deps *Deps) {

	r.GET("", func(c *gin.Context) {
		page, limit := parsePagination(c, 10)

		items, total, err := deps.Storage.ListVisits(c.Request.Context(), GetUserID(c), page, limit)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		Paginated(c, items, pageMeta(page, limit, total), "Visitas obtenidas correctamente")
	})

	r.POST("", func(c *gin.Context) {
		var req visitRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, NewHTTPError(http.StatusBadRequest, err, "Cuerpo de la solicitud inválido"))
			return
		}

		for field, value := range map[string]*string{
			"title":     req.Title,
			"date":      req.Date,
			"startTime": req.StartTime,
			"endTime":   req.EndTime,
		} {
			if value == nil || *value == "" {
				AbortWithError(c, NewHTTPError(http.StatusBadRequest, nil,
					"El campo '"+field+"' es obligatorio"))
				return
			}
		}

		visit := storage.Visit{
			Title:       *req.Title,
			Description: req.Description,
			Date:        *req.Date,
			StartTime:   *req.StartTime,
			EndTime:     *req.EndTime,
			Type:        storage.VisitTypeShowing,
			PropertyID:  req.PropertyID,
			ContactID:   req.ContactID,
			UserID:      GetUserID(c),
		}
		if req.Type != nil {
			if !validVisitType(*req.Type) {
				AbortWithError(c, NewHTTPError(http.StatusBadRequest, nil, "Tipo de visita inválido"))
				return
			}
			visit.Type = *req.Type
		}

		// Mirror to the calendar first so the event ID lands on the row.
		// Any sync failure degrades to a visit without a remote event.
		address := propertyAddress(c, deps, visit.PropertyID)
		if token, ok := deps.Calendar.ValidToken(c.Request.Context(), visit.UserID); ok {
			eventID, err := deps.Calendar.CreateEvent(c.Request.Context(), token, eventInputFor(&visit, address))
			if err != nil {
				slog.Warn("Failed to create calendar event", "error", err)
			} else {
				visit.GoogleEventID = &eventID
			}
		}

		created, err := deps.Storage.CreateVisit(c.Request.Context(), visit)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		sendConfirmation(c, deps, created, address)

		Created(c, created, "Visita creada correctamente")
	})

	r.GET("/:id", func(c *gin.Context) {
		visit, err := deps.Storage.GetVisit(c.Request.Context(), GetUserID(c), c.Param("id"))
		if errors.Is(err, storage.ErrNotFound) {
			AbortWithError(c, ErrVisitNotFound)
			return
		}
		if err != nil {
			AbortWithError(c, err)
			return
		}

		Ok(c, visit, "Visita obtenida correctamente")
	})

	r.PATCH("/:id", func(c *gin.Context) {
		visit, err := deps.Storage.GetVisit(c.Request.Context(), GetUserID(c), c.Param("id"))
		if errors.Is(err, storage.ErrNotFound) {
			AbortWithError(c, ErrVisitNotFound)
			return
		}
		if err != nil {
			AbortWithError(c, err)
			return
		}

		var req visitRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			AbortWithError(c, NewHTTPError(http.StatusBadRequest, err, "Cuerpo de la solicitud inválido"))
			return
		}

		if req.Title != nil {
			if *req.Title == "" {
				AbortWithError(c, NewHTTPError(http.StatusBadRequest, nil, "El campo 'title' no puede estar vacío"))
				return
			}
			visit.Title = *req.Title
		}
		if req.Description != nil {
			visit.Description = req.Description
		}
		if req.Date != nil && *req.Date != "" {
			visit.Date = *req.Date
		}
		if req.StartTime != nil && *req.StartTime != "" {
			visit.StartTime = *req.StartTime
		}
		if req.EndTime != nil && *req.EndTime != "" {
			visit.EndTime = *req.EndTime
		}
		if req.Type != nil {
			if !validVisitType(*req.Type) {
				AbortWithError(c, NewHTTPError(http.StatusBadRequest, nil, "Tipo de visita inválido"))
				return
			}
			visit.Type = *req.Type
		}
		if req.PropertyID != nil {
			visit.PropertyID = req.PropertyID
		}
		if req.ContactID != nil {
			visit.ContactID = req.ContactID
		}

		if err := deps.Storage.UpdateVisit(c.Request.Context(), *visit); err != nil {
			AbortWithError(c, err)
			return
		}

		// Remote update only when the visit was mirrored at creation.
		// Visits without an event ID stay local forever.
		if visit.GoogleEventID != nil {
			address := propertyAddress(c, deps, visit.PropertyID)
			if token, ok := deps.Calendar.ValidToken(c.Request.Context(), visit.UserID); ok {
				err := deps.Calendar.UpdateEvent(c.Request.Context(), token,
					*visit.GoogleEventID, eventInputFor(visit, address))
				if err != nil {
					slog.Warn("Failed to update calendar event",
						"visit_id", visit.ID, "event_id", *visit.GoogleEventID, "error", err)
				}
			}
		}

		Ok(c, visit, "Visita actualizada correctamente")
	})

	r.DELETE("/:id", func(c *gin.Context) {
		visit, err := deps.Storage.GetVisit(c.Request.Context(), GetUserID(c), c.Param("id"))
		if errors.Is(err, storage.ErrNotFound) {
			AbortWithError(c, ErrVisitNotFound)
			return
		}
		if err != nil {
			AbortWithError(c, err)
			return
		}

		// Best-effort remote cleanup; the local delete always proceeds.
		if visit.GoogleEventID != nil {
			if token, ok := deps.Calendar.ValidToken(c.Request.Context(), visit.UserID); ok {
				err := deps.Calendar.DeleteEvent(c.Request.Context(), token, *visit.GoogleEventID)
				if err != nil {
					slog.Warn("Failed to delete calendar event",
						"visit_id", visit.ID, "event_id", *visit.GoogleEventID, "error", err)
				}
			}
		}

		if err := deps.Storage.DeleteVisit(c.Request.Context(), GetUserID(c), visit.ID); err != nil {
			AbortWithError(c, err)
			return
		}

		Ok(c, nil, "Visita eliminada correctamente")
	})
}
