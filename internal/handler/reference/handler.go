package reference

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/jwalitptl/dental-admin/internal/middleware"
	"github.com/jwalitptl/dental-admin/internal/model"
	"github.com/jwalitptl/dental-admin/internal/repository"
	apperrors "github.com/jwalitptl/dental-admin/pkg/errors"
	"github.com/jwalitptl/dental-admin/pkg/httputil"
)

type Handler struct {
	repo repository.ReferenceRepository
}

func NewHandler(repo repository.ReferenceRepository) *Handler {
	return &Handler{repo: repo}
}

func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/clinics/:clinicID/confirmation-options", h.GetConfirmationOptions)
}

// GetConfirmationOptions lists what the confirmation form offers: services,
// active boxes and the active staff roster of the clinic.
func (h *Handler) GetConfirmationOptions(c *gin.Context) {
	actor, ok := middleware.Actor(c)
	if !ok {
		httputil.RespondWithError(c, apperrors.Unauthorized(nil))
		return
	}
	clinicID, err := uuid.Parse(c.Param("clinicID"))
	if err != nil {
		httputil.BadRequest(c, "invalid clinic ID")
		return
	}
	if actor.ClinicID != clinicID {
		httputil.RespondWithError(c, apperrors.Forbidden("clinic does not match token"))
		return
	}

	ctx := c.Request.Context()
	services, err := h.repo.ListServices(ctx, clinicID)
	if err != nil {
		httputil.RespondWithError(c, apperrors.Internal(err))
		return
	}
	boxes, err := h.repo.ListBoxes(ctx, clinicID)
	if err != nil {
		httputil.RespondWithError(c, apperrors.Internal(err))
		return
	}
	staff, err := h.repo.ListStaff(ctx, clinicID)
	if err != nil {
		httputil.RespondWithError(c, apperrors.Internal(err))
		return
	}

	opts := model.ConfirmationOptions{
		Services: nonNil(services),
		Boxes:    nonNil(boxes),
		Staff:    nonNil(staff),
	}
	httputil.RespondWithSuccess(c, http.StatusOK, opts)
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
