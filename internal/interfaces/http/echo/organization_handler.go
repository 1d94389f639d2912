package echo

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	app "github.com/mohammadpnp/crm-import/internal/application/organization"
)

type OrganizationHandler struct {
	useCase app.GetOrganizationByID
}

func NewOrganizationHandler(useCase app.GetOrganizationByID) *OrganizationHandler {
	return &OrganizationHandler{useCase: useCase}
}

func (h *OrganizationHandler) GetOrganizationByID(c echo.Context) error {
	out, err := h.useCase.Execute(c.Request().Context(), app.GetOrganizationByIDInput{
		ID: c.Param("id"),
	})
	if err != nil {
		if errors.Is(err, app.ErrInvalidOrganizationID) {
			return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
				Code:    "invalid_organization_id",
				Message: "id must be a valid UUID",
			}})
		}
		if errors.Is(err, app.ErrOrganizationNotFound) {
			return c.JSON(http.StatusNotFound, apiResponse{Error: &errorBody{
				Code:    "not_found",
				Message: "organization not found",
			}})
		}

		return c.JSON(http.StatusInternalServerError, apiResponse{Error: &errorBody{
			Code:    "internal_error",
			Message: "failed to get organization",
		}})
	}

	return c.JSON(http.StatusOK, apiResponse{Data: out})
}
