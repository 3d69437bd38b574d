package handlers

import (
	"errors"
	"net/http"

	"medirouter/datasets"
	"medirouter/models"
	"medirouter/services/compare"
	"medirouter/services/router"
	"medirouter/utils"

	"github.com/gin-gonic/gin"
)

// QueryHandler exposes the router as the single conversational entry
// point.
type QueryHandler struct {
	Router router.QueryRouter
}

func NewQueryHandler(r router.QueryRouter) *QueryHandler {
	return &QueryHandler{Router: r}
}

// HandleQuery classifies and dispatches a free-form request.
func (h *QueryHandler) HandleQuery(c *gin.Context) {
	var req models.QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid query payload", err.Error())
		return
	}

	resp, err := h.Router.Route(c.Request.Context(), req)
	if err != nil {
		status, message := queryErrorStatus(err)
		utils.JSONError(c, status, message, err.Error())
		return
	}
	c.JSON(http.StatusOK, resp)
}

func queryErrorStatus(err error) (int, string) {
	if router.IsAmbiguous(err) {
		return http.StatusUnprocessableEntity, "could not determine what you are asking for; add more detail"
	}
	var ce *compare.CompareError
	if errors.As(err, &ce) {
		return http.StatusNotFound, "no hospitals matched your criteria; try again with more detail"
	}
	var ge *datasets.GatewayError
	if errors.As(err, &ge) {
		return http.StatusServiceUnavailable, "a required dataset is unavailable"
	}
	return http.StatusInternalServerError, "query failed"
}
