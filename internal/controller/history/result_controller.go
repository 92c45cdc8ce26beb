package history

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/techmentor/internal/controller"
	"github.com/lshigami/techmentor/internal/service"
)

type ResultController struct {
	results service.ResultService
}

func NewResultController(results service.ResultService) *ResultController {
	return &ResultController{results: results}
}

func (c *ResultController) RegisterRoutes(group *gin.RouterGroup) {
	results := group.Group("/results")
	results.GET("/session/:session_id", c.GetBySession)
	results.GET("/latest/:user_id", c.GetLatest)
	results.GET("/tech-stack/:user_id/:tech_stack", c.ListByTechStack)
	results.GET("/:user_id", c.ListByUser)
}

// ListByUser godoc
// @Summary List a user's interview results
// @Description Newest first.
// @Tags Results
// @Produce json
// @Param user_id path string true "User ID"
// @Param limit query int false "Maximum results (1-100)" default(10)
// @Success 200 {object} dto.ResultListResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid limit"
// @Failure 503 {object} dto.ErrorResponse "Database unavailable"
// @Router /results/{user_id} [get]
func (c *ResultController) ListByUser(ctx *gin.Context) {
	limit, err := controller.ParseLimit(ctx)
	if err != nil {
		controller.RespondError(ctx, "ListResults", err)
		return
	}
	resp, err := c.results.ListByUser(ctx.Request.Context(), ctx.Param("user_id"), limit)
	if err != nil {
		controller.RespondError(ctx, "ListResults", err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetBySession godoc
// @Summary Get the result of one interview
// @Tags Results
// @Produce json
// @Param session_id path string true "Session ID"
// @Success 200 {object} dto.ResultResponse
// @Failure 404 {object} dto.ErrorResponse "Result not found"
// @Router /results/session/{session_id} [get]
func (c *ResultController) GetBySession(ctx *gin.Context) {
	resp, err := c.results.GetBySession(ctx.Request.Context(), ctx.Param("session_id"))
	if err != nil {
		controller.RespondError(ctx, "GetResultBySession", err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetLatest godoc
// @Summary Get a user's most recent result
// @Tags Results
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {object} dto.ResultResponse
// @Failure 404 {object} dto.ErrorResponse "No results for this user"
// @Router /results/latest/{user_id} [get]
func (c *ResultController) GetLatest(ctx *gin.Context) {
	resp, err := c.results.GetLatest(ctx.Request.Context(), ctx.Param("user_id"))
	if err != nil {
		controller.RespondError(ctx, "GetLatestResult", err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// ListByTechStack godoc
// @Summary List a user's results for one tech stack
// @Tags Results
// @Produce json
// @Param user_id path string true "User ID"
// @Param tech_stack path string true "Tech stack, e.g. Python"
// @Param limit query int false "Maximum results (1-100)" default(10)
// @Success 200 {object} dto.ResultListResponse
// @Failure 400 {object} dto.ErrorResponse "Unknown tech stack or invalid limit"
// @Router /results/tech-stack/{user_id}/{tech_stack} [get]
func (c *ResultController) ListByTechStack(ctx *gin.Context) {
	limit, err := controller.ParseLimit(ctx)
	if err != nil {
		controller.RespondError(ctx, "ListResultsByTechStack", err)
		return
	}
	resp, err := c.results.ListByUserAndTechStack(ctx.Request.Context(), ctx.Param("user_id"), ctx.Param("tech_stack"), limit)
	if err != nil {
		controller.RespondError(ctx, "ListResultsByTechStack", err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}
