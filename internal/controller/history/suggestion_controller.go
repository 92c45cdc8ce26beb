package history

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lshigami/techmentor/internal/controller"
	"github.com/lshigami/techmentor/internal/service"
)

type SuggestionController struct {
	suggestions service.SuggestionService
}

func NewSuggestionController(suggestions service.SuggestionService) *SuggestionController {
	return &SuggestionController{suggestions: suggestions}
}

func (c *SuggestionController) RegisterRoutes(group *gin.RouterGroup) {
	suggestions := group.Group("/suggestions")
	suggestions.GET("/latest/:user_id", c.GetLatest)
	suggestions.GET("/tech-stack/:user_id/:tech_stack", c.ListByTechStack)
	suggestions.GET("/:user_id", c.ListByUser)
}

// ListByUser godoc
// @Summary List a user's study suggestions
// @Tags Suggestions
// @Produce json
// @Param user_id path string true "User ID"
// @Param limit query int false "Maximum suggestions (1-100)" default(10)
// @Success 200 {array} dto.SuggestionResponse
// @Failure 400 {object} dto.ErrorResponse "Invalid limit"
// @Router /suggestions/{user_id} [get]
func (c *SuggestionController) ListByUser(ctx *gin.Context) {
	limit, err := controller.ParseLimit(ctx)
	if err != nil {
		controller.RespondError(ctx, "ListSuggestions", err)
		return
	}
	resp, err := c.suggestions.ListByUser(ctx.Request.Context(), ctx.Param("user_id"), limit)
	if err != nil {
		controller.RespondError(ctx, "ListSuggestions", err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// GetLatest godoc
// @Summary Get a user's most recent suggestion
// @Tags Suggestions
// @Produce json
// @Param user_id path string true "User ID"
// @Success 200 {object} dto.SuggestionResponse
// @Failure 404 {object} dto.ErrorResponse "No suggestions for this user"
// @Router /suggestions/latest/{user_id} [get]
func (c *SuggestionController) GetLatest(ctx *gin.Context) {
	resp, err := c.suggestions.GetLatest(ctx.Request.Context(), ctx.Param("user_id"))
	if err != nil {
		controller.RespondError(ctx, "GetLatestSuggestion", err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}

// ListByTechStack godoc
// @Summary List a user's suggestions for one tech stack
// @Tags Suggestions
// @Produce json
// @Param user_id path string true "User ID"
// @Param tech_stack path string true "Tech stack, e.g. Python"
// @Param limit query int false "Maximum suggestions (1-100)" default(10)
// @Success 200 {array} dto.SuggestionResponse
// @Failure 400 {object} dto.ErrorResponse "Unknown tech stack or invalid limit"
// @Router /suggestions/tech-stack/{user_id}/{tech_stack} [get]
func (c *SuggestionController) ListByTechStack(ctx *gin.Context) {
	limit, err := controller.ParseLimit(ctx)
	if err != nil {
		controller.RespondError(ctx, "ListSuggestionsByTechStack", err)
		return
	}
	resp, err := c.suggestions.ListByUserAndTechStack(ctx.Request.Context(), ctx.Param("user_id"), ctx.Param("tech_stack"), limit)
	if err != nil {
		controller.RespondError(ctx, "ListSuggestionsByTechStack", err)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}
