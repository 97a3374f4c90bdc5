package handler

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/d60-Lab/gin-blog/internal/tagsuggest"
	"github.com/d60-Lab/gin-blog/pkg/logger"
	"github.com/d60-Lab/gin-blog/pkg/response"
)

type suggestTagsRequest struct {
	Content string   `json:"content" binding:"required,min=20"`
	Tags    []string `json:"tags"`
}

// SuggestTags AI 标签推荐
// @Summary 标签推荐
// @Description 已选标签会从结果中剔除；结果需由客户端拼入 tags 字段后再发布
// @Tags 标签
// @Accept json
// @Produce json
// @Param request body suggestTagsRequest true "正文与已选标签"
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Failure 400 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /api/v1/tags/suggest [post]
func (h *Handler) SuggestTags(c *gin.Context) {
	if h.tagSuggester == nil {
		response.ServiceUnavailable(c, "tag suggestion is not configured")
		return
	}
	var req suggestTagsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	tags, err := h.tagSuggester.Suggest(c.Request.Context(), req.Content)
	if err != nil {
		logger.Warn("tag suggestion failed", zap.Error(err))
		response.ServiceUnavailable(c, "could not suggest tags, please try again")
		return
	}
	response.Success(c, gin.H{"tags": tagsuggest.Filter(tags, req.Tags)})
}

// Health 存活检查
// @Summary 存活检查
// @Tags 系统
// @Produce json
// @Success 200 {object} response.Response{data=map[string]interface{}}
// @Router /healthz [get]
func (h *Handler) Health(c *gin.Context) {
	n, err := h.postService.CountPosts(c.Request.Context())
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, gin.H{"status": "ok", "posts": n})
}
