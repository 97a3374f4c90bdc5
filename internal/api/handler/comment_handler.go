package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/gin-blog/internal/service"
	"github.com/d60-Lab/gin-blog/pkg/response"
)

type addCommentRequest struct {
	PostID  string `json:"postId" binding:"required"`
	Author  string `json:"author" binding:"required,min=2"`
	Content string `json:"content" binding:"required,min=5"`
}

// AddComment 发表评论
// @Summary 发表评论
// @Description 文章不存在时默认静默忽略（204）；开启 blog.strict_comments 后返回 404
// @Tags 评论
// @Accept json
// @Produce json
// @Param request body addCommentRequest true "评论内容"
// @Success 201 {object} response.Response{data=model.Comment}
// @Success 204 "文章不存在，已忽略"
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/comments [post]
func (h *Handler) AddComment(c *gin.Context) {
	var req addCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	comment, err := h.postService.AddComment(c.Request.Context(), service.AddCommentInput{
		PostID:  req.PostID,
		Author:  req.Author,
		Content: req.Content,
	})
	if err != nil {
		serviceError(c, err)
		return
	}
	if comment == nil {
		response.NoContent(c)
		return
	}
	response.Created(c, comment)
}
