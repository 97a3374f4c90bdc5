package handler

import (
	"encoding/hex"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/blake2b"

	"github.com/d60-Lab/gin-blog/internal/service"
	"github.com/d60-Lab/gin-blog/pkg/response"
)

type createPostRequest struct {
	Title    string `json:"title" binding:"required,min=5"`
	Content  string `json:"content" binding:"required,min=20"`
	Tags     string `json:"tags"`
	ImageURL string `json:"imageUrl"`
}

// ListPosts 文章列表 / 搜索
// @Summary 文章列表
// @Description q 非空时按标题、正文、标签做不区分大小写的子串匹配；按创建时间倒序
// @Tags 文章
// @Produce json
// @Param q query string false "搜索关键字"
// @Success 200 {object} response.Response{data=[]model.Post}
// @Failure 500 {object} response.Response
// @Router /api/v1/posts [get]
func (h *Handler) ListPosts(c *gin.Context) {
	posts, err := h.postService.ListPosts(c.Request.Context(), c.Query("q"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Success(c, posts)
}

// GetPost 按 slug 查询文章
// @Summary 文章详情
// @Tags 文章
// @Produce json
// @Param slug path string true "文章 slug"
// @Success 200 {object} response.Response{data=model.Post}
// @Success 304 "未修改"
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{slug} [get]
func (h *Handler) GetPost(c *gin.Context) {
	post, err := h.postService.GetPostBySlug(c.Request.Context(), c.Param("slug"))
	if err != nil {
		serviceError(c, err)
		return
	}

	body, err := json.Marshal(response.Response{Code: 0, Message: "success", Data: post})
	if err != nil {
		response.InternalError(c, err)
		return
	}
	sum := blake2b.Sum256(body)
	etag := `"` + hex.EncodeToString(sum[:16]) + `"`
	c.Header("ETag", etag)
	if c.GetHeader("If-None-Match") == etag {
		c.Status(http.StatusNotModified)
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", body)
}

// CreatePost 发布文章
// @Summary 发布文章
// @Description tags 为逗号分隔字符串，服务端统一转小写并去重
// @Tags 文章
// @Accept json
// @Produce json
// @Param request body createPostRequest true "文章内容"
// @Success 201 {object} response.Response{data=model.Post}
// @Failure 400 {object} response.Response
// @Failure 500 {object} response.Response
// @Router /api/v1/posts [post]
func (h *Handler) CreatePost(c *gin.Context) {
	var req createPostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	post, err := h.postService.CreatePost(c.Request.Context(), service.CreatePostInput{
		Title:    req.Title,
		Content:  req.Content,
		Tags:     req.Tags,
		ImageURL: req.ImageURL,
	})
	if err != nil {
		serviceError(c, err)
		return
	}
	c.Header("Location", "/api/v1/posts/"+post.Slug)
	response.Created(c, post)
}
