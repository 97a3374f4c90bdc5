package handler

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/d60-Lab/gin-blog/internal/service"
	"github.com/d60-Lab/gin-blog/internal/tagsuggest"
	"github.com/d60-Lab/gin-blog/pkg/response"
)

// Handler HTTP 处理器集合
type Handler struct {
	postService  service.PostService
	tagSuggester tagsuggest.Suggester
}

// New 创建处理器；tagSuggester 可为 nil，此时标签推荐返回 503
func New(postService service.PostService, tagSuggester tagsuggest.Suggester) *Handler {
	return &Handler{postService: postService, tagSuggester: tagSuggester}
}

// RegisterValidatorNames 让 gin 绑定错误使用 json 字段名
func RegisterValidatorNames() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "" || name == "-" {
				return fld.Name
			}
			return name
		})
	}
}

// bindError 把绑定失败转成字段级提示
func bindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		response.BadRequest(c, "invalid request body")
		return
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			fields[fe.Field()] = fmt.Sprintf("%s is required", fe.Field())
		case "min":
			fields[fe.Field()] = fmt.Sprintf("%s must be at least %s characters", fe.Field(), fe.Param())
		default:
			fields[fe.Field()] = fmt.Sprintf("%s is invalid", fe.Field())
		}
	}
	response.ValidationFailed(c, "validation failed", fields)
}

// serviceError 处理服务层返回的错误
func serviceError(c *gin.Context, err error) {
	var ve *service.ValidationError
	switch {
	case errors.As(err, &ve):
		response.ValidationFailed(c, ve.Error(), ve.Fields)
	case errors.Is(err, service.ErrPostNotFound):
		response.NotFound(c, "post not found")
	default:
		response.InternalError(c, err)
	}
}
