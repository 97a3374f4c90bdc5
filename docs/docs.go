// Package docs 注册 Swagger 文档，供 /swagger/*any 使用
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/v1/posts": {
            "get": {
                "description": "q 非空时按标题、正文、标签做不区分大小写的子串匹配；按创建时间倒序",
                "produces": ["application/json"],
                "tags": ["文章"],
                "summary": "文章列表",
                "parameters": [
                    {"type": "string", "description": "搜索关键字", "name": "q", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            },
            "post": {
                "description": "tags 为逗号分隔字符串，服务端统一转小写并去重",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["文章"],
                "summary": "发布文章",
                "parameters": [
                    {"description": "文章内容", "name": "request", "in": "body", "required": true,
                     "schema": {"$ref": "#/definitions/handler.createPostRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/v1/posts/{slug}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["文章"],
                "summary": "文章详情",
                "parameters": [
                    {"type": "string", "description": "文章 slug", "name": "slug", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "304": {"description": "未修改"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/v1/comments": {
            "post": {
                "description": "文章不存在时默认静默忽略（204）；开启 blog.strict_comments 后返回 404",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["评论"],
                "summary": "发表评论",
                "parameters": [
                    {"description": "评论内容", "name": "request", "in": "body", "required": true,
                     "schema": {"$ref": "#/definitions/handler.addCommentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/response.Response"}},
                    "204": {"description": "文章不存在，已忽略"},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/api/v1/tags/suggest": {
            "post": {
                "description": "已选标签会从结果中剔除；结果需由客户端拼入 tags 字段后再发布",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["标签"],
                "summary": "标签推荐",
                "parameters": [
                    {"description": "正文与已选标签", "name": "request", "in": "body", "required": true,
                     "schema": {"$ref": "#/definitions/handler.suggestTagsRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/response.Response"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/healthz": {
            "get": {
                "produces": ["application/json"],
                "tags": ["系统"],
                "summary": "存活检查",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        }
    },
    "definitions": {
        "handler.createPostRequest": {
            "type": "object",
            "required": ["title", "content"],
            "properties": {
                "title": {"type": "string", "minLength": 5},
                "content": {"type": "string", "minLength": 20},
                "tags": {"type": "string"},
                "imageUrl": {"type": "string"}
            }
        },
        "handler.addCommentRequest": {
            "type": "object",
            "required": ["postId", "author", "content"],
            "properties": {
                "postId": {"type": "string"},
                "author": {"type": "string", "minLength": 2},
                "content": {"type": "string", "minLength": 5}
            }
        },
        "handler.suggestTagsRequest": {
            "type": "object",
            "required": ["content"],
            "properties": {
                "content": {"type": "string", "minLength": 20},
                "tags": {"type": "array", "items": {"type": "string"}}
            }
        },
        "response.Response": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "message": {"type": "string"},
                "data": {}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "gin-blog API",
	Description:      "博客文章、评论与标签推荐接口",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
