// Package tagsuggest 调用大模型为文章推荐标签，走 OpenAI 兼容的 chat completions 接口
// （Ollama、llama-server、vLLM 均可）。
package tagsuggest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/d60-Lab/gin-blog/config"
)

const systemPrompt = `You are an AI assistant designed to suggest tags for blog posts.

Given the content of a blog post, suggest relevant tags that can be used to categorize the content and improve discoverability. Return a JSON array of strings.`

// ErrNoTags 模型回复中没有可解析的标签列表
var ErrNoTags = errors.New("model reply contained no tags")

// Suggester 根据正文推荐标签
type Suggester interface {
	Suggest(ctx context.Context, content string) ([]string, error)
}

// Client 基于 chat completions 接口的 Suggester
type Client struct {
	baseURL    string
	apiPath    string
	model      string
	apiKey     string
	httpClient *http.Client
}

// NewClient 按配置创建客户端，APIPath 默认 /v1/chat/completions
func NewClient(cfg config.TagSuggestConfig) *Client {
	if cfg.APIPath == "" {
		cfg.APIPath = "/v1/chat/completions"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiPath:    cfg.APIPath,
		model:      cfg.Model,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Suggest 发送正文并解析回复中的标签
func (c *Client) Suggest(ctx context.Context, content string) ([]string, error) {
	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: "Blog Post Content: " + content},
		},
		Temperature: 0.2,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.apiPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tag suggestion request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tag suggestion server returned %d: %s", resp.StatusCode, truncate(string(raw), 200))
	}

	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return nil, ErrNoTags
	}
	return ParseTags(out.Choices[0].Message.Content)
}

// ParseTags 从模型输出中取出 JSON 字符串数组或 {"tags": [...]}，忽略代码块标记和前后文字
func ParseTags(reply string) ([]string, error) {
	if start, end := strings.Index(reply, "["), strings.LastIndex(reply, "]"); start >= 0 && end > start {
		var tags []string
		if err := json.Unmarshal([]byte(reply[start:end+1]), &tags); err == nil {
			return tags, nil
		}
	}
	if start, end := strings.Index(reply, "{"), strings.LastIndex(reply, "}"); start >= 0 && end > start {
		var obj struct {
			Tags []string `json:"tags"`
		}
		if err := json.Unmarshal([]byte(reply[start:end+1]), &obj); err == nil && obj.Tags != nil {
			return obj.Tags, nil
		}
	}
	return nil, ErrNoTags
}

// Filter 转小写、去空白，丢弃空项、重复项和作者已选的标签
func Filter(suggested, existing []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(suggested))
	for _, t := range existing {
		seen[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
	}
	out := []string{}
	for _, t := range suggested {
		tag := strings.ToLower(strings.TrimSpace(t))
		if tag == "" || strings.Contains(tag, ",") {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
