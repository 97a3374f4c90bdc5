package seed

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/gin-blog/internal/model"
	"github.com/d60-Lab/gin-blog/internal/repository"
	"github.com/d60-Lab/gin-blog/pkg/logger"
)

// Posts 演示数据，摘要为手写文案而非自动派生
func Posts(imageURL string) []*model.Post {
	return []*model.Post{
		{
			ID:        "1",
			Slug:      "getting-started-with-react-hooks",
			Title:     "Getting Started with React Hooks",
			Excerpt:   "A beginner-friendly guide to understanding and using the most common React Hooks. We'll look at useState for managing state and useEffect for handling side effects.",
			Content:   "React Hooks revolutionized how we write components. Before hooks, class components were necessary for state and lifecycle methods. Now, we can do it all in functional components. The `useState` hook allows you to add state to your components. It's a function that returns an array with two elements: the current state value and a function to update it. The `useEffect` hook lets you perform side effects in your components, like fetching data or subscribing to an event. It runs after every render by default, but you can control when it runs by passing a dependency array.",
			CreatedAt: time.Date(2024, 5, 10, 10, 0, 0, 0, time.UTC),
			Tags:      []string{"react", "javascript", "frontend", "web-development"},
			ImageURL:  imageURL,
		},
		{
			ID:        "2",
			Slug:      "building-modern-web-apps-with-nextjs",
			Title:     "Building Modern Web Apps with Next.js",
			Excerpt:   "Explore the powerful features of Next.js that make it a go-to framework for modern web development, including server-side rendering and file-based routing.",
			Content:   "Next.js is a React framework that gives you the best developer experience with all the features you need for production: hybrid static & server rendering, TypeScript support, smart bundling, route pre-fetching, and more. No config needed. Its file-based routing system is intuitive; you just create files in the `pages` or `app` directory, and Next.js handles the routing. Server Components are a new addition that allow you to write UI that can be rendered and optionally cached on the server, leading to faster page loads and less client-side JavaScript.",
			CreatedAt: time.Date(2024, 6, 22, 14, 30, 0, 0, time.UTC),
			Tags:      []string{"nextjs", "react", "fullstack", "web-development"},
			ImageURL:  imageURL,
		},
		{
			ID:        "3",
			Slug:      "deploying-ai-models-with-genkit",
			Title:     "Deploying AI Models with Genkit",
			Excerpt:   "Learn how to easily build, test, and deploy AI-powered features in your applications using Firebase Genkit. A practical introduction to the future of AI development.",
			Content:   "Firebase Genkit is a powerful, open-source framework designed to simplify the process of building and deploying AI-powered applications. It provides a cohesive set of tools for creating complex AI flows that can call models like Gemini, manage prompts, and even call other services or APIs. With Genkit, you can define flows in TypeScript or Go, test them locally with a built-in UI, and then deploy them to Firebase Cloud Functions or other serverless environments. This makes it incredibly efficient to add sophisticated AI capabilities, like content generation or data analysis, to your apps.",
			CreatedAt: time.Date(2024, 7, 18, 9, 0, 0, 0, time.UTC),
			Tags:      []string{"ai", "firebase", "genkit", "genai"},
			ImageURL:  imageURL,
		},
	}
}

// Load 仅在存储为空时写入演示数据，返回写入条数
func Load(ctx context.Context, repo repository.PostRepository, imageURL string) (int, error) {
	n, err := repo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	if n > 0 {
		logger.Debug("seed skipped, store not empty", zap.Int64("posts", n))
		return 0, nil
	}

	posts := Posts(imageURL)
	// 按时间正序写入，与新文章插入在前的语义一致
	for _, p := range posts {
		p.Comments = []model.Comment{}
		if err := repo.Create(ctx, p); err != nil {
			return 0, fmt.Errorf("seed post %s: %w", p.Slug, err)
		}
	}
	logger.Info("seeded sample posts", zap.Int("count", len(posts)))
	return len(posts), nil
}
