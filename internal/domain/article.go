package domain

import "time"

type Article struct {
	ArticleID string    `json:"id" dynamodbav:"article_id"`
	Title     string    `json:"title" dynamodbav:"title"`
	Content   string    `json:"content" dynamodbav:"content"`
	AuthorID  string    `json:"author_id" dynamodbav:"author_id"`
	Public    bool      `json:"public" dynamodbav:"is_public"`
	CreatedAt time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated" dynamodbav:"updated_at"`
}

type CreateArticleRequest struct {
	Title    string `json:"title" validate:"required"`
	Content  string `json:"content" validate:"required"`
	Public   bool   `json:"public"`
	AuthorID string `json:"author_id"` // honoured for SUPER_ADMIN only
}

type UpdateArticleRequest struct {
	Title    string `json:"title" validate:"required"`
	Content  string `json:"content" validate:"required"`
	Public   bool   `json:"public"`
	AuthorID string `json:"author_id"`
}
