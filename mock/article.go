package mock

import (
	"context"

	"github.com/fwojciec/bustop"
)

var _ bustop.ArticleService = (*ArticleService)(nil)

// ArticleService is a mock implementation of bustop.ArticleService.
type ArticleService struct {
	SaveArticlesFn func(ctx context.Context, articles []bustop.Article) (int, error)
	FindArticlesFn func(ctx context.Context, filter bustop.ArticleFilter) ([]*bustop.Article, error)
}

func (s *ArticleService) SaveArticles(ctx context.Context, articles []bustop.Article) (int, error) {
	return s.SaveArticlesFn(ctx, articles)
}

func (s *ArticleService) FindArticles(ctx context.Context, filter bustop.ArticleFilter) ([]*bustop.Article, error) {
	return s.FindArticlesFn(ctx, filter)
}
