package article

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/go-library-cms/internal/domain"
	"github.com/go-library-cms/internal/pkg/clock"
	"github.com/go-library-cms/internal/pkg/id"
	"github.com/go-library-cms/internal/pkg/reqctx"
)

const CachePrefix = "articles:"

type Service interface {
	Create(ctx context.Context, rc reqctx.RequestContext, req domain.CreateArticleRequest) (*domain.Article, error)
	List(ctx context.Context, rc reqctx.RequestContext, order domain.SortOrder) ([]domain.Article, error)
	Update(ctx context.Context, rc reqctx.RequestContext, articleID string, req domain.UpdateArticleRequest) (*domain.Article, error)
	Delete(ctx context.Context, rc reqctx.RequestContext, articleID string) error
}

type articleStore interface {
	Save(ctx context.Context, a *domain.Article) error
	Get(ctx context.Context, articleID string) (*domain.Article, error)
	List(ctx context.Context) ([]domain.Article, error)
	ListPublic(ctx context.Context) ([]domain.Article, error)
	Delete(ctx context.Context, articleID string) error
}

type auditRecorder interface {
	Record(ctx context.Context, rc reqctx.RequestContext, action, resourceType, resourceID, actorOverride string)
}

type listCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, v interface{}) error
	InvalidatePrefix(ctx context.Context, prefix string) error
}

type service struct {
	repo  articleStore
	audit auditRecorder
	cache listCache
	clock clock.Clock
}

type ServiceDeps struct {
	ArticleRepo articleStore
	Audit       auditRecorder
	Cache       listCache
	Clock       clock.Clock
}

func NewService(deps ServiceDeps) Service {
	clk := deps.Clock
	if clk == nil {
		clk = clock.System{}
	}
	return &service{repo: deps.ArticleRepo, audit: deps.Audit, cache: deps.Cache, clock: clk}
}

func (s *service) Create(ctx context.Context, rc reqctx.RequestContext, req domain.CreateArticleRequest) (*domain.Article, error) {
	p, err := principal(rc)
	if err != nil {
		return nil, err
	}
	if err := enforce(CanCreate(p)); err != nil {
		return nil, err
	}
	author := p.UserID
	if p.Role == domain.RoleSuperAdmin && req.AuthorID != "" {
		author = req.AuthorID
	}
	now := s.clock.Now()
	a := &domain.Article{
		ArticleID: id.NewAt(now),
		Title:     req.Title,
		Content:   req.Content,
		AuthorID:  author,
		Public:    req.Public,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Save(ctx, a); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	s.audit.Record(ctx, rc, domain.ActionCreateArticle, domain.ResourceArticle, a.ArticleID, "")
	return a, nil
}

func (s *service) List(ctx context.Context, rc reqctx.RequestContext, order domain.SortOrder) ([]domain.Article, error) {
	p, err := principal(rc)
	if err != nil {
		return nil, err
	}
	scope, load := "public_", s.repo.ListPublic
	if SeesPrivate(p) {
		scope, load = "all_", s.repo.List
	}
	key := CachePrefix + scope + string(order)

	var articles []domain.Article
	hit, err := s.cache.Get(ctx, key, &articles)
	if err != nil {
		slog.Warn("article cache read failed", "key", key, "err", err)
	}
	if !hit {
		if articles, err = load(ctx); err != nil {
			return nil, err
		}
		sort.SliceStable(articles, func(i, j int) bool {
			if order == domain.SortAsc {
				return articles[i].CreatedAt.Before(articles[j].CreatedAt)
			}
			return articles[i].CreatedAt.After(articles[j].CreatedAt)
		})
		if err := s.cache.Set(ctx, key, articles); err != nil {
			slog.Warn("article cache write failed", "key", key, "err", err)
		}
	}
	s.audit.Record(ctx, rc, domain.ActionListArticles, domain.ResourceArticle, "ALL", "")
	return articles, nil
}

func (s *service) Update(ctx context.Context, rc reqctx.RequestContext, articleID string, req domain.UpdateArticleRequest) (*domain.Article, error) {
	p, err := principal(rc)
	if err != nil {
		return nil, err
	}
	a, err := s.repo.Get(ctx, articleID)
	if err != nil {
		return nil, err
	}
	if err := enforce(CanUpdate(p, a)); err != nil {
		return nil, err
	}
	if p.Role == domain.RoleSuperAdmin && req.AuthorID != "" {
		a.AuthorID = req.AuthorID
	}
	a.Title = req.Title
	a.Content = req.Content
	a.Public = req.Public
	a.UpdatedAt = s.clock.Now()
	if err := s.repo.Save(ctx, a); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	s.audit.Record(ctx, rc, domain.ActionUpdateArticle, domain.ResourceArticle, a.ArticleID, "")
	return a, nil
}

func (s *service) Delete(ctx context.Context, rc reqctx.RequestContext, articleID string) error {
	p, err := principal(rc)
	if err != nil {
		return err
	}
	a, err := s.repo.Get(ctx, articleID)
	if err != nil {
		return err
	}
	if err := enforce(CanDelete(p, a)); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, articleID); err != nil {
		return err
	}
	s.invalidate(ctx)
	s.audit.Record(ctx, rc, domain.ActionDeleteArticle, domain.ResourceArticle, articleID, "")
	return nil
}

func (s *service) invalidate(ctx context.Context) {
	if err := s.cache.InvalidatePrefix(ctx, CachePrefix); err != nil {
		slog.Warn("article cache invalidation failed", "err", err)
	}
}

func principal(rc reqctx.RequestContext) (*reqctx.Principal, error) {
	if !rc.Authenticated() {
		return nil, fmt.Errorf("authentication required: %w", domain.ErrUnauthorized)
	}
	return rc.Principal, nil
}

func enforce(d domain.Decision) error {
	if d.Allowed {
		return nil
	}
	return fmt.Errorf("%s: %w", d.Reason, domain.ErrForbidden)
}
