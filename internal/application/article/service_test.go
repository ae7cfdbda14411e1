package article

import (
	"context"
	"testing"
	"time"

	"github.com/go-library-cms/internal/domain"
	"github.com/go-library-cms/internal/pkg/clock"
	"github.com/go-library-cms/internal/pkg/reqctx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockArticleStore struct{ mock.Mock }

func (m *mockArticleStore) Save(ctx context.Context, a *domain.Article) error {
	return m.Called(ctx, a).Error(0)
}
func (m *mockArticleStore) Get(ctx context.Context, articleID string) (*domain.Article, error) {
	args := m.Called(ctx, articleID)
	if a, _ := args.Get(0).(*domain.Article); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockArticleStore) List(ctx context.Context) ([]domain.Article, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]domain.Article)
	return out, args.Error(1)
}
func (m *mockArticleStore) ListPublic(ctx context.Context) ([]domain.Article, error) {
	args := m.Called(ctx)
	out, _ := args.Get(0).([]domain.Article)
	return out, args.Error(1)
}
func (m *mockArticleStore) Delete(ctx context.Context, articleID string) error {
	return m.Called(ctx, articleID).Error(0)
}

type mockAudit struct{ mock.Mock }

func (m *mockAudit) Record(ctx context.Context, rc reqctx.RequestContext, action, resourceType, resourceID, actorOverride string) {
	m.Called(ctx, rc, action, resourceType, resourceID, actorOverride)
}

type mockCache struct{ mock.Mock }

func (m *mockCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	args := m.Called(ctx, key, dest)
	return args.Bool(0), args.Error(1)
}
func (m *mockCache) Set(ctx context.Context, key string, v interface{}) error {
	return m.Called(ctx, key, v).Error(0)
}
func (m *mockCache) InvalidatePrefix(ctx context.Context, prefix string) error {
	return m.Called(ctx, prefix).Error(0)
}

// --- helpers ---

var t0 = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func rcFor(userID, role string) reqctx.RequestContext {
	return reqctx.RequestContext{Principal: &reqctx.Principal{UserID: userID, Username: userID, Role: role}}
}

type fixture struct {
	store *mockArticleStore
	audit *mockAudit
	cache *mockCache
	svc   Service
}

func newFixture() *fixture {
	f := &fixture{store: &mockArticleStore{}, audit: &mockAudit{}, cache: &mockCache{}}
	f.audit.On("Record", mock.Anything, mock.Anything, mock.Anything, domain.ResourceArticle, mock.Anything, "").Return().Maybe()
	f.cache.On("InvalidatePrefix", mock.Anything, CachePrefix).Return(nil).Maybe()
	f.svc = NewService(ServiceDeps{ArticleRepo: f.store, Audit: f.audit, Cache: f.cache, Clock: clock.NewManual(t0)})
	return f
}

// --- Create ---

func TestCreate_ViewerForbidden(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), rcFor("v1", domain.RoleViewer), domain.CreateArticleRequest{Title: "t", Content: "c"})

	assert.ErrorIs(t, err, domain.ErrForbidden)
	f.store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCreate_Unauthenticated(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), reqctx.RequestContext{}, domain.CreateArticleRequest{})

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestCreate_AuthorOverride(t *testing.T) {
	cases := []struct {
		name, role, requested, want string
	}{
		{"super admin may set author", domain.RoleSuperAdmin, "e1", "e1"},
		{"super admin blank falls back to self", domain.RoleSuperAdmin, "", "me"},
		{"editor cannot set author", domain.RoleEditor, "e1", "me"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			f.store.On("Save", mock.Anything, mock.MatchedBy(func(a *domain.Article) bool {
				return a.AuthorID == tc.want && a.CreatedAt.Equal(t0)
			})).Return(nil)

			a, err := f.svc.Create(context.Background(), rcFor("me", tc.role), domain.CreateArticleRequest{Title: "t", Content: "c", AuthorID: tc.requested})

			require.NoError(t, err)
			assert.Equal(t, tc.want, a.AuthorID)
			f.store.AssertExpectations(t)
			f.cache.AssertCalled(t, "InvalidatePrefix", mock.Anything, CachePrefix)
			f.audit.AssertCalled(t, "Record", mock.Anything, mock.Anything, domain.ActionCreateArticle, domain.ResourceArticle, a.ArticleID, "")
		})
	}
}

// --- List ---

func TestList_ViewerSeesPublicScope(t *testing.T) {
	f := newFixture()
	f.cache.On("Get", mock.Anything, "articles:public_desc", mock.Anything).Return(false, nil)
	f.store.On("ListPublic", mock.Anything).Return([]domain.Article{
		{ArticleID: "old", Public: true, CreatedAt: t0},
		{ArticleID: "new", Public: true, CreatedAt: t0.Add(time.Hour)},
	}, nil)
	f.cache.On("Set", mock.Anything, "articles:public_desc", mock.Anything).Return(nil)

	got, err := f.svc.List(context.Background(), rcFor("v1", domain.RoleViewer), domain.SortDesc)

	require.NoError(t, err)
	assert.Equal(t, "new", got[0].ArticleID)
	f.store.AssertNotCalled(t, "List", mock.Anything)
	f.audit.AssertCalled(t, "Record", mock.Anything, mock.Anything, domain.ActionListArticles, domain.ResourceArticle, "ALL", "")
}

func TestList_EditorSeesAllScope(t *testing.T) {
	f := newFixture()
	f.cache.On("Get", mock.Anything, "articles:all_asc", mock.Anything).Return(false, nil)
	f.store.On("List", mock.Anything).Return([]domain.Article{{ArticleID: "private"}}, nil)
	f.cache.On("Set", mock.Anything, "articles:all_asc", mock.Anything).Return(nil)

	got, err := f.svc.List(context.Background(), rcFor("e1", domain.RoleEditor), domain.SortAsc)

	require.NoError(t, err)
	assert.Len(t, got, 1)
	f.store.AssertNotCalled(t, "ListPublic", mock.Anything)
}

// --- Update / Delete ---

func TestUpdate_ContributorOnlyOwn(t *testing.T) {
	f := newFixture()
	f.store.On("Get", mock.Anything, "a1").Return(&domain.Article{ArticleID: "a1", AuthorID: "someone"}, nil)

	_, err := f.svc.Update(context.Background(), rcFor("c1", domain.RoleContributor), "a1", domain.UpdateArticleRequest{Title: "t", Content: "c"})

	assert.ErrorIs(t, err, domain.ErrForbidden)
	f.store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestUpdate_SuperAdminReassignsAuthor(t *testing.T) {
	f := newFixture()
	f.store.On("Get", mock.Anything, "a1").Return(&domain.Article{ArticleID: "a1", AuthorID: "someone"}, nil)
	f.store.On("Save", mock.Anything, mock.Anything).Return(nil)

	a, err := f.svc.Update(context.Background(), rcFor("root", domain.RoleSuperAdmin), "a1",
		domain.UpdateArticleRequest{Title: "new", Content: "body", Public: true, AuthorID: "e2"})

	require.NoError(t, err)
	assert.Equal(t, "e2", a.AuthorID)
	assert.Equal(t, "new", a.Title)
	assert.True(t, a.Public)
	assert.Equal(t, t0, a.UpdatedAt)
}

func TestUpdate_NotFound(t *testing.T) {
	f := newFixture()
	f.store.On("Get", mock.Anything, "nope").Return(nil, domain.ErrNotFound)

	_, err := f.svc.Update(context.Background(), rcFor("root", domain.RoleSuperAdmin), "nope", domain.UpdateArticleRequest{})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDelete_ContributorForbiddenEvenOwn(t *testing.T) {
	f := newFixture()
	f.store.On("Get", mock.Anything, "a1").Return(&domain.Article{ArticleID: "a1", AuthorID: "c1"}, nil)

	err := f.svc.Delete(context.Background(), rcFor("c1", domain.RoleContributor), "a1")

	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestDelete_EditorOwn(t *testing.T) {
	f := newFixture()
	f.store.On("Get", mock.Anything, "a1").Return(&domain.Article{ArticleID: "a1", AuthorID: "e1"}, nil)
	f.store.On("Delete", mock.Anything, "a1").Return(nil)

	err := f.svc.Delete(context.Background(), rcFor("e1", domain.RoleEditor), "a1")

	require.NoError(t, err)
	f.store.AssertExpectations(t)
	f.audit.AssertCalled(t, "Record", mock.Anything, mock.Anything, domain.ActionDeleteArticle, domain.ResourceArticle, "a1", "")
}
