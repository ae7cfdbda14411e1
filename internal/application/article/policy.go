package article

import (
	"github.com/go-library-cms/internal/domain"
	"github.com/go-library-cms/internal/pkg/reqctx"
)

func CanCreate(p *reqctx.Principal) domain.Decision {
	switch p.Role {
	case domain.RoleSuperAdmin, domain.RoleEditor, domain.RoleContributor:
		return domain.Allow()
	}
	return domain.Deny("viewers cannot create articles")
}

// CanUpdate lets editors and contributors touch only their own articles.
func CanUpdate(p *reqctx.Principal, a *domain.Article) domain.Decision {
	switch p.Role {
	case domain.RoleSuperAdmin:
		return domain.Allow()
	case domain.RoleEditor, domain.RoleContributor:
		if a.AuthorID == p.UserID {
			return domain.Allow()
		}
		return domain.Deny("you can only update your own articles")
	}
	return domain.Deny("you cannot update articles")
}

func CanDelete(p *reqctx.Principal, a *domain.Article) domain.Decision {
	switch p.Role {
	case domain.RoleSuperAdmin:
		return domain.Allow()
	case domain.RoleEditor:
		if a.AuthorID == p.UserID {
			return domain.Allow()
		}
		return domain.Deny("you can only delete your own articles")
	}
	return domain.Deny("you cannot delete articles")
}

// SeesPrivate reports whether non-public articles are listed for p.
func SeesPrivate(p *reqctx.Principal) bool { return p.Role != domain.RoleViewer }
