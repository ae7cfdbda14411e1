package audit

import (
	"context"
	"log/slog"
	"sort"

	"github.com/go-library-cms/internal/domain"
	"github.com/go-library-cms/internal/pkg/clock"
	"github.com/go-library-cms/internal/pkg/reqctx"
	"github.com/google/uuid"
)

type Service interface {
	// Record appends an entry. It never fails the caller; store errors are logged.
	Record(ctx context.Context, rc reqctx.RequestContext, action, resourceType, resourceID, actorOverride string)
	List(ctx context.Context, rc reqctx.RequestContext, order domain.SortOrder) ([]domain.AuditLog, error)
}

type auditStore interface {
	Put(ctx context.Context, l *domain.AuditLog) error
	List(ctx context.Context) ([]domain.AuditLog, error)
}

type service struct {
	repo  auditStore
	clock clock.Clock
}

func NewService(repo auditStore, clk clock.Clock) Service {
	if clk == nil {
		clk = clock.System{}
	}
	return &service{repo: repo, clock: clk}
}

func (s *service) Record(ctx context.Context, rc reqctx.RequestContext, action, resourceType, resourceID, actorOverride string) {
	entry := &domain.AuditLog{
		AuditID:      uuid.NewString(),
		Username:     rc.Actor(actorOverride),
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		Method:       rc.Method,
		Path:         rc.Path,
		UserAgent:    rc.UserAgent,
		IPAddress:    rc.SourceAddress,
		Timestamp:    s.clock.Now(),
	}
	// the entry outlives a cancelled request
	if err := s.repo.Put(context.WithoutCancel(ctx), entry); err != nil {
		slog.Error("audit write failed", "action", action, "actor", entry.Username, "err", err)
	}
}

func (s *service) List(ctx context.Context, rc reqctx.RequestContext, order domain.SortOrder) ([]domain.AuditLog, error) {
	logs, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(logs, func(i, j int) bool {
		if order == domain.SortAsc {
			return logs[i].Timestamp.Before(logs[j].Timestamp)
		}
		return logs[i].Timestamp.After(logs[j].Timestamp)
	})
	s.Record(ctx, rc, domain.ActionListAuditLogs, domain.ResourceAudit, "ALL", "")
	return logs, nil
}
