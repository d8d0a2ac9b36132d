package service

import (
	"context"
	"fmt"

	"github.com/target/control-panel-ui/internal/domain/model"
	"github.com/target/control-panel-ui/internal/ports"
)

// ActivityService lists recent operator actions for the dashboard feed.
type ActivityService struct {
	audit ports.AuditLog
}

// NewActivityService constructs a new ActivityService. A nil audit log yields an empty feed.
func NewActivityService(audit ports.AuditLog) *ActivityService {
	return &ActivityService{audit: audit}
}

// Enabled reports whether an audit log backs the feed.
func (s *ActivityService) Enabled() bool { return s != nil && s.audit != nil }

// Recent returns up to limit entries, newest first.
func (s *ActivityService) Recent(ctx context.Context, limit int) ([]*model.AuditEntry, error) {
	if !s.Enabled() {
		return nil, nil
	}
	entries, err := s.audit.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent activity: %w", err)
	}
	return entries, nil
}
