package service

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"greek-irini/internal/domain"
)

type ContentService struct {
	repo    ContentRepository
	state   *State
	changes changes
}

func NewContentService(state *State, repo ContentRepository, publisher ChangePublisher) *ContentService {
	return &ContentService{repo: repo, state: state, changes: changes{publisher: publisher, source: state.Source()}}
}

// List returns site content, optionally limited to one section.
func (s *ContentService) List(section string) []domain.SiteContent {
	all := s.state.Content()
	if section == "" {
		return all
	}
	out := make([]domain.SiteContent, 0, len(all))
	for _, c := range all {
		if c.Section == section {
			out = append(out, c)
		}
	}
	return out
}

func (s *ContentService) Put(ctx context.Context, c domain.SiteContent) (domain.SiteContent, error) {
	c.Section, c.Key = strings.TrimSpace(c.Section), strings.TrimSpace(c.Key)
	if c.Section == "" || c.Key == "" {
		return domain.SiteContent{}, fmt.Errorf("section and key required: %w", ErrInvalidInput)
	}
	s.state.PutContent(c)
	if s.repo != nil {
		if err := s.repo.UpsertContent(ctx, &c); err != nil {
			log.WithError(err).WithField("content", contentKey(c)).Error("failed to store site content")
		}
	}
	s.state.Persist(ctx, domain.EntitySiteContent)
	s.changes.emit(ctx, domain.EntitySiteContent, domain.OpUpdate, contentKey(c), c)
	return c, nil
}

var _ ContentServiceInterface = (*ContentService)(nil)
