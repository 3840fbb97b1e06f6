package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	repos "github.com/yungbote/sotfinder-backend/internal/data/repos/savedlink"
	types "github.com/yungbote/sotfinder-backend/internal/domain/savedlink"
	"github.com/yungbote/sotfinder-backend/internal/platform/logger"
)

// SavedLinkService keeps one shared list of bookmarked resources. There is
// no per-user scoping: every caller sees the same list.
type SavedLinkService interface {
	Save(ctx context.Context, link types.SavedLink) (*types.SavedLink, error)
	List(ctx context.Context) ([]types.SavedLink, error)
}

type savedLinkService struct {
	log  *logger.Logger
	repo repos.SavedLinkRepo
}

func NewSavedLinkService(baseLog *logger.Logger, repo repos.SavedLinkRepo) SavedLinkService {
	return &savedLinkService{
		log:  baseLog.With("service", "SavedLinkService"),
		repo: repo,
	}
}

func (s *savedLinkService) Save(ctx context.Context, link types.SavedLink) (*types.SavedLink, error) {
	link.URL = types.Key(link.URL)
	if link.URL == "" {
		return nil, fmt.Errorf("%w: url required", ErrValidation)
	}
	u, err := url.Parse(link.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
		return nil, fmt.Errorf("%w: %q is not an http(s) url", ErrValidation, link.URL)
	}
	link.Title = strings.TrimSpace(link.Title)

	saved, err := s.repo.Upsert(ctx, nil, &link)
	if err != nil {
		return nil, fmt.Errorf("%w: save link: %v", ErrPersistence, err)
	}
	s.log.Debug("saved link", "url", saved.URL)
	return saved, nil
}

func (s *savedLinkService) List(ctx context.Context) ([]types.SavedLink, error) {
	links, err := s.repo.List(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: list links: %v", ErrPersistence, err)
	}
	return links, nil
}
