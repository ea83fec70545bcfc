package service

import (
	"Lura/internal/model"
	"Lura/internal/policy"
	"Lura/internal/repo"
	"context"
	"regexp"
	"strings"
)

var hexColorRe = regexp.MustCompile(`^#(?:[0-9a-fA-F]{3}|[0-9a-fA-F]{4}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// TagService — теги workspace.
type TagService struct {
	tags repo.TagRepository
	auth *Authorizer
}

func NewTagService(tags repo.TagRepository, auth *Authorizer) *TagService {
	return &TagService{tags: tags, auth: auth}
}

func (s *TagService) List(ctx context.Context, userID, workspaceID int64) ([]model.Tag, error) {
	if _, _, err := s.auth.Require(ctx, userID, workspaceID, policy.ActionRead); err != nil {
		return nil, err
	}
	tags, err := s.tags.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if tags == nil {
		tags = []model.Tag{}
	}
	return tags, nil
}

func (s *TagService) Create(ctx context.Context, userID, workspaceID int64, name, color string) (*model.Tag, error) {
	if _, _, err := s.auth.Require(ctx, userID, workspaceID, policy.ActionCreate); err != nil {
		return nil, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, badRequestf("name is required")
	}
	if !hexColorRe.MatchString(color) {
		return nil, badRequestf("color must be a hex color")
	}
	tag := &model.Tag{Name: name, Color: color, WorkspaceID: workspaceID}
	if err := s.tags.Create(ctx, tag); err != nil {
		return nil, err
	}
	return tag, nil
}
