package trainlog

import (
	"context"
	"strings"

	"github.com/Tomoya-Sonok/aikinote-sub000/internal/db"
	"go.uber.org/zap"
)

type tagInput struct {
	UserID   string `json:"user_id" validate:"required"`
	Name     string `json:"name" validate:"required"`
	Category string `json:"category" validate:"required,oneof=acting receiving technique"`
}

// GetUserTags returns every tag of the user ordered by category then name.
func (s *Service) GetUserTags(ctx context.Context, userID string) ([]*db.UserTag, error) {
	tags, err := s.store.SelectTags(ctx, db.TagFilter{UserID: userID})
	if err != nil {
		return nil, storeError("get user tags", err)
	}
	if tags == nil {
		tags = []*db.UserTag{}
	}
	return tags, nil
}

// CheckDuplicateTag returns the user's tag with this name and category, or
// nil when there is none.
func (s *Service) CheckDuplicateTag(ctx context.Context, userID, name string, category Category) (*db.UserTag, error) {
	const op = "check duplicate tag"

	in := tagInput{UserID: userID, Name: strings.TrimSpace(name), Category: string(category)}
	if err := check(op, in); err != nil {
		return nil, err
	}

	tag, err := s.store.FindTag(ctx, in.UserID, in.Name, category)
	if err != nil {
		return nil, storeError(op, err)
	}
	return tag, nil
}

// CreateUserTag creates a tag on its own, outside of any page. It fails with
// KindConflict when the user already has the tag.
func (s *Service) CreateUserTag(ctx context.Context, userID, name string, category Category) (*db.UserTag, error) {
	const op = "create user tag"

	existing, err := s.CheckDuplicateTag(ctx, userID, name, category)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &Error{Kind: KindConflict, Op: op, Message: "tag already exists", Details: existing}
	}

	tag := &db.UserTag{
		UserID:    userID,
		Name:      strings.TrimSpace(name),
		Category:  category,
		CreatedAt: s.clock(),
	}
	created, err := s.store.InsertTag(ctx, tag)
	if err != nil {
		return nil, storeError(op, err)
	}
	if created.ID != tag.ID {
		// Someone else created it between the check and the insert.
		return nil, &Error{Kind: KindConflict, Op: op, Message: "tag already exists", Details: created}
	}

	s.logger.Debug("user tag created",
		zap.String("tag_id", created.ID),
		zap.String("category", string(created.Category)),
	)
	return created, nil
}
