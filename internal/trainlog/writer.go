package trainlog

import (
	"context"
	"errors"

	"github.com/Tomoya-Sonok/aikinote-sub000/internal/db"
	"go.uber.org/zap"
)

// PageInput is the caller-supplied part of a training page. ID is ignored on
// create and required on update.
type PageInput struct {
	ID      string  `json:"id"`
	UserID  string  `json:"user_id" validate:"required"`
	Title   string  `json:"title" validate:"required,max=100"`
	Content string  `json:"content" validate:"required,max=2000"`
	Comment *string `json:"comment,omitempty" validate:"omitempty,max=1000"`
}

// PageWithTags is a training page with its tags attached.
type PageWithTags struct {
	Page *db.TrainingPage `json:"page"`
	Tags []*db.UserTag    `json:"tags"`
}

// CreatePage inserts a page and links it to the user's tags named in tags,
// creating any that do not exist yet. The returned tags are in resolution
// order and may repeat if tags repeats a name.
//
// The page insert, tag resolution and linking run as one unit of work: on
// failure nothing is left behind.
func (s *Service) CreatePage(ctx context.Context, in PageInput, tags TagsByCategory) (*PageWithTags, error) {
	const op = "create page"

	if err := check(op, in); err != nil {
		return nil, err
	}

	now := s.clock()
	page := &db.TrainingPage{
		UserID:    in.UserID,
		Title:     in.Title,
		Content:   in.Content,
		Comment:   in.Comment,
		CreatedAt: now,
		UpdatedAt: now,
	}

	var resolved []*db.UserTag
	err := s.store.WithTx(ctx, func(tx db.Store) error {
		if err := tx.InsertPage(ctx, page); err != nil {
			return pageWriteError(op, err)
		}
		var err error
		resolved, err = s.replaceTags(ctx, tx, page, tags)
		return err
	})
	if err != nil {
		return nil, asEngineError(op, err)
	}

	s.logger.Debug("training page created",
		zap.String("page_id", page.ID),
		zap.String("user_id", page.UserID),
		zap.Int("tags", len(resolved)),
	)
	return &PageWithTags{Page: page, Tags: resolved}, nil
}

// UpdateTrainingPage overwrites the title, content and comment of a page the
// user owns and replaces its whole tag set with tags. Tags left out of tags
// are unlinked; this is not a delta.
func (s *Service) UpdateTrainingPage(ctx context.Context, in PageInput, tags TagsByCategory) (*PageWithTags, error) {
	const op = "update page"

	if in.ID == "" {
		return nil, validationError(op, "validation failed", map[string]string{"id": "is required"})
	}
	if err := check(op, in); err != nil {
		return nil, err
	}

	var (
		page     *db.TrainingPage
		resolved []*db.UserTag
	)
	err := s.store.WithTx(ctx, func(tx db.Store) error {
		existing, err := tx.GetPage(ctx, in.ID)
		if errors.Is(err, db.ErrNotFound) {
			return notFoundOrForbidden(op)
		}
		if err != nil {
			return storeError(op, err)
		}
		if existing.UserID != in.UserID {
			return notFoundOrForbidden(op)
		}

		page, err = tx.UpdatePage(ctx, db.PagePatch{
			ID:        in.ID,
			UserID:    in.UserID,
			Title:     in.Title,
			Content:   in.Content,
			Comment:   in.Comment,
			UpdatedAt: s.clock(),
		})
		if errors.Is(err, db.ErrNotFound) {
			return notFoundOrForbidden(op)
		}
		if err != nil {
			return pageWriteError(op, err)
		}

		if err := tx.DeletePageTags(ctx, page.ID); err != nil {
			return associationWriteError(op, err)
		}
		resolved, err = s.replaceTags(ctx, tx, page, tags)
		return err
	})
	if err != nil {
		return nil, asEngineError(op, err)
	}

	s.logger.Debug("training page updated",
		zap.String("page_id", page.ID),
		zap.String("user_id", page.UserID),
		zap.Int("tags", len(resolved)),
	)
	return &PageWithTags{Page: page, Tags: resolved}, nil
}

// replaceTags resolves tags for the page owner and links them to the page.
// The page must have no associations yet.
func (s *Service) replaceTags(ctx context.Context, tx db.Store, page *db.TrainingPage, tags TagsByCategory) ([]*db.UserTag, error) {
	resolved, err := resolveTags(ctx, tx, page.UserID, tags.Pairs(), s.clock)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(resolved))
	for i, tag := range resolved {
		ids[i] = tag.ID
	}
	if err := linkTags(ctx, tx, page.ID, ids); err != nil {
		return nil, err
	}
	return resolved, nil
}
