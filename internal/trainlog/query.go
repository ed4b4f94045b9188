package trainlog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Tomoya-Sonok/aikinote-sub000/internal/db"
)

const dateLayout = "2006-01-02"

// ListOptions filters a page listing. All filters combine with AND.
type ListOptions struct {
	UserID string
	Limit  int // <= 0 means DefaultLimit
	Offset int
	// Query matches the title only, case-insensitively, as a substring.
	Query string
	// TagNames must all be linked to a page for it to match.
	TagNames []string
	// Date restricts created-at to that UTC day.
	Date *time.Time
}

// ListPages returns the user's pages matching opts, newest first, without
// tags attached.
func (s *Service) ListPages(ctx context.Context, opts ListOptions) ([]*db.TrainingPage, error) {
	const op = "list pages"

	if opts.UserID == "" {
		return nil, validationError(op, "validation failed", map[string]string{"user_id": "is required"})
	}
	if opts.Offset < 0 {
		return nil, validationError(op, "validation failed", map[string]string{"offset": "must be at least 0"})
	}

	filter := db.PageFilter{
		UserID:        opts.UserID,
		TitleContains: strings.TrimSpace(opts.Query),
		Limit:         opts.Limit,
		Offset:        opts.Offset,
	}
	if filter.Limit <= 0 {
		filter.Limit = DefaultLimit
	}

	ids, err := s.FindPageIDsWithAllTags(ctx, opts.UserID, opts.TagNames)
	if err != nil {
		return nil, err
	}
	if ids != nil {
		if len(ids) == 0 {
			return []*db.TrainingPage{}, nil
		}
		filter.IDs = ids
	}

	if opts.Date != nil {
		from, to := dayRange(*opts.Date)
		filter.CreatedFrom = &from
		filter.CreatedTo = &to
	}

	pages, err := s.store.SelectPages(ctx, filter)
	if err != nil {
		return nil, storeError(op, err)
	}
	if pages == nil {
		pages = []*db.TrainingPage{}
	}
	return pages, nil
}

// dayRange returns [00:00:00, 23:59:59.999999] of t's UTC day.
func dayRange(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	from := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return from, from.Add(24*time.Hour - time.Microsecond)
}

// PagesQuery is the route-layer form of a listing request.
type PagesQuery struct {
	UserID string `json:"user_id" validate:"required"`
	Limit  int    `json:"limit" validate:"gte=0"`
	Offset int    `json:"offset" validate:"gte=0"`
	Query  string `json:"query"`
	// Tags is a comma-separated list of tag names.
	Tags string `json:"tags"`
	// Date is YYYY-MM-DD.
	Date string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// GetTrainingPages lists pages with their tags.
func (s *Service) GetTrainingPages(ctx context.Context, q PagesQuery) ([]*PageWithTags, error) {
	const op = "get training pages"

	if err := check(op, q); err != nil {
		return nil, err
	}

	opts := ListOptions{
		UserID:   q.UserID,
		Limit:    q.Limit,
		Offset:   q.Offset,
		Query:    q.Query,
		TagNames: SplitTags(q.Tags),
	}
	if q.Date != "" {
		day, err := time.Parse(dateLayout, q.Date)
		if err != nil {
			return nil, validationError(op, "validation failed", map[string]string{"date": "must be a date in the form " + dateLayout})
		}
		opts.Date = &day
	}

	pages, err := s.ListPages(ctx, opts)
	if err != nil {
		return nil, err
	}
	return s.hydrate(ctx, pages), nil
}

// GetTrainingPageByID returns the page with its tags if userID owns it.
func (s *Service) GetTrainingPageByID(ctx context.Context, pageID, userID string) (*PageWithTags, error) {
	const op = "get training page"

	page, err := s.store.GetPage(ctx, pageID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, notFoundOrForbidden(op)
	}
	if err != nil {
		return nil, storeError(op, err)
	}
	if page.UserID != userID {
		return nil, notFoundOrForbidden(op)
	}

	tags, err := s.pageTags(ctx, page.ID)
	if err != nil {
		return nil, storeError(op, err)
	}
	return &PageWithTags{Page: page, Tags: tags}, nil
}

// SplitTags splits a comma-separated tag list, trimming blanks.
func SplitTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
