// Package trainlog implements the training-log engine: writing training pages
// with their tag associations, and listing them under tag, title, and date
// filters.
package trainlog

import (
	"time"

	"github.com/Tomoya-Sonok/aikinote-sub000/internal/db"
	"go.uber.org/zap"
)

type Category = db.Category

// DefaultLimit is the page size used when a listing asks for none.
const DefaultLimit = 20

// Service runs engine operations against a Store.
type Service struct {
	store  db.Store
	logger *zap.Logger
	now    func() time.Time
}

type Option func(*Service)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock overrides the time source used for created-at and updated-at.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func New(store db.Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: zap.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// clock truncates to the precision timestamps are stored at, so a returned
// page compares equal to the same page read back.
func (s *Service) clock() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}
