package scheduler

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/ternarybob/stockanalyzer/internal/interfaces"
	"github.com/ternarybob/stockanalyzer/internal/models"
)

var testNow = time.Date(2024, 6, 15, 10, 0, 0, 0, time.UTC)

func date(s string) time.Time {
	t, err := time.Parse(models.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func datePtr(s string) *time.Time {
	t := date(s)
	return &t
}

type fakeStorage struct {
	records map[string]*models.FundamentalMetrics
	saved   []string
}

func newFakeStorage(records ...*models.FundamentalMetrics) *fakeStorage {
	s := &fakeStorage{records: make(map[string]*models.FundamentalMetrics)}
	for _, r := range records {
		s.records[r.Symbol] = r
	}
	return s
}

func (s *fakeStorage) LoadLatest(ctx context.Context, symbol string) (*models.FundamentalMetrics, error) {
	fd, ok := s.records[symbol]
	if !ok {
		return nil, interfaces.ErrNotFound
	}
	return fd, nil
}

func (s *fakeStorage) Save(ctx context.Context, fd *models.FundamentalMetrics) (*models.FundamentalMetrics, error) {
	cp := *fd
	s.records[fd.Symbol] = &cp
	s.saved = append(s.saved, fd.Symbol)
	return &cp, nil
}

func (s *fakeStorage) List(ctx context.Context) ([]*models.FundamentalMetrics, error) {
	out := make([]*models.FundamentalMetrics, 0, len(s.records))
	for _, r := range s.records {
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

func (s *fakeStorage) Delete(ctx context.Context, symbol string) error {
	delete(s.records, symbol)
	return nil
}

type mail struct {
	subject, body string
}

type fakeNotifier struct {
	sent []mail
}

func (n *fakeNotifier) Notify(ctx context.Context, subject, body string) error {
	n.sent = append(n.sent, mail{subject: subject, body: body})
	return nil
}

// fakeRefresher returns the stored record with a new overall rating
type fakeRefresher struct {
	storage *fakeStorage
	ratings map[string]int
	calls   []string
}

func (r *fakeRefresher) Refresh(ctx context.Context, symbol string) (*models.FundamentalMetrics, error) {
	r.calls = append(r.calls, symbol)
	rating, ok := r.ratings[symbol]
	if !ok {
		return nil, errors.New("page layout changed")
	}
	fd := *r.storage.records[symbol]
	fd.OverallRating = rating
	fd.Date = testNow
	return r.storage.Save(ctx, &fd)
}
