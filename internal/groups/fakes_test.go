package groups

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"foodshare/internal/models"
)

var errStore = errors.New("store unavailable")

type memoryMemberships struct {
	mu      sync.Mutex
	byID    map[uint]models.GroupMembership
	saves   int
	findErr error
	saveErr error
	history *memoryHistory
}

func newMemoryMemberships(members ...models.GroupMembership) *memoryMemberships {
	s := &memoryMemberships{byID: make(map[uint]models.GroupMembership)}
	for _, m := range members {
		s.byID[m.ID] = m
	}
	return s
}

func (s *memoryMemberships) filter(keep func(models.GroupMembership) bool) ([]models.GroupMembership, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findErr != nil {
		return nil, s.findErr
	}
	var out []models.GroupMembership
	for _, m := range s.byID {
		if keep(m) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memoryMemberships) FindSeenBefore(_ context.Context, cutoff time.Time) ([]models.GroupMembership, error) {
	return s.filter(func(m models.GroupMembership) bool {
		return m.InactiveAt == nil && !m.LastSeenAt.After(cutoff)
	})
}

func (s *memoryMemberships) FindInactiveBefore(_ context.Context, cutoff time.Time) ([]models.GroupMembership, error) {
	return s.filter(func(m models.GroupMembership) bool {
		return m.InactiveAt != nil && m.RemovalNotificationAt == nil && !m.InactiveAt.After(cutoff)
	})
}

func (s *memoryMemberships) FindNotifiedBefore(_ context.Context, cutoff time.Time) ([]models.GroupMembership, error) {
	return s.filter(func(m models.GroupMembership) bool {
		return m.RemovalNotificationAt != nil && !m.RemovalNotificationAt.After(cutoff)
	})
}

func (s *memoryMemberships) FindByGroup(_ context.Context, groupID uint) ([]models.GroupMembership, error) {
	return s.filter(func(m models.GroupMembership) bool { return m.GroupID == groupID })
}

func (s *memoryMemberships) SaveLifecycle(_ context.Context, m *models.GroupMembership) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saveErr != nil {
		return s.saveErr
	}
	stored, ok := s.byID[m.ID]
	if !ok {
		return errors.New("membership not found")
	}
	stored.InactiveAt = m.InactiveAt
	stored.RemovalNotificationAt = m.RemovalNotificationAt
	s.byID[m.ID] = stored
	s.saves++
	return nil
}

func (s *memoryMemberships) Remove(_ context.Context, m *models.GroupMembership, typus models.HistoryTypus, payload map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.history == nil {
		s.history = &memoryHistory{}
	}
	if err := s.history.append(typus, m.GroupID, []uint{m.UserID}, payload); err != nil {
		return err
	}
	delete(s.byID, m.ID)
	return nil
}

func (s *memoryMemberships) get(id uint) (models.GroupMembership, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.byID[id]
	return m, ok
}

type memoryGroups struct {
	mu      sync.Mutex
	groups  []models.Group
	cursors []time.Time
}

func (s *memoryGroups) FindWithMembers(context.Context) ([]models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Group
	for _, g := range s.groups {
		if len(g.Members) > 0 {
			out = append(out, g)
		}
	}
	return out, nil
}

func (s *memoryGroups) FindAll(context.Context) ([]models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Group(nil), s.groups...), nil
}

func (s *memoryGroups) FindByStatus(_ context.Context, status models.GroupStatus) ([]models.Group, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Group
	for _, g := range s.groups {
		if g.Status == status {
			out = append(out, g)
		}
	}
	return out, nil
}

func (s *memoryGroups) UpdateStatus(_ context.Context, groupID uint, status models.GroupStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.groups {
		if s.groups[i].ID == groupID {
			s.groups[i].Status = status
		}
	}
	return nil
}

func (s *memoryGroups) AdvanceSummaryCursor(_ context.Context, groupID uint, upTo time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.groups {
		g := &s.groups[i]
		if g.ID != groupID {
			continue
		}
		if g.SentSummaryUpTo == nil || g.SentSummaryUpTo.Before(upTo) {
			g.SentSummaryUpTo = &upTo
		}
		s.cursors = append(s.cursors, *g.SentSummaryUpTo)
	}
	return nil
}

func (s *memoryGroups) group(id uint) models.Group {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.groups {
		if g.ID == id {
			return g
		}
	}
	return models.Group{}
}

type historyEntry struct {
	typus   models.HistoryTypus
	groupID uint
	users   []uint
	payload map[string]any
}

type memoryHistory struct {
	entries []historyEntry
	err     error
}

func (h *memoryHistory) append(typus models.HistoryTypus, groupID uint, users []uint, payload map[string]any) error {
	if h.err != nil {
		return h.err
	}
	h.entries = append(h.entries, historyEntry{typus: typus, groupID: groupID, users: users, payload: payload})
	return nil
}

type counts struct {
	messages, feedback, newMembers, done, missed int64
}

type memoryReports struct {
	byGroup map[uint]counts
	windows [][2]time.Time
}

func (r *memoryReports) CountMessages(_ context.Context, groupID uint, from, to time.Time) (int64, error) {
	r.windows = append(r.windows, [2]time.Time{from, to})
	return r.byGroup[groupID].messages, nil
}

func (r *memoryReports) CountFeedback(_ context.Context, groupID uint, _, _ time.Time) (int64, error) {
	return r.byGroup[groupID].feedback, nil
}

func (r *memoryReports) CountNewMembers(_ context.Context, groupID uint, _, _ time.Time) (int64, error) {
	return r.byGroup[groupID].newMembers, nil
}

func (r *memoryReports) CountActivities(_ context.Context, groupID uint, _, _ time.Time) (int64, int64, error) {
	c := r.byGroup[groupID]
	return c.done, c.missed, nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	sent   []Notification
	failTo map[string]bool
	panics bool
}

func (n *recordingNotifier) Send(_ context.Context, msg Notification) error {
	if n.panics {
		panic("smtp exploded")
	}
	if n.failTo[msg.To.Email] {
		return errors.New("mailbox unavailable")
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return nil
}

type recordedPoint struct {
	measurement string
	groupID     uint
	fields      map[string]float64
}

type memoryMetrics struct {
	points []recordedPoint
	panics bool
}

func (m *memoryMetrics) RecordGroup(measurement string, groupID uint, fields map[string]float64) {
	if m.panics {
		panic("metrics sink down")
	}
	m.points = append(m.points, recordedPoint{measurement: measurement, groupID: groupID, fields: fields})
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func ptr(t time.Time) *time.Time {
	return &t
}

func user(id uint, email string) models.User {
	return models.User{ID: id, Email: email, DisplayName: "user" + email}
}
