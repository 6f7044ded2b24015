package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"conferencehub/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockEnrollmentRepo struct {
	byUser map[string]*domain.Enrollment
	err    error
}

func (m *mockEnrollmentRepo) Upsert(ctx context.Context, e *domain.Enrollment) error {
	return m.err
}

func (m *mockEnrollmentRepo) GetByUserID(ctx context.Context, userID string) (*domain.Enrollment, error) {
	if m.err != nil {
		return nil, m.err
	}
	e, ok := m.byUser[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return e, nil
}

type mockTicketRepo struct {
	byEnrollment map[string]*domain.Ticket
	byID         map[string]*domain.Ticket
	types        map[string]*domain.TicketType
	created      []*domain.Ticket
	err          error
}

func (m *mockTicketRepo) ListTypes(ctx context.Context) ([]*domain.TicketType, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]*domain.TicketType, 0, len(m.types))
	for _, t := range m.types {
		out = append(out, t)
	}
	return out, nil
}

func (m *mockTicketRepo) GetTypeByID(ctx context.Context, id string) (*domain.TicketType, error) {
	t, ok := m.types[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

func (m *mockTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	if m.err != nil {
		return m.err
	}
	ticket.ID = "ticket-new"
	m.created = append(m.created, ticket)
	return nil
}

func (m *mockTicketRepo) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	t, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

func (m *mockTicketRepo) GetByEnrollmentID(ctx context.Context, enrollmentID string) (*domain.Ticket, error) {
	if m.err != nil {
		return nil, m.err
	}
	t, ok := m.byEnrollment[enrollmentID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return t, nil
}

func (m *mockTicketRepo) CreateTypeIfAbsent(ctx context.Context, t *domain.TicketType) (*domain.TicketType, error) {
	return t, nil
}

type mockUserRepo struct {
	byID    map[string]*domain.User
	byEmail map[string]*domain.User
	created []*domain.User
	err     error
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	if m.err != nil {
		return m.err
	}
	user.ID = "user-new"
	m.created = append(m.created, user)
	return nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return u, nil
}

type mockActivityRepo struct {
	activities    map[string]*domain.Activity
	subscriptions map[string]*domain.ActivitySubscription
	ranges        []domain.TimeRange
	days          []time.Time
	schedule      []*domain.LocationSchedule

	subscribeErr   error
	unsubscribed   []string
	subscribeCalls int
}

func (m *mockActivityRepo) GetByID(ctx context.Context, id string) (*domain.Activity, error) {
	a, ok := m.activities[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return a, nil
}

func (m *mockActivityRepo) ListDays(ctx context.Context) ([]time.Time, error) {
	return m.days, nil
}

func (m *mockActivityRepo) ListByDay(ctx context.Context, day time.Time) ([]*domain.LocationSchedule, error) {
	return m.schedule, nil
}

func (m *mockActivityRepo) ListSubscribedRanges(ctx context.Context, day time.Time, ticketID string) ([]domain.TimeRange, error) {
	return m.ranges, nil
}

func (m *mockActivityRepo) GetSubscription(ctx context.Context, activityID, ticketID string) (*domain.ActivitySubscription, error) {
	sub, ok := m.subscriptions[activityID+":"+ticketID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return sub, nil
}

func (m *mockActivityRepo) Subscribe(ctx context.Context, activityID, ticketID string) (*domain.ActivitySubscription, error) {
	m.subscribeCalls++
	if m.subscribeErr != nil {
		return nil, m.subscribeErr
	}
	a := m.activities[activityID]
	a.Vacancy--
	return &domain.ActivitySubscription{ID: "sub-1", ActivityID: activityID, TicketID: ticketID}, nil
}

func (m *mockActivityRepo) Unsubscribe(ctx context.Context, subscriptionID, activityID string) (*domain.Activity, error) {
	m.unsubscribed = append(m.unsubscribed, subscriptionID)
	a, ok := m.activities[activityID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	a.Vacancy++
	return a, nil
}

func (m *mockActivityRepo) CreateLocation(ctx context.Context, name string) (*domain.ActivityLocation, error) {
	return &domain.ActivityLocation{ID: "loc-1", Name: name}, nil
}

func (m *mockActivityRepo) CreateActivity(ctx context.Context, activity *domain.Activity) error {
	return nil
}

type mockScheduleCache struct {
	days        []time.Time
	schedules   map[string][]*domain.LocationSchedule
	invalidated int
	setDays     int
}

func (m *mockScheduleCache) GetDays(ctx context.Context) ([]time.Time, error) {
	if m.days == nil {
		return nil, domain.ErrNotFound
	}
	return m.days, nil
}

func (m *mockScheduleCache) SetDays(ctx context.Context, days []time.Time) error {
	m.setDays++
	m.days = days
	return nil
}

func (m *mockScheduleCache) GetDaySchedule(ctx context.Context, day time.Time) ([]*domain.LocationSchedule, error) {
	s, ok := m.schedules[day.Format("2006-01-02")]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return s, nil
}

func (m *mockScheduleCache) SetDaySchedule(ctx context.Context, day time.Time, schedule []*domain.LocationSchedule) error {
	if m.schedules == nil {
		m.schedules = map[string][]*domain.LocationSchedule{}
	}
	m.schedules[day.Format("2006-01-02")] = schedule
	return nil
}

func (m *mockScheduleCache) Invalidate(ctx context.Context) error {
	m.invalidated++
	m.days = nil
	m.schedules = nil
	return nil
}

func paidInPersonTicket(id string) *domain.Ticket {
	return &domain.Ticket{
		ID:           id,
		Status:       domain.TicketStatusPaid,
		TicketType:   &domain.TicketType{ID: "tt-1", Name: "Presencial", IsRemote: false},
		TicketTypeID: "tt-1",
		EnrollmentID: "enr-1",
	}
}

func TestOverlaps(t *testing.T) {
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	existing := domain.TimeRange{
		StartsAt: day.Add(9 * time.Hour),
		EndsAt:   day.Add(12 * time.Hour),
	}

	tests := []struct {
		name     string
		start    int
		end      int
		conflict bool
	}{
		{"starts inside existing window", 10, 13, true},
		{"same start", 9, 10, true},
		{"ends inside existing window", 8, 10, true},
		{"fully inside", 10, 11, true},
		{"back to back after", 12, 13, false},
		{"back to back before", 8, 9, false},
		{"disjoint later", 14, 15, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := overlaps(day.Add(time.Duration(tt.start)*time.Hour), day.Add(time.Duration(tt.end)*time.Hour), existing)
			if got != tt.conflict {
				t.Fatalf("expected conflict=%v, got %v", tt.conflict, got)
			}
		})
	}
}

func TestActivityService_Subscribe(t *testing.T) {
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	activity := func(vacancy int) *domain.Activity {
		return &domain.Activity{
			ID:       "act-1",
			Name:     "Opening talk",
			Date:     day,
			StartsAt: day.Add(9 * time.Hour),
			EndsAt:   day.Add(10 * time.Hour),
			Capacity: 30,
			Vacancy:  vacancy,
		}
	}
	enrollments := map[string]*domain.Enrollment{"u1": {ID: "enr-1", UserID: "u1"}}

	tests := []struct {
		name         string
		enrollRepo   *mockEnrollmentRepo
		ticketRepo   *mockTicketRepo
		activityRepo *mockActivityRepo
		wantErr      error
	}{
		{
			name:       "no enrollment",
			enrollRepo: &mockEnrollmentRepo{byUser: map[string]*domain.Enrollment{}},
			ticketRepo: &mockTicketRepo{},
			activityRepo: &mockActivityRepo{
				activities: map[string]*domain.Activity{"act-1": activity(30)},
			},
			wantErr: domain.ErrIneligible,
		},
		{
			name:       "no ticket",
			enrollRepo: &mockEnrollmentRepo{byUser: enrollments},
			ticketRepo: &mockTicketRepo{byEnrollment: map[string]*domain.Ticket{}},
			activityRepo: &mockActivityRepo{
				activities: map[string]*domain.Activity{"act-1": activity(30)},
			},
			wantErr: domain.ErrIneligible,
		},
		{
			name:       "ticket not paid",
			enrollRepo: &mockEnrollmentRepo{byUser: enrollments},
			ticketRepo: &mockTicketRepo{byEnrollment: map[string]*domain.Ticket{
				"enr-1": {ID: "t1", Status: domain.TicketStatusReserved, TicketType: &domain.TicketType{IsRemote: false}},
			}},
			activityRepo: &mockActivityRepo{
				activities: map[string]*domain.Activity{"act-1": activity(30)},
			},
			wantErr: domain.ErrIneligible,
		},
		{
			name:       "remote ticket",
			enrollRepo: &mockEnrollmentRepo{byUser: enrollments},
			ticketRepo: &mockTicketRepo{byEnrollment: map[string]*domain.Ticket{
				"enr-1": {ID: "t1", Status: domain.TicketStatusPaid, TicketType: &domain.TicketType{IsRemote: true}},
			}},
			activityRepo: &mockActivityRepo{
				activities: map[string]*domain.Activity{"act-1": activity(30)},
			},
			wantErr: domain.ErrIneligible,
		},
		{
			name:       "activity not found",
			enrollRepo: &mockEnrollmentRepo{byUser: enrollments},
			ticketRepo: &mockTicketRepo{byEnrollment: map[string]*domain.Ticket{"enr-1": paidInPersonTicket("t1")}},
			activityRepo: &mockActivityRepo{
				activities: map[string]*domain.Activity{},
			},
			wantErr: domain.ErrNotFound,
		},
		{
			name:       "time conflict with existing subscription",
			enrollRepo: &mockEnrollmentRepo{byUser: enrollments},
			ticketRepo: &mockTicketRepo{byEnrollment: map[string]*domain.Ticket{"enr-1": paidInPersonTicket("t1")}},
			activityRepo: &mockActivityRepo{
				activities: map[string]*domain.Activity{"act-1": activity(30)},
				ranges: []domain.TimeRange{
					{StartsAt: day.Add(9 * time.Hour), EndsAt: day.Add(12 * time.Hour)},
				},
			},
			wantErr: domain.ErrIneligible,
		},
		{
			name:       "no vacancy",
			enrollRepo: &mockEnrollmentRepo{byUser: enrollments},
			ticketRepo: &mockTicketRepo{byEnrollment: map[string]*domain.Ticket{"enr-1": paidInPersonTicket("t1")}},
			activityRepo: &mockActivityRepo{
				activities:   map[string]*domain.Activity{"act-1": activity(0)},
				subscribeErr: domain.ErrCapacityExceeded,
			},
			wantErr: domain.ErrCapacityExceeded,
		},
		{
			name:       "already subscribed",
			enrollRepo: &mockEnrollmentRepo{byUser: enrollments},
			ticketRepo: &mockTicketRepo{byEnrollment: map[string]*domain.Ticket{"enr-1": paidInPersonTicket("t1")}},
			activityRepo: &mockActivityRepo{
				activities:   map[string]*domain.Activity{"act-1": activity(30)},
				subscribeErr: domain.ErrAlreadySubscribed,
			},
			wantErr: domain.ErrAlreadySubscribed,
		},
		{
			name:       "success",
			enrollRepo: &mockEnrollmentRepo{byUser: enrollments},
			ticketRepo: &mockTicketRepo{byEnrollment: map[string]*domain.Ticket{"enr-1": paidInPersonTicket("t1")}},
			activityRepo: &mockActivityRepo{
				activities: map[string]*domain.Activity{"act-1": activity(30)},
				ranges: []domain.TimeRange{
					// Back to back with the candidate, no conflict.
					{StartsAt: day.Add(10 * time.Hour), EndsAt: day.Add(11 * time.Hour)},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cache := &mockScheduleCache{days: []time.Time{day}}
			svc := &activityService{
				activityRepo:   tt.activityRepo,
				enrollmentRepo: tt.enrollRepo,
				ticketRepo:     tt.ticketRepo,
				userRepo:       &mockUserRepo{byID: map[string]*domain.User{}},
				cache:          cache,
				logger:         testLogger(),
			}

			sub, err := svc.Subscribe(context.Background(), "u1", "act-1")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if sub.ID != "sub-1" || sub.TicketID != "t1" {
				t.Fatalf("unexpected subscription: %+v", sub)
			}
			if tt.activityRepo.activities["act-1"].Vacancy != 29 {
				t.Fatalf("expected vacancy 29, got %d", tt.activityRepo.activities["act-1"].Vacancy)
			}
			if cache.invalidated != 1 {
				t.Fatalf("expected cache invalidation, got %d", cache.invalidated)
			}
		})
	}
}

func TestActivityService_Unsubscribe(t *testing.T) {
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	enrollments := map[string]*domain.Enrollment{"u1": {ID: "enr-1", UserID: "u1"}}
	tickets := map[string]*domain.Ticket{"enr-1": paidInPersonTicket("t1")}

	t.Run("never subscribed", func(t *testing.T) {
		svc := &activityService{
			activityRepo: &mockActivityRepo{
				activities:    map[string]*domain.Activity{"act-1": {ID: "act-1", Capacity: 30, Vacancy: 29}},
				subscriptions: map[string]*domain.ActivitySubscription{},
			},
			enrollmentRepo: &mockEnrollmentRepo{byUser: enrollments},
			ticketRepo:     &mockTicketRepo{byEnrollment: tickets},
			logger:         testLogger(),
		}

		_, err := svc.Unsubscribe(context.Background(), "u1", "act-1")
		if !errors.Is(err, domain.ErrIneligible) {
			t.Fatalf("expected ErrIneligible, got %v", err)
		}
	})

	t.Run("ineligible without enrollment", func(t *testing.T) {
		svc := &activityService{
			activityRepo:   &mockActivityRepo{},
			enrollmentRepo: &mockEnrollmentRepo{byUser: map[string]*domain.Enrollment{}},
			ticketRepo:     &mockTicketRepo{},
			logger:         testLogger(),
		}

		_, err := svc.Unsubscribe(context.Background(), "u1", "act-1")
		if !errors.Is(err, domain.ErrIneligible) {
			t.Fatalf("expected ErrIneligible, got %v", err)
		}
	})

	t.Run("success releases vacancy", func(t *testing.T) {
		repo := &mockActivityRepo{
			activities: map[string]*domain.Activity{
				"act-1": {ID: "act-1", Date: day, Capacity: 30, Vacancy: 29},
			},
			subscriptions: map[string]*domain.ActivitySubscription{
				"act-1:t1": {ID: "sub-1", ActivityID: "act-1", TicketID: "t1"},
			},
		}
		cache := &mockScheduleCache{days: []time.Time{day}}
		svc := &activityService{
			activityRepo:   repo,
			enrollmentRepo: &mockEnrollmentRepo{byUser: enrollments},
			ticketRepo:     &mockTicketRepo{byEnrollment: tickets},
			cache:          cache,
			logger:         testLogger(),
		}

		activity, err := svc.Unsubscribe(context.Background(), "u1", "act-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if activity.Vacancy != 30 {
			t.Fatalf("expected vacancy 30, got %d", activity.Vacancy)
		}
		if len(repo.unsubscribed) != 1 || repo.unsubscribed[0] != "sub-1" {
			t.Fatalf("expected sub-1 removed, got %v", repo.unsubscribed)
		}
		if cache.invalidated != 1 {
			t.Fatalf("expected cache invalidation, got %d", cache.invalidated)
		}
	})
}

func TestActivityService_GetSubscription(t *testing.T) {
	enrollments := map[string]*domain.Enrollment{"u1": {ID: "enr-1", UserID: "u1"}}

	t.Run("no enrollment maps to not found", func(t *testing.T) {
		svc := &activityService{
			activityRepo:   &mockActivityRepo{},
			enrollmentRepo: &mockEnrollmentRepo{byUser: map[string]*domain.Enrollment{}},
			ticketRepo:     &mockTicketRepo{},
			logger:         testLogger(),
		}
		_, err := svc.GetSubscription(context.Background(), "u1", "act-1")
		if !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("found", func(t *testing.T) {
		svc := &activityService{
			activityRepo: &mockActivityRepo{
				subscriptions: map[string]*domain.ActivitySubscription{
					"act-1:t1": {ID: "sub-1", ActivityID: "act-1", TicketID: "t1"},
				},
			},
			enrollmentRepo: &mockEnrollmentRepo{byUser: enrollments},
			ticketRepo:     &mockTicketRepo{byEnrollment: map[string]*domain.Ticket{"enr-1": paidInPersonTicket("t1")}},
			logger:         testLogger(),
		}
		sub, err := svc.GetSubscription(context.Background(), "u1", "act-1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sub.ID != "sub-1" {
			t.Fatalf("expected sub-1, got %s", sub.ID)
		}
	})
}

func TestActivityService_GetDays(t *testing.T) {
	day := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	t.Run("cache hit skips repository", func(t *testing.T) {
		svc := &activityService{
			activityRepo: &mockActivityRepo{days: []time.Time{day.AddDate(0, 0, 5)}},
			cache:        &mockScheduleCache{days: []time.Time{day}},
			logger:       testLogger(),
		}
		days, err := svc.GetDays(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(days) != 1 || !days[0].Equal(day) {
			t.Fatalf("expected cached day, got %v", days)
		}
	})

	t.Run("cache miss falls back and writes through", func(t *testing.T) {
		cache := &mockScheduleCache{}
		svc := &activityService{
			activityRepo: &mockActivityRepo{days: []time.Time{day}},
			cache:        cache,
			logger:       testLogger(),
		}
		days, err := svc.GetDays(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(days) != 1 || !days[0].Equal(day) {
			t.Fatalf("expected repo day, got %v", days)
		}
		if cache.setDays != 1 {
			t.Fatalf("expected cache write, got %d", cache.setDays)
		}
	})

	t.Run("nil cache goes straight to repository", func(t *testing.T) {
		svc := &activityService{
			activityRepo: &mockActivityRepo{days: []time.Time{day}},
			logger:       testLogger(),
		}
		days, err := svc.GetDays(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(days) != 1 {
			t.Fatalf("expected 1 day, got %d", len(days))
		}
	})
}

func TestActivityService_GetDaySchedule(t *testing.T) {
	day := time.Date(2025, 6, 1, 15, 30, 0, 0, time.UTC)
	schedule := []*domain.LocationSchedule{
		{Location: &domain.ActivityLocation{ID: "loc-1", Name: "Main hall"}},
	}

	svc := &activityService{
		activityRepo: &mockActivityRepo{schedule: schedule},
		cache:        &mockScheduleCache{},
		logger:       testLogger(),
	}

	got, err := svc.GetDaySchedule(context.Background(), day)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 1 || got[0].Location.Name != "Main hall" {
		t.Fatalf("unexpected schedule: %+v", got)
	}
}
