package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"applyfollow-backend/internal/domain"
	"applyfollow-backend/pkg/email"
	"applyfollow-backend/pkg/oauth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockEventRepo struct {
	mock.Mock
	domain.CalendarEventRepository
}

func (m *mockEventRepo) ExistsPendingAlarm(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

func (m *mockEventRepo) ListDueAlarms(ctx context.Context, now time.Time) ([]domain.DueReminder, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DueReminder), args.Error(1)
}

func (m *mockEventRepo) MarkNotified(ctx context.Context, ids []string) error {
	return m.Called(ctx, ids).Error(0)
}

type fakeMailer struct {
	mu     sync.Mutex
	sent   []email.Message
	failTo string
}

func (f *fakeMailer) Send(_ context.Context, msg email.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg.To == f.failTo {
		return errors.New("mailbox unavailable")
	}
	f.sent = append(f.sent, msg)
	return nil
}

func due(id, to string) domain.DueReminder {
	return domain.DueReminder{
		Event:     domain.CalendarEvent{ID: id, Title: "Interview " + id, Date: "2024-05-01", Time: "10:00"},
		UserEmail: to,
		UserName:  "Jane",
	}
}

func newJob(repo *mockEventRepo, mailer email.Mailer) *ReminderJob {
	j := NewReminderJob(repo, mailer, time.UTC)
	j.now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 30, 0, time.UTC) }
	return j
}

func TestSweepSkipsWhenClean(t *testing.T) {
	repo := new(mockEventRepo)
	j := newJob(repo, &fakeMailer{})

	sent, err := j.Sweep(context.Background())
	require.NoError(t, err)
	assert.Zero(t, sent)
	repo.AssertNotCalled(t, "ListDueAlarms", mock.Anything, mock.Anything)
}

func TestInitRaisesFlagFromDatabase(t *testing.T) {
	repo := new(mockEventRepo)
	repo.On("ExistsPendingAlarm", mock.Anything).Return(true, nil)
	j := newJob(repo, &fakeMailer{})

	require.NoError(t, j.Init(context.Background()))
	assert.True(t, j.Pending())
}

func TestSweepSendsAndMarksNotified(t *testing.T) {
	ctx := context.Background()
	repo := new(mockEventRepo)
	mailer := &fakeMailer{failTo: "broken@example.com"}
	j := newJob(repo, mailer)
	j.Trigger()

	repo.On("ListDueAlarms", ctx, j.now()).Return([]domain.DueReminder{
		due("e1", "jane@example.com"),
		due("e2", "broken@example.com"),
	}, nil)
	repo.On("MarkNotified", ctx, []string{"e1"}).Return(nil)
	repo.On("ExistsPendingAlarm", ctx).Return(true, nil)

	sent, err := j.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, sent)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "ApplyFollow Reminder: Interview e1", mailer.sent[0].Subject)
	assert.Contains(t, mailer.sent[0].Body, "Hello Jane")

	// e2 is still pending, so the next sweep runs again.
	assert.True(t, j.Pending())
	repo.AssertExpectations(t)
}

func TestSweepClearsFlagWhenNothingPending(t *testing.T) {
	ctx := context.Background()
	repo := new(mockEventRepo)
	j := newJob(repo, &fakeMailer{})
	j.Trigger()

	repo.On("ListDueAlarms", ctx, j.now()).Return([]domain.DueReminder{}, nil)
	repo.On("ExistsPendingAlarm", ctx).Return(false, nil)

	_, err := j.Sweep(ctx)
	require.NoError(t, err)
	assert.False(t, j.Pending())
	repo.AssertNotCalled(t, "MarkNotified", mock.Anything, mock.Anything)
}

func TestSweepKeepsFlagOnError(t *testing.T) {
	ctx := context.Background()
	repo := new(mockEventRepo)
	j := newJob(repo, &fakeMailer{})
	j.Trigger()

	repo.On("ListDueAlarms", ctx, j.now()).Return(nil, errors.New("connection reset"))

	_, err := j.Sweep(ctx)
	assert.Error(t, err)
	assert.True(t, j.Pending())
}

func TestSweepUsesConfiguredZone(t *testing.T) {
	ctx := context.Background()
	loc := time.FixedZone("UTC+3", 3*60*60)
	repo := new(mockEventRepo)
	j := NewReminderJob(repo, &fakeMailer{}, loc)
	j.now = func() time.Time { return time.Date(2024, 5, 1, 22, 0, 0, 0, time.UTC) }
	j.Trigger()

	repo.On("ListDueAlarms", ctx, mock.MatchedBy(func(now time.Time) bool {
		return now.Format(domain.DateLayout) == "2024-05-02" && now.Hour() == 1
	})).Return([]domain.DueReminder{}, nil)
	repo.On("ExistsPendingAlarm", ctx).Return(false, nil)

	_, err := j.Sweep(ctx)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestSchedulerRegistersJobs(t *testing.T) {
	repo := new(mockEventRepo)
	s, err := New(Config{
		ReminderInterval:    time.Hour,
		OAuth2SweepInterval: time.Hour,
	}, newJob(repo, &fakeMailer{}), oauth.NewRequestCache(5*time.Minute))
	require.NoError(t, err)
	assert.Len(t, s.cron.Jobs(), 2)

	s.Start()
	s.Stop()
}
