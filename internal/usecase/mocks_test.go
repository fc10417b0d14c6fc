package usecase_test

import (
	"context"
	"sync"
	"time"

	"applyfollow-backend/internal/domain"
	"applyfollow-backend/pkg/email"

	"github.com/stretchr/testify/mock"
)

// Mock Repositories
type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Create(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}
func (m *MockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}
func (m *MockUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}
func (m *MockUserRepo) Update(ctx context.Context, user *domain.User) error {
	return m.Called(ctx, user).Error(0)
}
func (m *MockUserRepo) UpdatePassword(ctx context.Context, id, hash string) error {
	return m.Called(ctx, id, hash).Error(0)
}
func (m *MockUserRepo) SetActive(ctx context.Context, id string, active bool) error {
	return m.Called(ctx, id, active).Error(0)
}
func (m *MockUserRepo) List(ctx context.Context, filter domain.UserListFilter) ([]domain.User, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.User), args.Get(1).(int64), args.Error(2)
}

type MockCompanyRepo struct {
	mock.Mock
}

func (m *MockCompanyRepo) FindOrCreate(ctx context.Context, name string) (*domain.Company, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Company), args.Error(1)
}
func (m *MockCompanyRepo) GetByID(ctx context.Context, id string) (*domain.Company, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Company), args.Error(1)
}
func (m *MockCompanyRepo) List(ctx context.Context, query string, page, pageSize int) ([]domain.Company, int64, error) {
	args := m.Called(ctx, query, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.Company), args.Get(1).(int64), args.Error(2)
}

type MockApplicationRepo struct {
	mock.Mock
}

func (m *MockApplicationRepo) Create(ctx context.Context, app *domain.Application) error {
	return m.Called(ctx, app).Error(0)
}
func (m *MockApplicationRepo) GetByID(ctx context.Context, id string) (*domain.Application, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}
func (m *MockApplicationRepo) FindDuplicate(ctx context.Context, userID, companyName, position string) (*domain.Application, error) {
	args := m.Called(ctx, userID, companyName, position)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Application), args.Error(1)
}
func (m *MockApplicationRepo) ListByUser(ctx context.Context, userID string) ([]domain.Application, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Application), args.Error(1)
}
func (m *MockApplicationRepo) Update(ctx context.Context, app *domain.Application) error {
	return m.Called(ctx, app).Error(0)
}
func (m *MockApplicationRepo) UpdateNotes(ctx context.Context, id, notes string) error {
	return m.Called(ctx, id, notes).Error(0)
}
func (m *MockApplicationRepo) UpdateStatus(ctx context.Context, id, status string) error {
	return m.Called(ctx, id, status).Error(0)
}
func (m *MockApplicationRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
func (m *MockApplicationRepo) ListContacts(ctx context.Context, applicationID string) ([]domain.Contact, error) {
	args := m.Called(ctx, applicationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Contact), args.Error(1)
}
func (m *MockApplicationRepo) AddContact(ctx context.Context, contact *domain.Contact) error {
	return m.Called(ctx, contact).Error(0)
}
func (m *MockApplicationRepo) CountByUser(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

type MockCalendarRepo struct {
	mock.Mock
}

func (m *MockCalendarRepo) Create(ctx context.Context, event *domain.CalendarEvent) error {
	return m.Called(ctx, event).Error(0)
}
func (m *MockCalendarRepo) GetByID(ctx context.Context, id string) (*domain.CalendarEvent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CalendarEvent), args.Error(1)
}
func (m *MockCalendarRepo) ListByUser(ctx context.Context, userID string) ([]domain.CalendarEvent, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.CalendarEvent), args.Error(1)
}
func (m *MockCalendarRepo) Update(ctx context.Context, event *domain.CalendarEvent) error {
	return m.Called(ctx, event).Error(0)
}
func (m *MockCalendarRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
func (m *MockCalendarRepo) ExistsPendingAlarm(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}
func (m *MockCalendarRepo) ListDueAlarms(ctx context.Context, now time.Time) ([]domain.DueReminder, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.DueReminder), args.Error(1)
}
func (m *MockCalendarRepo) MarkNotified(ctx context.Context, ids []string) error {
	return m.Called(ctx, ids).Error(0)
}

type MockCVRepo struct {
	mock.Mock
}

func (m *MockCVRepo) GetSections(ctx context.Context, userID string) (*domain.CVSections, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CVSections), args.Error(1)
}
func (m *MockCVRepo) Replace(ctx context.Context, userID string, profile domain.CVProfile, sections domain.CVSections) error {
	return m.Called(ctx, userID, profile, sections).Error(0)
}

type MockMessageRepo struct {
	mock.Mock
}

func (m *MockMessageRepo) Create(ctx context.Context, msg *domain.ContactMessage) error {
	return m.Called(ctx, msg).Error(0)
}
func (m *MockMessageRepo) GetByID(ctx context.Context, id string) (*domain.ContactMessage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ContactMessage), args.Error(1)
}
func (m *MockMessageRepo) List(ctx context.Context, page, pageSize int) ([]domain.ContactMessage, int64, error) {
	args := m.Called(ctx, page, pageSize)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]domain.ContactMessage), args.Get(1).(int64), args.Error(2)
}
func (m *MockMessageRepo) SetReplied(ctx context.Context, id string, replied bool) error {
	return m.Called(ctx, id, replied).Error(0)
}
func (m *MockMessageRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockAdminRepo struct {
	mock.Mock
}

func (m *MockAdminRepo) GetStats(ctx context.Context) (*domain.AdminStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AdminStats), args.Error(1)
}

// Mock collaborators
type MockTokenIssuer struct {
	mock.Mock
}

func (m *MockTokenIssuer) Generate(userID, email, role string) (string, error) {
	args := m.Called(userID, email, role)
	return args.String(0), args.Error(1)
}

type MockLoginGuard struct {
	mock.Mock
}

func (m *MockLoginGuard) IsBlocked(ctx context.Context, email string) (bool, error) {
	args := m.Called(ctx, email)
	return args.Bool(0), args.Error(1)
}
func (m *MockLoginGuard) RecordFailedAttempt(ctx context.Context, email, ip string) (bool, int, error) {
	args := m.Called(ctx, email, ip)
	return args.Bool(0), args.Int(1), args.Error(2)
}
func (m *MockLoginGuard) ClearAttempts(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

type countingTrigger struct {
	mu    sync.Mutex
	count int
}

func (t *countingTrigger) Trigger() {
	t.mu.Lock()
	t.count++
	t.mu.Unlock()
}

func (t *countingTrigger) Count() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.count
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []email.Message
	err  error
}

func (r *recordingMailer) Send(_ context.Context, msg email.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

func (r *recordingMailer) Sent() []email.Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]email.Message(nil), r.sent...)
}

type recordingArchiver struct {
	keys []string
	err  error
}

func (a *recordingArchiver) Put(_ context.Context, key, _ string, _ []byte) error {
	a.keys = append(a.keys, key)
	return a.err
}
