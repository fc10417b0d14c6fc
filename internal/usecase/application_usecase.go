package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"applyfollow-backend/internal/domain"
	"applyfollow-backend/pkg/apperror"

	"github.com/google/uuid"
)

type applicationUsecase struct {
	applicationRepo domain.ApplicationRepository
	companyRepo     domain.CompanyRepository
	now             func() time.Time
}

// NewApplicationUsecase creates a new application usecase
func NewApplicationUsecase(appRepo domain.ApplicationRepository, companyRepo domain.CompanyRepository) domain.ApplicationUsecase {
	return &applicationUsecase{
		applicationRepo: appRepo,
		companyRepo:     companyRepo,
		now:             time.Now,
	}
}

// Create records a new application. When the user already tracks the same
// position at the same company, the existing application is returned and
// created is false.
func (uc *applicationUsecase) Create(ctx context.Context, userID string, req domain.CreateApplicationRequest) (*domain.Application, bool, error) {
	companyName := strings.TrimSpace(req.CompanyName)
	position := strings.TrimSpace(req.Position)
	if companyName == "" || position == "" {
		return nil, false, apperror.BadRequest("Company name and position are required")
	}

	existing, err := uc.applicationRepo.FindDuplicate(ctx, userID, companyName, position)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, false, apperror.Internal(err)
	}
	if existing != nil {
		return existing, false, nil
	}

	company, err := uc.companyRepo.FindOrCreate(ctx, companyName)
	if err != nil {
		return nil, false, apperror.Internal(err)
	}

	app := &domain.Application{
		ID:        uuid.NewString(),
		UserID:    userID,
		CompanyID: company.ID,
		Company:   company,
		Position:  position,
		Status:    req.Status,
		JobURL:    strings.TrimSpace(req.JobURL),
		Notes:     req.Notes,
		Contacts:  toContacts(req.Contacts),
	}
	if app.Status == "" {
		app.Status = domain.ApplicationStatusApplied
	}
	if req.AppliedAt != nil {
		app.AppliedAt = req.AppliedAt.UTC()
	} else {
		app.AppliedAt = uc.now().UTC()
	}

	if err := uc.applicationRepo.Create(ctx, app); err != nil {
		return nil, false, apperror.Internal(err)
	}
	return app, true, nil
}

func (uc *applicationUsecase) ListMine(ctx context.Context, userID string) ([]domain.Application, error) {
	apps, err := uc.applicationRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return apps, nil
}

func (uc *applicationUsecase) Get(ctx context.Context, userID, id string) (*domain.Application, error) {
	return uc.owned(ctx, userID, id)
}

// Update replaces the editable fields and the whole contact list.
func (uc *applicationUsecase) Update(ctx context.Context, userID, id string, req domain.UpdateApplicationRequest) (*domain.Application, error) {
	app, err := uc.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	companyName := strings.TrimSpace(req.CompanyName)
	if companyName != "" && (app.Company == nil || !strings.EqualFold(app.Company.Name, companyName)) {
		company, err := uc.companyRepo.FindOrCreate(ctx, companyName)
		if err != nil {
			return nil, apperror.Internal(err)
		}
		app.CompanyID = company.ID
		app.Company = company
	}

	if p := strings.TrimSpace(req.Position); p != "" {
		app.Position = p
	}
	if req.Status != "" {
		app.Status = req.Status
	}
	app.JobURL = strings.TrimSpace(req.JobURL)
	app.Notes = req.Notes
	if req.AppliedAt != nil {
		app.AppliedAt = req.AppliedAt.UTC()
	}
	app.Contacts = toContacts(req.Contacts)

	if err := uc.applicationRepo.Update(ctx, app); err != nil {
		return nil, mapRepoError(err, "Application not found")
	}
	return app, nil
}

func (uc *applicationUsecase) UpdateNotes(ctx context.Context, userID, id, notes string) (*domain.Application, error) {
	app, err := uc.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := uc.applicationRepo.UpdateNotes(ctx, id, notes); err != nil {
		return nil, mapRepoError(err, "Application not found")
	}
	app.Notes = notes
	app.UpdatedAt = uc.now().UTC()
	return app, nil
}

func (uc *applicationUsecase) UpdateStatus(ctx context.Context, userID, id, status string) (*domain.Application, error) {
	status = strings.ToUpper(strings.TrimSpace(status))
	if !domain.IsValidApplicationStatus(status) {
		return nil, apperror.BadRequest("Invalid status: must be one of " + strings.Join(domain.ApplicationStatuses, ", "))
	}

	app, err := uc.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := uc.applicationRepo.UpdateStatus(ctx, id, status); err != nil {
		return nil, mapRepoError(err, "Application not found")
	}
	app.Status = status
	app.UpdatedAt = uc.now().UTC()
	return app, nil
}

func (uc *applicationUsecase) Delete(ctx context.Context, userID, id string) error {
	if _, err := uc.owned(ctx, userID, id); err != nil {
		return err
	}
	if err := uc.applicationRepo.Delete(ctx, id); err != nil {
		return mapRepoError(err, "Application not found")
	}
	return nil
}

func (uc *applicationUsecase) ListContacts(ctx context.Context, userID, id string) ([]domain.Contact, error) {
	app, err := uc.owned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return app.Contacts, nil
}

func (uc *applicationUsecase) AddContact(ctx context.Context, userID, id string, req domain.ContactInput) (*domain.Contact, error) {
	if _, err := uc.owned(ctx, userID, id); err != nil {
		return nil, err
	}
	contact := toContact(req)
	contact.ApplicationID = id
	if err := uc.applicationRepo.AddContact(ctx, &contact); err != nil {
		return nil, mapRepoError(err, "Application not found")
	}
	return &contact, nil
}

// Export renders the caller's applications as a workbook.
func (uc *applicationUsecase) Export(ctx context.Context, userID string) ([]byte, string, error) {
	apps, err := uc.applicationRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, "", apperror.Internal(err)
	}

	headers := []string{"COMPANY", "POSITION", "STATUS", "APPLIED AT", "JOB URL", "CONTACTS", "NOTES"}
	rows := make([][]interface{}, 0, len(apps))
	for _, a := range apps {
		company := ""
		if a.Company != nil {
			company = a.Company.Name
		}
		names := make([]string, 0, len(a.Contacts))
		for _, c := range a.Contacts {
			names = append(names, c.Name)
		}
		rows = append(rows, []interface{}{
			company,
			a.Position,
			a.Status,
			a.AppliedAt.Format(domain.DateLayout),
			a.JobURL,
			strings.Join(names, ", "),
			a.Notes,
		})
	}

	data, err := writeWorkbook("Applications", headers, rows)
	if err != nil {
		return nil, "", apperror.Internal(err)
	}
	return data, exportFilename("applications", uc.now()), nil
}

func (uc *applicationUsecase) ListByUserForAdmin(ctx context.Context, userID string) ([]domain.Application, error) {
	return uc.ListMine(ctx, userID)
}

// owned loads an application and hides it from anyone but its owner.
func (uc *applicationUsecase) owned(ctx context.Context, userID, id string) (*domain.Application, error) {
	app, err := uc.applicationRepo.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "Application not found")
	}
	if app.UserID != userID {
		return nil, apperror.NotFound("Application not found")
	}
	return app, nil
}

func toContacts(in []domain.ContactInput) []domain.Contact {
	out := make([]domain.Contact, 0, len(in))
	for _, c := range in {
		out = append(out, toContact(c))
	}
	return out
}

func toContact(in domain.ContactInput) domain.Contact {
	return domain.Contact{
		Name:     strings.TrimSpace(in.Name),
		Role:     strings.TrimSpace(in.Role),
		Email:    strings.TrimSpace(in.Email),
		Phone:    strings.TrimSpace(in.Phone),
		LinkedIn: strings.TrimSpace(in.LinkedIn),
	}
}

// mapRepoError turns a repository not-found into a 404 carrying message and
// wraps anything else as an internal error.
func mapRepoError(err error, notFound string) error {
	if errors.Is(err, domain.ErrNotFound) {
		return apperror.NotFound(notFound)
	}
	return apperror.Internal(err)
}
