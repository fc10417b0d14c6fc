package usecase

import (
	"context"
	"strings"

	"applyfollow-backend/internal/domain"
	"applyfollow-backend/pkg/apperror"
	"applyfollow-backend/pkg/docx"
	"applyfollow-backend/pkg/logger"
	"applyfollow-backend/pkg/storage"
)

type cvUsecase struct {
	userRepo domain.UserRepository
	cvRepo   domain.CVRepository
	archive  storage.Archiver
}

// NewCVUsecase wires CV reads, writes and exports. archive may be nil when
// generated files are not kept.
func NewCVUsecase(userRepo domain.UserRepository, cvRepo domain.CVRepository, archive storage.Archiver) domain.CVUsecase {
	if archive == nil {
		archive = storage.NopArchiver{}
	}
	return &cvUsecase{userRepo: userRepo, cvRepo: cvRepo, archive: archive}
}

func (u *cvUsecase) Get(ctx context.Context, userID string) (*domain.CV, error) {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, mapRepoError(err, "User not found")
	}
	sections, err := u.cvRepo.GetSections(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err)
	}
	return buildCV(user, sections), nil
}

// Update stores the profile fields and replaces every section wholesale.
func (u *cvUsecase) Update(ctx context.Context, userID string, req domain.UpdateCVRequest) (*domain.CV, error) {
	profile := domain.CVProfile{
		Phone:    strings.TrimSpace(req.Phone),
		Address:  strings.TrimSpace(req.Address),
		LinkedIn: strings.TrimSpace(req.LinkedIn),
		GitHub:   strings.TrimSpace(req.GitHub),
		Website:  strings.TrimSpace(req.Website),
		Summary:  strings.TrimSpace(req.Summary),
	}

	sections := req.CVSections
	for i := range sections.Languages {
		sections.Languages[i].Level = domain.NormalizeLanguageLevel(sections.Languages[i].Level)
	}

	if err := u.cvRepo.Replace(ctx, userID, profile, sections); err != nil {
		return nil, mapRepoError(err, "User not found")
	}
	return u.Get(ctx, userID)
}

// Download renders the CV and archives a copy when storage is configured.
// Archive failures are logged only.
func (u *cvUsecase) Download(ctx context.Context, userID string) (*domain.CVDocument, error) {
	cv, err := u.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	content, err := renderCV(cv)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	doc := &domain.CVDocument{
		Filename:    cvFilename(cv.FullName),
		ContentType: docx.ContentType,
		Content:     content,
	}

	key := "cv/" + userID + "/" + doc.Filename
	if err := u.archive.Put(ctx, key, doc.ContentType, doc.Content); err != nil {
		logger.Log.Warn("failed to archive CV", "user_id", userID, "key", key, "error", err)
	}
	return doc, nil
}

func buildCV(user *domain.User, sections *domain.CVSections) *domain.CV {
	cv := &domain.CV{
		UserID:   user.ID,
		FullName: user.FullName,
		Email:    user.Email,
		Phone:    user.Phone,
		Address:  user.Address,
		LinkedIn: user.LinkedIn,
		GitHub:   user.GitHub,
		Website:  user.Website,
		Summary:  user.Summary,
	}
	if sections != nil {
		cv.CVSections = *sections
	}
	if cv.Educations == nil {
		cv.Educations = []domain.Education{}
	}
	if cv.Experiences == nil {
		cv.Experiences = []domain.Experience{}
	}
	if cv.Skills == nil {
		cv.Skills = []domain.Skill{}
	}
	if cv.Languages == nil {
		cv.Languages = []domain.Language{}
	}
	if cv.Certificates == nil {
		cv.Certificates = []domain.Certificate{}
	}
	return cv
}
