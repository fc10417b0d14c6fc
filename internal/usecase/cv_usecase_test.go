package usecase_test

import (
	"context"
	"errors"
	"testing"

	"applyfollow-backend/internal/domain"
	"applyfollow-backend/internal/usecase"
	"applyfollow-backend/pkg/docx"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCVUpdateNormalisesLanguageLevel(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepo)
	cvs := new(MockCVRepo)
	uc := usecase.NewCVUsecase(users, cvs, nil)

	cvs.On("Replace", ctx, "u1", domain.CVProfile{Summary: "Go dev", Phone: "+1 555"}, mock.AnythingOfType("domain.CVSections")).
		Return(nil).Run(func(args mock.Arguments) {
		s := args.Get(3).(domain.CVSections)
		require.Len(t, s.Languages, 2)
		assert.Equal(t, domain.LanguageLevelFluent, s.Languages[0].Level)
		assert.Equal(t, domain.LanguageLevelBasic, s.Languages[1].Level)
	})
	users.On("GetByID", ctx, "u1").Return(&domain.User{ID: "u1", FullName: "Jane", Summary: "Go dev"}, nil)
	cvs.On("GetSections", ctx, "u1").Return(&domain.CVSections{}, nil)

	cv, err := uc.Update(ctx, "u1", domain.UpdateCVRequest{
		Summary: " Go dev ",
		Phone:   "+1 555",
		CVSections: domain.CVSections{
			Languages: []domain.Language{{Name: "English", Level: "fluent"}, {Name: "Klingon", Level: "expert"}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Go dev", cv.Summary)
	assert.NotNil(t, cv.Skills)
	cvs.AssertExpectations(t)
}

func TestCVDownload(t *testing.T) {
	ctx := context.Background()
	users := new(MockUserRepo)
	cvs := new(MockCVRepo)

	users.On("GetByID", ctx, "u1").Return(&domain.User{ID: "u1", FullName: "Jane  Q Doe", Email: "jane@example.com"}, nil)
	cvs.On("GetSections", ctx, "u1").Return(&domain.CVSections{
		Skills: []domain.Skill{{Name: "Go"}, {Name: "SQL"}},
	}, nil)

	t.Run("Should render and archive the document", func(t *testing.T) {
		archive := &recordingArchiver{}
		uc := usecase.NewCVUsecase(users, cvs, archive)

		doc, err := uc.Download(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, "CV_Jane_Q_Doe.docx", doc.Filename)
		assert.Equal(t, docx.ContentType, doc.ContentType)
		assert.Equal(t, []byte("PK"), doc.Content[:2])
		assert.Equal(t, []string{"cv/u1/CV_Jane_Q_Doe.docx"}, archive.keys)
	})

	t.Run("Should still return the document when archiving fails", func(t *testing.T) {
		uc := usecase.NewCVUsecase(users, cvs, &recordingArchiver{err: errors.New("bucket gone")})

		doc, err := uc.Download(ctx, "u1")
		require.NoError(t, err)
		assert.NotEmpty(t, doc.Content)
	})
}
