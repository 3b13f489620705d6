package services

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/echo-english/practice-service/internal/events"
	"github.com/echo-english/practice-service/internal/models"
	"github.com/echo-english/practice-service/internal/repositories"
	"github.com/echo-english/practice-service/internal/validator"
)

// MockLessonRepository is a mock implementation of repositories.LessonRepository
type MockLessonRepository struct {
	mock.Mock
}

func (m *MockLessonRepository) Create(ctx context.Context, lesson *models.Lesson) error {
	args := m.Called(ctx, lesson)
	return args.Error(0)
}

func (m *MockLessonRepository) GetByID(ctx context.Context, id uint) (*models.Lesson, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Lesson), args.Error(1)
}

func (m *MockLessonRepository) GetByIDWithQuestions(ctx context.Context, id uint) (*models.Lesson, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Lesson), args.Error(1)
}

func (m *MockLessonRepository) List(ctx context.Context, filters repositories.LessonFilters) ([]*models.Lesson, int64, error) {
	args := m.Called(ctx, filters)
	return args.Get(0).([]*models.Lesson), args.Get(1).(int64), args.Error(2)
}

func (m *MockLessonRepository) Update(ctx context.Context, lesson *models.Lesson) error {
	args := m.Called(ctx, lesson)
	return args.Error(0)
}

func (m *MockLessonRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockLessonRepository) AddQuestions(ctx context.Context, lessonID uint, questions []*models.ClozeQuestion) error {
	args := m.Called(ctx, lessonID, questions)
	return args.Error(0)
}

func (m *MockLessonRepository) GetQuestions(ctx context.Context, lessonID uint) ([]*models.ClozeQuestion, error) {
	args := m.Called(ctx, lessonID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.ClozeQuestion), args.Error(1)
}

type mockRepository struct {
	lesson *MockLessonRepository
}

func (m *mockRepository) Lesson() repositories.LessonRepository { return m.lesson }

func newTestImportExportService(t *testing.T) (ImportExportService, *MockLessonRepository, SessionService) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	lessonRepo := new(MockLessonRepository)
	repo := &mockRepository{lesson: lessonRepo}
	sessions := NewSessionService(events.NewMockEventPublisher(logger), logger, 2*time.Hour)

	return NewImportExportService(repo, sessions, logger, validator.New()), lessonRepo, sessions
}

func TestImportExportService_ImportLessonsFromCSV(t *testing.T) {
	service, lessonRepo, _ := newTestImportExportService(t)

	csv := strings.Join([]string{
		"day,keyword,level,audio_url,transcript_path,prompt,answers,rationale",
		`1,reservation,B1,audio/day1.mp3,transcripts/day1.txt,"I'd like to make a ____.",reservation|booking,common collocation`,
		`1,reservation,B1,audio/day1.mp3,transcripts/day1.txt,"Please ____ your name.",confirm,`,
		`2,schedule,A2,audio/day2.mp3,transcripts/day2.txt,"What is on your ____?",schedule,`,
		`3,broken,Z9,audio/day3.mp3,transcripts/day3.txt,"A ____ row.",x,`,
		`4,broken,B1,audio/day4.mp3,transcripts/day4.txt,"no blank in this prompt",x,`,
	}, "\n")

	lessonRepo.On("Create", mock.Anything, mock.AnythingOfType("*models.Lesson")).Return(nil)

	result, err := service.ImportLessonsFromCSV(context.Background(), strings.NewReader(csv))

	require.NoError(t, err)
	assert.Equal(t, 5, result.TotalRows)
	assert.Equal(t, 2, result.LessonCount, "rows for the same day and keyword share one lesson")
	assert.Equal(t, 3, result.QuestionCount)
	assert.Equal(t, 2, result.ErrorCount)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, "level", result.Errors[0].Column)

	lessonRepo.AssertNumberOfCalls(t, "Create", 2)
}

func TestImportExportService_ImportLessonsFromCSV_MissingColumn(t *testing.T) {
	service, _, _ := newTestImportExportService(t)

	csv := "day,keyword,prompt\n1,reservation,\"a ____\"\n"

	_, err := service.ImportLessonsFromCSV(context.Background(), strings.NewReader(csv))

	require.Error(t, err)
	var validationError *ValidationError
	assert.ErrorAs(t, err, &validationError)
}

func TestImportExportService_ImportLessonsFromCSV_HeaderOnly(t *testing.T) {
	service, _, _ := newTestImportExportService(t)

	_, err := service.ImportLessonsFromCSV(context.Background(), strings.NewReader("day,keyword,prompt,answers\n"))

	require.Error(t, err)
}

func TestImportExportService_ExportSessionResults(t *testing.T) {
	service, _, sessions := newTestImportExportService(t)
	ctx := context.Background()

	session, err := sessions.Create(ctx, &CreateSessionParams{
		Items: []models.ClozeItem{
			{Prompt: "I need to ____ a reservation.", Answers: []string{"make"}},
			{Prompt: "The meeting is on my ____.", Answers: []string{"schedule"}},
		},
	})
	require.NoError(t, err)

	_, err = sessions.Submit(ctx, session.ID, 0, "make")
	require.NoError(t, err)

	data, err := service.ExportSessionResults(ctx, session.ID)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	f, err := excelize.OpenReader(strings.NewReader(string(data)))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Results")
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 3)

	assert.Equal(t, "Item", rows[0][0])
	assert.Equal(t, "I need to ____ a reservation.", rows[1][1])
	assert.Equal(t, string(models.ItemCorrect), rows[1][3])
	assert.Equal(t, string(models.ItemUnattempted), rows[2][3])
}

func TestImportExportService_ExportSessionResults_UnknownSession(t *testing.T) {
	service, _, _ := newTestImportExportService(t)

	_, err := service.ExportSessionResults(context.Background(), "missing")

	assert.ErrorIs(t, err, ErrSessionNotFound)
}
