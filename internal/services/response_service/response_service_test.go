package services_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"guidebolt/internal/domain/models"
	services "guidebolt/internal/services/response_service"
	"guidebolt/internal/transport/http/dto"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockResponseRepository struct {
	mock.Mock
}

func (m *MockResponseRepository) UpsertResponse(ctx context.Context, response models.UserResponse) (uuid.UUID, error) {
	args := m.Called(ctx, response)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockResponseRepository) GetResponses(ctx context.Context, filter models.ResponseFilter) ([]models.UserResponse, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.UserResponse), args.Error(1)
}

func (m *MockResponseRepository) DeleteGuideResponses(ctx context.Context, guideID uuid.UUID) error {
	args := m.Called(ctx, guideID)
	return args.Error(0)
}

func newService(repo *MockResponseRepository) *services.ResponseService {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return services.NewResponseService(log, repo)
}

func answerItem(answer string) dto.SubmitResponseItem {
	return dto.SubmitResponseItem{
		GuideID:        uuid.New(),
		SlideID:        uuid.New(),
		BlockID:        uuid.New(),
		UserIdentifier: "viewer-1",
		Question:       "Q",
		Answer:         &answer,
	}
}

func TestSubmitResponses_SavesEachItem(t *testing.T) {
	repo := new(MockResponseRepository)
	svc := newService(repo)

	repo.On("UpsertResponse", mock.Anything, mock.Anything).Return(uuid.New(), nil).Times(2)

	saved, err := svc.SubmitResponses(context.Background(), dto.SubmitResponsesRequest{
		Responses: []dto.SubmitResponseItem{answerItem("A"), answerItem("B")},
	})

	require.NoError(t, err)
	assert.Equal(t, 2, saved)
	repo.AssertExpectations(t)
}

func TestSubmitResponses_RejectsEmptyItems(t *testing.T) {
	repo := new(MockResponseRepository)
	svc := newService(repo)

	item := answerItem("")

	_, err := svc.SubmitResponses(context.Background(), dto.SubmitResponsesRequest{
		Responses: []dto.SubmitResponseItem{item},
	})

	assert.ErrorIs(t, err, services.ErrEmptyResponse)
	repo.AssertNotCalled(t, "UpsertResponse", mock.Anything, mock.Anything)
}

func TestSubmitResponses_FileOnlyItemAccepted(t *testing.T) {
	repo := new(MockResponseRepository)
	svc := newService(repo)

	fileURL := "http://localhost:8080/uploads/1-a.pdf"
	fileName := "resume.pdf"
	item := dto.SubmitResponseItem{
		GuideID:        uuid.New(),
		SlideID:        uuid.New(),
		BlockID:        uuid.New(),
		UserIdentifier: "viewer-1",
		Question:       "File upload",
		FileURL:        &fileURL,
		FileName:       &fileName,
	}

	repo.On("UpsertResponse", mock.Anything, mock.MatchedBy(func(r models.UserResponse) bool {
		return r.FileURL != nil && *r.FileURL == fileURL && r.Answer == nil
	})).Return(uuid.New(), nil).Once()

	saved, err := svc.SubmitResponses(context.Background(), dto.SubmitResponsesRequest{
		Responses: []dto.SubmitResponseItem{item},
	})

	require.NoError(t, err)
	assert.Equal(t, 1, saved)
}

func TestSubmitResponses_StopsOnStoreFailure(t *testing.T) {
	repo := new(MockResponseRepository)
	svc := newService(repo)

	repo.On("UpsertResponse", mock.Anything, mock.Anything).Return(uuid.New(), nil).Once()
	repo.On("UpsertResponse", mock.Anything, mock.Anything).Return(uuid.Nil, errors.New("connection refused")).Once()

	saved, err := svc.SubmitResponses(context.Background(), dto.SubmitResponsesRequest{
		Responses: []dto.SubmitResponseItem{answerItem("A"), answerItem("B"), answerItem("C")},
	})

	assert.Error(t, err)
	assert.Equal(t, 1, saved)
}

func TestListResponses_PassesFilter(t *testing.T) {
	repo := new(MockResponseRepository)
	svc := newService(repo)

	filter := models.ResponseFilter{GuideID: uuid.New(), UserIdentifier: "viewer-1"}
	repo.On("GetResponses", mock.Anything, filter).Return([]models.UserResponse{{}}, nil).Once()

	items, err := svc.ListResponses(context.Background(), filter)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}
