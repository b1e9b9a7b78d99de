package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockManager struct {
	mock.Mock
}

func (m *mockManager) Enqueue(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	args := m.Called(ctx, task)
	info, _ := args.Get(0).(*asynq.TaskInfo)
	return info, args.Error(1)
}

func (m *mockManager) Close() error {
	args := m.Called()
	return args.Error(0)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSweepTriggerHandler_EnqueuesSweep(t *testing.T) {
	mgr := new(mockManager)
	mgr.On("Enqueue", mock.Anything, mock.MatchedBy(func(task *asynq.Task) bool {
		return task.Type() == TaskTypeReconcileSweep
	})).Return(&asynq.TaskInfo{ID: "task-1", Queue: QueueDefault}, nil).Once()

	handler := NewSweepTriggerHandler(mgr, testLogger())

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/reconcile", nil))

	require.Equal(t, http.StatusAccepted, rec.Code)
	mgr.AssertExpectations(t)
}

func TestSweepTriggerHandler_RejectsNonPost(t *testing.T) {
	mgr := new(mockManager)
	handler := NewSweepTriggerHandler(mgr, testLogger())

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/reconcile", nil))

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	mgr.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
}

func TestSweepTriggerHandler_EnqueueFailure(t *testing.T) {
	mgr := new(mockManager)
	mgr.On("Enqueue", mock.Anything, mock.Anything).
		Return(nil, errors.New("redis down")).Once()

	handler := NewSweepTriggerHandler(mgr, testLogger())

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodPost, "/reconcile", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	mgr.AssertExpectations(t)
}
