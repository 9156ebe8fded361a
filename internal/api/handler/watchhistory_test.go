package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hszk-dev/gostream/internal/domain/model"
	"github.com/hszk-dev/gostream/internal/usecase"
)

type mockWatchProgressService struct {
	updateProgressFn func(ctx context.Context, identity usecase.IdentityContext, videoID uuid.UUID, progress int) (*model.WatchHistory, error)
	listForUserFn    func(ctx context.Context, identity usecase.IdentityContext, videoID *uuid.UUID) ([]*model.WatchHistory, error)
	deleteFn         func(ctx context.Context, identity usecase.IdentityContext, id uuid.UUID) error
}

func (m *mockWatchProgressService) UpdateProgress(ctx context.Context, identity usecase.IdentityContext, videoID uuid.UUID, progress int) (*model.WatchHistory, error) {
	if m.updateProgressFn != nil {
		return m.updateProgressFn(ctx, identity, videoID, progress)
	}
	return nil, nil
}

func (m *mockWatchProgressService) ListForUser(ctx context.Context, identity usecase.IdentityContext, videoID *uuid.UUID) ([]*model.WatchHistory, error) {
	if m.listForUserFn != nil {
		return m.listForUserFn(ctx, identity, videoID)
	}
	return nil, nil
}

func (m *mockWatchProgressService) Delete(ctx context.Context, identity usecase.IdentityContext, id uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, identity, id)
	}
	return nil
}

func TestWatchHistoryHandler_UpdateProgress(t *testing.T) {
	userID := uuid.New()
	videoID := uuid.New()

	tests := []struct {
		name           string
		userIDHeader   string
		requestBody    interface{}
		setupMock      func(m *mockWatchProgressService)
		wantStatusCode int
	}{
		{
			name:         "successful update",
			userIDHeader: userID.String(),
			requestBody:  UpdateProgressRequest{ProgressSeconds: 120},
			setupMock: func(m *mockWatchProgressService) {
				m.updateProgressFn = func(ctx context.Context, identity usecase.IdentityContext, vID uuid.UUID, progress int) (*model.WatchHistory, error) {
					return model.NewWatchHistory(identity.UserID, vID, progress), nil
				}
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "missing identity header",
			userIDHeader:   "",
			requestBody:    UpdateProgressRequest{ProgressSeconds: 120},
			setupMock:      func(m *mockWatchProgressService) {},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:         "negative progress rejected",
			userIDHeader: userID.String(),
			requestBody:  UpdateProgressRequest{ProgressSeconds: -5},
			setupMock: func(m *mockWatchProgressService) {
				m.updateProgressFn = func(ctx context.Context, identity usecase.IdentityContext, vID uuid.UUID, progress int) (*model.WatchHistory, error) {
					return nil, model.ErrNegativeProgress
				}
			},
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:         "progress exceeds duration rejected",
			userIDHeader: userID.String(),
			requestBody:  UpdateProgressRequest{ProgressSeconds: 99999},
			setupMock: func(m *mockWatchProgressService) {
				m.updateProgressFn = func(ctx context.Context, identity usecase.IdentityContext, vID uuid.UUID, progress int) (*model.WatchHistory, error) {
					return nil, model.ErrProgressExceedsDuration
				}
			},
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockWatchProgressService{}
			tt.setupMock(mock)
			h := NewWatchHistoryHandler(mock)

			body, err := json.Marshal(tt.requestBody)
			if err != nil {
				t.Fatalf("failed to marshal request body: %v", err)
			}

			r := chi.NewRouter()
			r.Put("/v1/videos/{id}/progress", h.UpdateProgress)

			req := httptest.NewRequest(http.MethodPut, "/v1/videos/"+videoID.String()+"/progress", bytes.NewReader(body))
			if tt.userIDHeader != "" {
				req.Header.Set("X-User-Id", tt.userIDHeader)
			}
			rec := httptest.NewRecorder()

			r.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatusCode {
				t.Errorf("expected status %d, got %d", tt.wantStatusCode, rec.Code)
			}
		})
	}
}

func TestWatchHistoryHandler_ListForUser_ScopedToCaller(t *testing.T) {
	userID := uuid.New()
	var capturedIdentity usecase.IdentityContext

	mock := &mockWatchProgressService{
		listForUserFn: func(ctx context.Context, identity usecase.IdentityContext, videoID *uuid.UUID) ([]*model.WatchHistory, error) {
			capturedIdentity = identity
			return []*model.WatchHistory{
				{ID: uuid.New(), UserID: identity.UserID, VideoID: uuid.New(), ProgressSeconds: 30, UpdatedAt: time.Now()},
			}, nil
		},
	}
	h := NewWatchHistoryHandler(mock)

	req := httptest.NewRequest(http.MethodGet, "/v1/watch-history", nil)
	req.Header.Set("X-User-Id", userID.String())
	rec := httptest.NewRecorder()

	h.ListForUser(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if capturedIdentity.UserID != userID {
		t.Errorf("expected identity.UserID = %s, got %s", userID, capturedIdentity.UserID)
	}

	var resp []WatchHistoryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to unmarshal response: %v", err)
	}
	if len(resp) != 1 {
		t.Errorf("expected 1 row, got %d", len(resp))
	}
}

func TestWatchHistoryHandler_Delete(t *testing.T) {
	tests := []struct {
		name           string
		isAdminHeader  string
		setupMock      func(m *mockWatchProgressService)
		wantStatusCode int
	}{
		{
			name:          "forbidden for non-admin",
			isAdminHeader: "false",
			setupMock: func(m *mockWatchProgressService) {
				m.deleteFn = func(ctx context.Context, identity usecase.IdentityContext, id uuid.UUID) error {
					return model.ErrForbidden
				}
			},
			wantStatusCode: http.StatusForbidden,
		},
		{
			name:          "allowed for admin",
			isAdminHeader: "true",
			setupMock: func(m *mockWatchProgressService) {
				m.deleteFn = func(ctx context.Context, identity usecase.IdentityContext, id uuid.UUID) error {
					return nil
				}
			},
			wantStatusCode: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockWatchProgressService{}
			tt.setupMock(mock)
			h := NewWatchHistoryHandler(mock)

			r := chi.NewRouter()
			r.Delete("/v1/watch-history/{id}", h.Delete)

			req := httptest.NewRequest(http.MethodDelete, "/v1/watch-history/"+uuid.New().String(), nil)
			req.Header.Set("X-User-Id", uuid.New().String())
			req.Header.Set("X-Is-Admin", tt.isAdminHeader)
			rec := httptest.NewRecorder()

			r.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatusCode {
				t.Errorf("expected status %d, got %d", tt.wantStatusCode, rec.Code)
			}
		})
	}
}
