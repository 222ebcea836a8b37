package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vibeshare/backend/internal/models"
	"github.com/vibeshare/backend/internal/repositories"
)

type followStoreStub struct {
	created   models.Follow
	deleted   [2]string
	following []models.Follow
	followers []models.Follow

	createErr error
	deleteErr error
	listErr   error
}

func (s *followStoreStub) Create(_ context.Context, follow models.Follow) error {
	s.created = follow
	return s.createErr
}

func (s *followStoreStub) Delete(_ context.Context, followerID, followeeID string) error {
	s.deleted = [2]string{followerID, followeeID}
	return s.deleteErr
}

func (s *followStoreStub) ListFollowing(context.Context, string) ([]models.Follow, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.following, nil
}

func (s *followStoreStub) ListFollowers(context.Context, string) ([]models.Follow, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.followers, nil
}

func TestFollowHandlerFollow(t *testing.T) {
	store := &followStoreStub{}
	now := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	handler := FollowHandler{Follows: store, NowFunc: func() time.Time { return now }}

	body, _ := json.Marshal(followRequest{FollowerID: "user-1", FolloweeID: "user-2"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/follows", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Handle(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status %d got %d", http.StatusCreated, rec.Code)
	}

	if store.created.FollowerID != "user-1" || store.created.FolloweeID != "user-2" {
		t.Fatalf("unexpected stored follow: %+v", store.created)
	}
	if !store.created.CreatedAt.Equal(now) {
		t.Fatalf("expected createdAt to use NowFunc, got %v", store.created.CreatedAt)
	}
}

func TestFollowHandlerFollowFailures(t *testing.T) {
	body := []byte(`{"followerId":"user-1","followeeId":"user-2"}`)

	cases := []struct {
		name       string
		handler    FollowHandler
		method     string
		body       []byte
		wantStatus int
	}{
		{"wrongMethod", FollowHandler{Follows: &followStoreStub{}}, http.MethodPut, body, http.StatusMethodNotAllowed},
		{"missingStore", FollowHandler{}, http.MethodPost, body, http.StatusInternalServerError},
		{"badJSON", FollowHandler{Follows: &followStoreStub{}}, http.MethodPost, []byte("{"), http.StatusBadRequest},
		{"missingFields", FollowHandler{Follows: &followStoreStub{}}, http.MethodPost, []byte(`{"followerId":"","followeeId":""}`), http.StatusBadRequest},
		{"selfFollow", FollowHandler{Follows: &followStoreStub{}}, http.MethodPost, []byte(`{"followerId":"same","followeeId":"same"}`), http.StatusBadRequest},
		{"conflict", FollowHandler{Follows: &followStoreStub{createErr: repositories.ErrConflict}}, http.MethodPost, body, http.StatusConflict},
		{"unknownUser", FollowHandler{Follows: &followStoreStub{createErr: repositories.ErrNotFound}}, http.MethodPost, body, http.StatusNotFound},
		{"internal", FollowHandler{Follows: &followStoreStub{createErr: errors.New("boom")}}, http.MethodPost, body, http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/api/v1/follows", bytes.NewReader(tc.body))
			rec := httptest.NewRecorder()

			tc.handler.Handle(rec, req)

			if rec.Code != tc.wantStatus {
				t.Fatalf("expected status %d got %d", tc.wantStatus, rec.Code)
			}
		})
	}
}

func TestFollowHandlerList(t *testing.T) {
	store := &followStoreStub{
		following: []models.Follow{{FollowerID: "user-1", FolloweeID: "user-2"}},
		followers: []models.Follow{{FollowerID: "user-3", FolloweeID: "user-1"}, {FollowerID: "user-4", FolloweeID: "user-1"}},
	}
	handler := FollowHandler{Follows: store}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/follows?userId=user-1", nil)
	rec := httptest.NewRecorder()
	handler.Handle(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}

	var resp followListResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Follows) != 1 || resp.Follows[0].FolloweeID != "user-2" {
		t.Fatalf("unexpected following list: %+v", resp.Follows)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/follows?userId=user-1&direction=followers", nil)
	rec = httptest.NewRecorder()
	handler.Handle(rec, req)

	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(resp.Follows) != 2 {
		t.Fatalf("expected 2 followers, got %d", len(resp.Follows))
	}

	rec = httptest.NewRecorder()
	handler.Handle(rec, httptest.NewRequest(http.MethodGet, "/api/v1/follows", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without userId got %d", rec.Code)
	}

	broken := FollowHandler{Follows: &followStoreStub{listErr: errors.New("db down")}}
	rec = httptest.NewRecorder()
	broken.Handle(rec, httptest.NewRequest(http.MethodGet, "/api/v1/follows?userId=user-1", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", rec.Code)
	}
}

func TestFollowHandlerUnfollow(t *testing.T) {
	store := &followStoreStub{}
	handler := FollowHandler{Follows: store}

	body := []byte(`{"followerId":"user-1","followeeId":"user-2"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/follows/delete", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	handler.Unfollow(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d got %d", http.StatusOK, rec.Code)
	}
	if store.deleted != [2]string{"user-1", "user-2"} {
		t.Fatalf("unexpected delete args: %v", store.deleted)
	}

	missing := FollowHandler{Follows: &followStoreStub{deleteErr: repositories.ErrNotFound}}
	rec = httptest.NewRecorder()
	missing.Unfollow(rec, httptest.NewRequest(http.MethodPost, "/api/v1/follows/delete", bytes.NewReader(body)))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}
