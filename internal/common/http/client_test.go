package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_SendJSON(t *testing.T) {
	var gotMethod, gotType, gotAuth string
	var gotBody map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotType = r.Header.Get("Content-Type")
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewClient(5 * time.Second)
	status, err := c.SendJSON(context.Background(), http.MethodPut, srv.URL, map[string]string{"Authorization": "Bearer t"}, []byte(`{"id":1}`))
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "application/json", gotType)
	assert.Equal(t, "Bearer t", gotAuth)
	assert.Equal(t, float64(1), gotBody["id"])
}

func TestClient_SendJSON_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	status, err := NewClient(time.Second).SendJSON(context.Background(), http.MethodPost, srv.URL, nil, []byte(`{}`))
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, "nope", statusErr.Body)
	assert.Contains(t, err.Error(), "422")
}

func TestClient_SendJSON_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	status, err := NewClient(time.Second).SendJSON(context.Background(), http.MethodPost, url, nil, nil)
	assert.Error(t, err)
	assert.Equal(t, 0, status)
}
