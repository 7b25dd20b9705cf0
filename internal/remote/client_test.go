package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/qprog/internal/ir"
)

func TestClient_SubmitBatch(t *testing.T) {
	var got submitRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/Jobs", r.URL.Path)
		assert.Equal(t, "secret", r.URL.Query().Get("access_token"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"id":"job-1"}`))
	}))
	defer srv.Close()

	c := NewClient("secret", srv.URL+"/api/")
	id, err := c.SubmitBatch(context.Background(), Batch{
		Device:     "ibmqx2",
		Shots:      1024,
		MaxCredits: 3,
		Qasms:      []string{"OPENQASM 2.0;", "OPENQASM 2.0;\nqreg q[1];"},
	})
	require.NoError(t, err)

	assert.Equal(t, "job-1", id)
	assert.Equal(t, 1024, got.Shots)
	assert.Equal(t, 3, got.MaxCredits)
	assert.Equal(t, "ibmqx2", got.Backend.Name)
	assert.Len(t, got.Qasms, 2)
}

func TestClient_SubmitBatchServiceError(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"string error", `{"error":"not enough credits"}`, "not enough credits"},
		{"object error", `{"error":{"message":"device offline","code":"X"}}`, "device offline"},
		{"missing id", `{}`, "response carried no job id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewClient("t", srv.URL).SubmitBatch(context.Background(), Batch{Device: "real", Shots: 1})
			require.Error(t, err)

			var subErr *SubmissionError
			require.True(t, errors.As(err, &subErr))
			assert.Equal(t, tt.want, subErr.Message)
			assert.Equal(t, "real", subErr.Device)
		})
	}
}

func TestClient_HTTPFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewClient("t", srv.URL).JobStatus(context.Background(), "abc")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http 500")
}

func TestClient_JobStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/Jobs/abc", r.URL.Path)
		_, _ = w.Write([]byte(`{
			"status": "COMPLETED",
			"qasms": [
				{"qasm": "src", "status": "DONE", "result": {"data": {"counts": {"00": 3, "11": 7}}, "date": "2017-05-01"}}
			]
		}`))
	}))
	defer srv.Close()

	status, err := NewClient("t", srv.URL).JobStatus(context.Background(), "abc")
	require.NoError(t, err)

	assert.Equal(t, "abc", status.ID)
	assert.Equal(t, StateCompleted, status.Status)
	require.Len(t, status.Qasms, 1)
	assert.Equal(t, ir.Counts{"00": 3, "11": 7}, status.Qasms[0].Result.Data.Counts)
	assert.Equal(t, "2017-05-01", status.Qasms[0].Result.Date)
}

func TestNewClient_DefaultURL(t *testing.T) {
	assert.Equal(t, DefaultURL, NewClient("t", "").BaseURL())
}

func TestJobState_IsError(t *testing.T) {
	assert.True(t, StateErrorCreatingJob.IsError())
	assert.True(t, StateErrorRunningJob.IsError())
	assert.False(t, StateRunning.IsError())
	assert.False(t, StateCompleted.IsError())
}
