package evidencestorage

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func TestUpload_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/internal/appointments/42/evidence", r.URL.Path)

		file, header, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		content, _ := io.ReadAll(file)
		assert.Equal(t, "after.jpg", header.Filename)
		assert.Equal(t, []byte{0xff, 0xd8, 0xff}, content)

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"url": "https://files.example.com/42/after.jpg"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", time.Second, nopLogger{})
	url, err := client.Upload(context.Background(), 42, Photo{FileName: "after.jpg", ContentType: "image/jpeg", Content: []byte{0xff, 0xd8, 0xff}})

	require.NoError(t, err)
	assert.Equal(t, "https://files.example.com/42/after.jpg", url)
}

func TestUpload_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		err    error
	}{
		{"rejected", http.StatusRequestEntityTooLarge, `{"code": 413, "message": "too large"}`, ErrRejected},
		{"server error", http.StatusInternalServerError, `boom`, ErrInvalidResponse},
		{"empty url", http.StatusOK, `{}`, ErrInvalidResponse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(server.URL, time.Second, nopLogger{})
			_, err := client.Upload(context.Background(), 1, Photo{FileName: "a.png", Content: []byte{1}})

			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestUpload_Unreachable(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", 100*time.Millisecond, nopLogger{})

	_, err := client.Upload(context.Background(), 1, Photo{FileName: "a.png", Content: []byte{1}})

	assert.ErrorIs(t, err, ErrInternal)
}
