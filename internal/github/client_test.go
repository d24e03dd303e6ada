package github

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	gh "github.com/google/go-github/v73/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkraev/diffsentry/internal/core"
)

// newTestClient points a go-github client at an httptest server.
func newTestClient(t *testing.T, handler http.Handler) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	ghc := gh.NewClient(nil)
	base, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	ghc.BaseURL = base

	return NewClient(ghc, slog.Default())
}

func TestListChangedFiles_Pagination(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octo/demo/pulls/7/files", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `[{"filename":"c.rb","patch":"@@ -1 +1 @@\n+c","additions":1,"deletions":0}]`)
			return
		}
		w.Header().Set("Link", fmt.Sprintf(`<http://%s/repos/octo/demo/pulls/7/files?page=2>; rel="next"`, r.Host))
		fmt.Fprint(w, `[
			{"filename":"a.py","patch":"@@ -1 +1 @@\n+a","additions":1,"deletions":0},
			{"filename":"b.js","patch":"@@ -1 +1 @@\n+b","additions":1,"deletions":1}
		]`)
	})

	client := newTestClient(t, mux)

	files, err := client.ListChangedFiles(context.Background(), "octo", "demo", 7)
	require.NoError(t, err)
	require.Len(t, files, 3)

	assert.Equal(t, "a.py", files[0].Path)
	assert.Equal(t, "python", files[0].Language)
	assert.Equal(t, "javascript", files[1].Language)
	assert.Equal(t, "ruby", files[2].Language)
	assert.Equal(t, "@@ -1 +1 @@\n+c", files[2].Patch)
}

func TestListChangedFiles_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, core.ErrAuth},
		{"forbidden", http.StatusForbidden, core.ErrAuth},
		{"missing PR", http.StatusNotFound, core.ErrNotFound},
		{"server error", http.StatusInternalServerError, core.ErrTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				fmt.Fprint(w, `{"message":"nope"}`)
			}))

			_, err := client.ListChangedFiles(context.Background(), "octo", "demo", 7)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCreateComment(t *testing.T) {
	var gotBody string
	mux := http.NewServeMux()
	mux.HandleFunc("/repos/octo/demo/issues/7/comments", func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Body string `json:"body"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		gotBody = payload.Body
		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{"id":1}`)
	})

	client := newTestClient(t, mux)

	err := client.CreateComment(context.Background(), "octo", "demo", 7, "review body")
	require.NoError(t, err)
	assert.Equal(t, "review body", gotBody)
}
