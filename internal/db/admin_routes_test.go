package db

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttachAdminRoutes_Registered(t *testing.T) {
	db := newTestDB(t)

	mux := http.NewServeMux()
	require.NoError(t, db.AttachAdminRoutes(mux))

	for _, path := range []string{"/debug/backup", "/debug/tailsql/"} {
		t.Run(path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, path, nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			// 403 is fine: debug access is restricted to trusted peers.
			assert.NotEqual(t, http.StatusNotFound, w.Code)
		})
	}
}

func TestServeBackup_StreamsGzippedDatabase(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.PutResult("101", "102", matchResult(), "", testNow))

	req := httptest.NewRequest(http.MethodGet, "/debug/backup", nil)
	w := httptest.NewRecorder()
	db.serveBackup(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/gzip", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".db.gz")

	zr, err := gzip.NewReader(w.Body)
	require.NoError(t, err)
	data, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("SQLite format 3\x00")))
}
