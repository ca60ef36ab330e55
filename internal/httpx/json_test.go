package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteError(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteError(rr, http.StatusNotFound, "Note not found")

	require.Equal(t, http.StatusNotFound, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	require.JSONEq(t, `{"errorMessage":"Note not found"}`, rr.Body.String())
}

func TestOK(t *testing.T) {
	rr := httptest.NewRecorder()
	OK(rr, map[string]any{"html": "<p>hi</p>"})

	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"errorMessage":null,"html":"<p>hi</p>"}`, rr.Body.String())
}
