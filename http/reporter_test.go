package http_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fwojciec/docseek"
	docseekhttp "github.com/fwojciec/docseek/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReporter_Report(t *testing.T) {
	t.Parallel()

	answers := []docseek.Answer{
		{QuestionID: "01", Text: "kontakt@example.com", Status: docseek.StatusAnswered},
		{QuestionID: "02", Status: docseek.StatusFailed},
	}

	t.Run("posts answer map and returns passing ack", func(t *testing.T) {
		t.Parallel()

		var got map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
			_, _ = w.Write([]byte(`{"code": 0, "message": "{{FLG:OK}}"}`))
		}))
		defer srv.Close()

		reporter := docseekhttp.NewReporter(srv.Client(), srv.URL, "softo", "secret", "unknown")

		ack, err := reporter.Report(context.Background(), answers)

		require.NoError(t, err)
		assert.True(t, ack.Passed)
		assert.Equal(t, "{{FLG:OK}}", ack.Message)
		assert.Equal(t, "softo", got["task"])
		assert.Equal(t, "secret", got["apikey"])
		assert.Equal(t, map[string]any{"01": "kontakt@example.com", "02": "unknown"}, got["answer"])
	})

	t.Run("returns failing ack for rejection with error status", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"code": -340, "message": "Answer for question 02 is incorrect"}`))
		}))
		defer srv.Close()

		ack, err := docseekhttp.NewReporter(srv.Client(), srv.URL, "softo", "k", "unknown").Report(context.Background(), answers)

		require.NoError(t, err)
		assert.False(t, ack.Passed)
		assert.Equal(t, -340, ack.Code)
		assert.Contains(t, ack.Message, "02")
	})

	t.Run("returns EFETCH for unparseable reply", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`<html>bad gateway</html>`))
		}))
		defer srv.Close()

		_, err := docseekhttp.NewReporter(srv.Client(), srv.URL, "softo", "k", "unknown").Report(context.Background(), answers)

		assert.Equal(t, docseek.EFETCH, docseek.ErrorCode(err))
		assert.Contains(t, docseek.ErrorMessage(err), "502")
	})
}
