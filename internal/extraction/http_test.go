package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"unicode/utf8"

	"invoiceapi/internal/config"
	"invoiceapi/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newServer(t *testing.T, status int, body string, calls *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		assert.Equal(t, http.MethodPost, r.Method)
		var req map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "s3://bucket/invoices/a.pdf", req["document_uri"])
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPInvoker_Invoke(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		status     int
		body       string
		dataPath   string
		want       model.RawFieldBag
		wantStatus int
		wantMsg    string
	}{
		{
			name:   "success",
			status: http.StatusOK,
			body:   `{"json_gcs_uri":"x","extracted_data":{"Capital":"1,000","Year":"2023"}}`,
			want:   model.RawFieldBag{"Capital": "1,000", "Year": "2023"},
		},
		{
			name:   "null data section",
			status: http.StatusOK,
			body:   `{"extracted_data":null}`,
			want:   nil,
		},
		{
			name:     "custom data path",
			status:   http.StatusOK,
			body:     `{"result":{"fields":{"Year":"2022"}}}`,
			dataPath: "$.result.fields",
			want:     model.RawFieldBag{"Year": "2022"},
		},
		{
			name:       "upstream error field is passed through",
			status:     http.StatusBadRequest,
			body:       `{"error":"Missing PDF URI in request"}`,
			wantStatus: http.StatusBadRequest,
			wantMsg:    "Missing PDF URI in request",
		},
		{
			name:       "upstream plain text error",
			status:     http.StatusInternalServerError,
			body:       "processor exploded",
			wantStatus: http.StatusInternalServerError,
			wantMsg:    "processor exploded",
		},
		{
			name:       "non JSON success body",
			status:     http.StatusOK,
			body:       "<html>ok</html>",
			wantStatus: http.StatusOK,
			wantMsg:    "not JSON",
		},
		{
			name:       "missing data section",
			status:     http.StatusOK,
			body:       `{"something_else":{}}`,
			wantStatus: http.StatusOK,
			wantMsg:    "no data at $.extracted_data",
		},
		{
			name:       "data section is not an object",
			status:     http.StatusOK,
			body:       `{"extracted_data":[1,2]}`,
			wantStatus: http.StatusOK,
			wantMsg:    "not an object",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			srv := newServer(t, tt.status, tt.body, &calls)
			inv, err := NewHTTPInvoker(config.ExtractionConfig{URL: srv.URL, DataPath: tt.dataPath}, nil, nil)
			require.NoError(t, err)

			bag, err := inv.Invoke(ctx, "s3://bucket/invoices/a.pdf")

			assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "exactly one attempt")
			if tt.wantMsg != "" {
				var extErr *Error
				require.True(t, errors.As(err, &extErr))
				assert.Equal(t, tt.wantStatus, extErr.StatusCode)
				assert.Contains(t, extErr.Error(), tt.wantMsg)
				assert.Nil(t, bag)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, bag)
		})
	}
}

func TestUpstreamMessage_TruncatesOnRuneBoundary(t *testing.T) {
	body := strings.Repeat("a", maxErrorBody-1) + strings.Repeat("é", 8)

	msg := upstreamMessage([]byte(body), "502 Bad Gateway")

	assert.True(t, utf8.ValidString(msg))
	assert.Equal(t, strings.Repeat("a", maxErrorBody-1), msg)
}

func TestUpstreamMessage_ShortBodyKept(t *testing.T) {
	assert.Equal(t, "überlastet", upstreamMessage([]byte(" überlastet \n"), "503"))
	assert.Equal(t, "503 Service Unavailable", upstreamMessage(nil, "503 Service Unavailable"))
}

func TestHTTPInvoker_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	inv, err := NewHTTPInvoker(config.ExtractionConfig{URL: url}, nil, nil)
	require.NoError(t, err)

	_, err = inv.Invoke(context.Background(), "s3://bucket/invoices/a.pdf")
	assert.True(t, IsError(err))
}

func TestNewHTTPInvoker_RequiresURL(t *testing.T) {
	_, err := NewHTTPInvoker(config.ExtractionConfig{}, nil, nil)
	assert.Error(t, err)
}
