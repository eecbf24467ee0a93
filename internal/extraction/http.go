package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/PaesslerAG/jsonpath"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"invoiceapi/internal/config"
	"invoiceapi/internal/model"
)

const defaultDataPath = "$.extracted_data"

// maxErrorBody bounds how much of an upstream error body is passed through.
const maxErrorBody = 2048

type request struct {
	DocumentURI string `json:"document_uri"`
}

// HTTPInvoker posts {"document_uri": ...} to the extraction endpoint.
// It makes exactly one attempt per call.
type HTTPInvoker struct {
	url      string
	dataPath string
	client   *http.Client
	logger   *slog.Logger
}

// NewHTTPInvoker builds an invoker from cfg. A nil client gets an otelhttp-instrumented
// default client whose timeout is cfg.TimeoutSec (0 means none).
func NewHTTPInvoker(cfg config.ExtractionConfig, client *http.Client, logger *slog.Logger) (*HTTPInvoker, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("extraction url is required")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if client == nil {
		client = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   time.Duration(cfg.TimeoutSec) * time.Second,
		}
	}
	path := cfg.DataPath
	if path == "" {
		path = defaultDataPath
	}
	return &HTTPInvoker{
		url:      cfg.URL,
		dataPath: path,
		client:   client,
		logger:   logger.With("component", "extraction"),
	}, nil
}

var _ Invoker = (*HTTPInvoker)(nil)

// Invoke sends one request for documentURI.
func (h *HTTPInvoker) Invoke(ctx context.Context, documentURI string) (model.RawFieldBag, error) {
	start := time.Now()

	body, err := json.Marshal(request{DocumentURI: documentURI})
	if err != nil {
		return nil, &Error{Message: "encode request", Err: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Message: "build request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		h.logger.Error("extraction.send_error", "document_uri", documentURI, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, &Error{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{StatusCode: resp.StatusCode, Message: "read response", Err: err}
	}

	h.logger.Info("extraction.response",
		"document_uri", documentURI,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode/100 != 2 {
		return nil, &Error{StatusCode: resp.StatusCode, Message: upstreamMessage(raw, resp.Status)}
	}

	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, &Error{StatusCode: resp.StatusCode, Message: "malformed payload: not JSON", Err: err}
	}
	data, err := jsonpath.Get(h.dataPath, payload)
	if err != nil {
		return nil, &Error{StatusCode: resp.StatusCode, Message: fmt.Sprintf("malformed payload: no data at %s", h.dataPath), Err: err}
	}
	switch d := data.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return model.RawFieldBag(d), nil
	default:
		return nil, &Error{StatusCode: resp.StatusCode, Message: fmt.Sprintf("malformed payload: data is %T, not an object", data)}
	}
}

// upstreamMessage prefers the service's {"error": "..."} field over the raw body.
func upstreamMessage(raw []byte, status string) string {
	var e struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &e); err == nil {
		if e.Error != "" {
			return e.Error
		}
		if e.Message != "" {
			return e.Message
		}
	}
	msg := strings.TrimSpace(string(raw))
	if len(msg) > maxErrorBody {
		cut := maxErrorBody
		for cut > 0 && !utf8.RuneStart(msg[cut]) {
			cut--
		}
		msg = msg[:cut]
	}
	if msg == "" {
		return status
	}
	return msg
}

// IsError reports whether err came from an extraction call.
func IsError(err error) bool {
	var e *Error
	return errors.As(err, &e)
}
