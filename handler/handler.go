package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"intake-triage/internal/domain"
	"intake-triage/internal/triage"
	"intake-triage/internal/usecase"
)

const (
	headerCorrelationID = "X-Correlation-Id"

	codeNotFound         = "NOT_FOUND"
	codeMethodNotAllowed = "METHOD_NOT_ALLOWED"
)

type TriageUseCase interface {
	Triage(ctx context.Context, in usecase.TriageInput) (usecase.TriageOutput, error)
	Questions(language string) []triage.Question
}

type AssistUseCase interface {
	Assist(ctx context.Context, in usecase.AssistInput) (usecase.AssistOutput, error)
}

type triageRequest struct {
	Message           string          `json:"message"`
	ConversationState json.RawMessage `json:"conversation_state"`
	Language          string          `json:"language"`
}

// triageResponse is encoded by encode, not json.Marshal, so the state
// bytes reach the client untouched.
type triageResponse struct {
	Response          string                  `json:"response"`
	Options           []string                `json:"options"`
	Referrals         []domain.ReferralRecord `json:"referrals"`
	ConversationState json.RawMessage         `json:"-"`
	Progress          triage.Progress         `json:"progress"`
}

func (r triageResponse) encode() ([]byte, error) {
	head, err := json.Marshal(r)
	if err != nil {
		return nil, err
	}
	state := bytes.TrimSpace(r.ConversationState)
	if len(state) == 0 {
		state = []byte("null")
	}
	if !json.Valid(state) {
		return nil, errors.New("handler: conversation_state is not valid JSON")
	}
	var b bytes.Buffer
	b.Grow(len(head) + len(state) + 24)
	b.Write(head[:len(head)-1])
	b.WriteString(`,"conversation_state":`)
	b.Write(state)
	b.WriteByte('}')
	return b.Bytes(), nil
}

type assistRequest struct {
	Messages []domain.ChatMessage `json:"messages"`
	Topic    string               `json:"topic"`
	Language string               `json:"language"`
}

type assistResponse struct {
	Response string `json:"response"`
}

type questionsResponse struct {
	Questions []triage.Question `json:"questions"`
}

type healthResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type Handler struct {
	triage    TriageUseCase
	assist    AssistUseCase
	origins   map[string]bool
	anyOrigin bool
	logger    *slog.Logger
}

type request struct {
	body  []byte
	query map[string]string
}

type route func(ctx context.Context, req request) (int, any, error)

// NewHandler wires the API Gateway routes. allowedOrigins is the CORS
// allow-list; "*" admits any origin.
func NewHandler(t TriageUseCase, a AssistUseCase, allowedOrigins []string, logger *slog.Logger) (*Handler, error) {
	if t == nil {
		return nil, errors.New("handler: triage use case must not be nil")
	}
	if a == nil {
		return nil, errors.New("handler: assist use case must not be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{triage: t, assist: a, origins: map[string]bool{}, logger: logger}
	for _, o := range allowedOrigins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		switch o {
		case "":
		case "*":
			h.anyOrigin = true
		default:
			h.origins[o] = true
		}
	}
	return h, nil
}

func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	start := time.Now()
	correlationID := headerValue(event.Headers, headerCorrelationID)
	if correlationID == "" {
		correlationID = uuid.NewString()
	}
	path := normalizePath(event.Path)
	method := strings.ToUpper(event.HTTPMethod)

	status, payload := h.dispatch(ctx, method, path, event, correlationID)

	resp := events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    h.responseHeaders(headerValue(event.Headers, "Origin"), correlationID),
	}
	if payload != nil {
		body, err := encodePayload(payload)
		if err != nil {
			h.logger.ErrorContext(ctx, "encode response", "correlation_id", correlationID, "err", err)
			resp.StatusCode = http.StatusInternalServerError
			body = []byte(`{"error":"INTERNAL_ERROR"}`)
		}
		resp.Body = string(body)
	}
	if status == http.StatusMethodNotAllowed {
		resp.Headers["Allow"] = "GET, POST, OPTIONS"
	}

	h.logger.InfoContext(ctx, "request handled",
		"correlation_id", correlationID,
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return resp, nil
}

func (h *Handler) dispatch(ctx context.Context, method, path string, event events.APIGatewayProxyRequest, correlationID string) (int, any) {
	if method == http.MethodOptions {
		return http.StatusNoContent, nil
	}

	routes := map[string]map[string]route{
		"/":                 {http.MethodGet: h.health},
		"/triage":           {http.MethodPost: h.handleTriage},
		"/triage/questions": {http.MethodGet: h.handleQuestions},
		"/chat":             {http.MethodPost: h.handleTriage},
		"/ai-chat":          {http.MethodPost: h.handleAssist},
	}
	byMethod, ok := routes[path]
	if !ok {
		return http.StatusNotFound, errorResponse{Error: codeNotFound}
	}
	fn, ok := byMethod[method]
	if !ok {
		return http.StatusMethodNotAllowed, errorResponse{Error: codeMethodNotAllowed}
	}

	body, err := requestBody(event)
	if err != nil {
		h.logger.WarnContext(ctx, "invalid request body", "correlation_id", correlationID, "err", err)
		return http.StatusBadRequest, errorResponse{Error: string(usecase.ErrorInvalidInput)}
	}
	status, payload, err := fn(ctx, request{body: body, query: event.QueryStringParameters})
	if err != nil {
		return h.errorStatus(ctx, correlationID, err)
	}
	return status, payload
}

func (h *Handler) health(context.Context, request) (int, any, error) {
	return http.StatusOK, healthResponse{Message: "intake triage service is running"}, nil
}

func (h *Handler) handleTriage(ctx context.Context, r request) (int, any, error) {
	var req triageRequest
	if err := decodeBody(r.body, &req); err != nil {
		return 0, nil, err
	}
	out, err := h.triage.Triage(ctx, usecase.TriageInput{
		Message:  req.Message,
		State:    req.ConversationState,
		Language: req.Language,
	})
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, triageResponse{
		Response:          out.Response,
		Options:           out.Options,
		Referrals:         out.Referrals,
		ConversationState: out.ConversationState,
		Progress:          out.Progress,
	}, nil
}

func (h *Handler) handleQuestions(_ context.Context, r request) (int, any, error) {
	return http.StatusOK, questionsResponse{Questions: h.triage.Questions(headerValue(r.query, "language"))}, nil
}

func (h *Handler) handleAssist(ctx context.Context, r request) (int, any, error) {
	var req assistRequest
	if err := decodeBody(r.body, &req); err != nil {
		return 0, nil, err
	}
	out, err := h.assist.Assist(ctx, usecase.AssistInput{
		Messages: req.Messages,
		Topic:    req.Topic,
		Language: req.Language,
	})
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, assistResponse{Response: out.Response}, nil
}

func (h *Handler) errorStatus(ctx context.Context, correlationID string, err error) (int, any) {
	var ucErr *usecase.Error
	if !errors.As(err, &ucErr) {
		h.logger.ErrorContext(ctx, "unexpected error", "correlation_id", correlationID, "err", err)
		return http.StatusInternalServerError, errorResponse{Error: string(usecase.ErrorInternal)}
	}

	status := http.StatusInternalServerError
	switch ucErr.Code {
	case usecase.ErrorInvalidInput:
		status = http.StatusBadRequest
	case usecase.ErrorRateLimited:
		status = http.StatusTooManyRequests
	case usecase.ErrorAssistantUnavailable:
		status = http.StatusServiceUnavailable
	}
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, "request failed",
		"correlation_id", correlationID,
		"code", ucErr.Code,
		"reason", ucErr.Reason,
		"err", ucErr.Err,
	)
	return status, errorResponse{Error: string(ucErr.Code)}
}

func (h *Handler) responseHeaders(origin, correlationID string) map[string]string {
	headers := map[string]string{
		"Content-Type":      "application/json",
		headerCorrelationID: correlationID,
	}
	origin = strings.TrimRight(origin, "/")
	if origin != "" && (h.anyOrigin || h.origins[origin]) {
		headers["Access-Control-Allow-Origin"] = origin
		headers["Access-Control-Allow-Methods"] = "GET, POST, OPTIONS"
		headers["Access-Control-Allow-Headers"] = "Content-Type, " + headerCorrelationID
		headers["Access-Control-Expose-Headers"] = headerCorrelationID
		headers["Vary"] = "Origin"
	}
	return headers
}

func encodePayload(payload any) ([]byte, error) {
	if r, ok := payload.(triageResponse); ok {
		return r.encode()
	}
	return json.Marshal(payload)
}

func requestBody(event events.APIGatewayProxyRequest) ([]byte, error) {
	if !event.IsBase64Encoded {
		return []byte(event.Body), nil
	}
	return base64.StdEncoding.DecodeString(event.Body)
}

// decodeBody treats an empty body as an empty object.
func decodeBody(body []byte, v any) error {
	if strings.TrimSpace(string(body)) == "" {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return &usecase.Error{Code: usecase.ErrorInvalidInput, Reason: "malformed_body", Err: err}
	}
	return nil
}

func headerValue(headers map[string]string, key string) string {
	if v, ok := headers[key]; ok {
		return strings.TrimSpace(v)
	}
	for k, v := range headers {
		if strings.EqualFold(k, key) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func normalizePath(p string) string {
	p = strings.TrimRight(strings.TrimSpace(p), "/")
	if p == "" {
		return "/"
	}
	return strings.ToLower(p)
}
