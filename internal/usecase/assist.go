package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"unicode/utf8"

	"intake-triage/internal/crisis"
	"intake-triage/internal/domain"
	"intake-triage/internal/integrations/openai"
	"intake-triage/internal/integrations/paramstore"
	"intake-triage/internal/triage"
)

const (
	defaultMaxContext = 20
	defaultModel      = "gpt-4o-mini"
)

type ParamGetter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

type LLMClient interface {
	Chat(ctx context.Context, model string, messages []domain.ChatMessage) (string, error)
	Moderate(ctx context.Context, input string) (openai.Moderation, error)
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

// AssistService forwards a free-text conversation to the completion
// service. It keeps no conversation state of its own.
type AssistService struct {
	params          ParamGetter
	llm             LLMClient
	logger          *slog.Logger
	paramPrefix     string
	maxContextItems int
	maxMessageLen   int

	cacheMu     sync.RWMutex
	cacheLoaded bool
	openaiModel string
}

type AssistInput struct {
	Messages []domain.ChatMessage
	Topic    string
	Language string
}

type AssistOutput struct {
	Response string
}

func NewAssistService(p ParamGetter, llm LLMClient, logger *slog.Logger, paramPrefix string, maxContextItems, maxMessageLen int) (*AssistService, error) {
	if p == nil {
		return nil, errors.New("usecase: param getter must not be nil")
	}
	if llm == nil {
		return nil, errors.New("usecase: llm client must not be nil")
	}
	paramPrefix = strings.TrimRight(strings.TrimSpace(paramPrefix), "/")
	if paramPrefix == "" {
		return nil, errors.New("usecase: parameter prefix must not be empty")
	}
	if logger == nil {
		logger = slog.Default()
	}
	if maxContextItems <= 0 {
		maxContextItems = defaultMaxContext
	}
	if maxMessageLen <= 0 {
		maxMessageLen = defaultMaxMessage
	}
	return &AssistService{
		params:          p,
		llm:             llm,
		logger:          logger,
		paramPrefix:     paramPrefix,
		maxContextItems: maxContextItems,
		maxMessageLen:   maxMessageLen,
	}, nil
}

func (s *AssistService) Assist(ctx context.Context, in AssistInput) (AssistOutput, error) {
	history, err := s.validate(in.Messages)
	if err != nil {
		return AssistOutput{}, err
	}
	if err := s.ensureConfig(ctx); err != nil {
		return AssistOutput{}, newError(ErrorInternal, "ssm_load_error", err)
	}
	lang := domain.ParseLanguage(in.Language)
	last := history[len(history)-1].Content

	mod, err := s.llm.Moderate(ctx, last)
	if err != nil {
		return AssistOutput{}, upstreamError("moderation", err)
	}
	if mod.Flagged {
		s.logger.InfoContext(ctx, "assistant input flagged", "categories", mod.Categories)
	}

	answer, err := s.llm.Chat(ctx, s.openaiModel, buildAssistMessages(lang, domain.Topic(strings.TrimSpace(in.Topic)), history))
	if err != nil {
		return AssistOutput{}, upstreamError("openai", err)
	}
	if mod.Flagged || crisis.Detect(last) {
		answer = triage.CrisisNotice(lang) + "\n\n" + answer
	}
	return AssistOutput{Response: answer}, nil
}

// validate checks every message and returns the trailing window that is
// forwarded upstream.
func (s *AssistService) validate(msgs []domain.ChatMessage) ([]domain.ChatMessage, error) {
	if len(msgs) == 0 {
		return nil, newError(ErrorInvalidInput, "empty_messages", nil)
	}
	out := make([]domain.ChatMessage, 0, len(msgs))
	for _, m := range msgs {
		role := strings.ToLower(strings.TrimSpace(m.Role))
		if role != domain.RoleUser && role != domain.RoleAssistant {
			return nil, newError(ErrorInvalidInput, "invalid_role", nil)
		}
		content := strings.TrimSpace(m.Content)
		if content == "" {
			return nil, newError(ErrorInvalidInput, "empty_message", nil)
		}
		if utf8.RuneCountInString(content) > s.maxMessageLen {
			return nil, newError(ErrorInvalidInput, "message_too_long", nil)
		}
		out = append(out, domain.ChatMessage{Role: role, Content: content})
	}
	if out[len(out)-1].Role != domain.RoleUser {
		return nil, newError(ErrorInvalidInput, "last_message_not_user", nil)
	}
	if len(out) > s.maxContextItems {
		out = out[len(out)-s.maxContextItems:]
	}
	return out, nil
}

func (s *AssistService) ensureConfig(ctx context.Context) error {
	s.cacheMu.RLock()
	if s.cacheLoaded {
		s.cacheMu.RUnlock()
		return nil
	}
	s.cacheMu.RUnlock()

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if s.cacheLoaded {
		return nil
	}

	model, err := s.params.GetParameter(ctx, s.paramPrefix+"/config/openai_model")
	switch {
	case errors.Is(err, paramstore.ErrNotFound):
		model = defaultModel
	case err != nil:
		return fmt.Errorf("usecase: load openai model: %w", err)
	}
	model = strings.TrimSpace(model)
	if model == "" {
		model = defaultModel
	}

	s.openaiModel = model
	s.cacheLoaded = true
	return nil
}

func upstreamError(source string, err error) *Error {
	if status, ok := upstreamStatusCode(err); ok && status == http.StatusTooManyRequests {
		return newError(ErrorRateLimited, source+"_rate_limited", err)
	}
	return newError(ErrorAssistantUnavailable, source+"_error", err)
}

func upstreamStatusCode(err error) (int, bool) {
	var statusErr httpStatusCoder
	if !errors.As(err, &statusErr) {
		return 0, false
	}
	return statusErr.HTTPStatusCode(), true
}
