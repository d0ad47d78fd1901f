package main

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"intake-triage/handler"
	"intake-triage/internal/catalog"
	"intake-triage/internal/integrations/openai"
	"intake-triage/internal/integrations/paramstore"
	"intake-triage/internal/repository"
	"intake-triage/internal/triage"
	"intake-triage/internal/usecase"
)

func main() {
	ctx := context.Background()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// ---- Configuration (read only here) ----
	paramPrefix := mustEnv("PARAM_PREFIX")
	eventTable := os.Getenv("EVENT_TABLE")
	catalogParam := os.Getenv("CATALOG_PARAM")
	allowedOrigins := splitList(os.Getenv("ALLOWED_ORIGINS"))
	maxContextItems := envInt("MAX_CONTEXT_ITEMS", 20)
	maxMessageLen := envInt("MAX_MESSAGE_LENGTH", 1000)

	// ---- AWS SDK config ----
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		slog.Error("failed to load AWS config", "err", err)
		os.Exit(1)
	}

	// ---- Clients ----
	ssmClient, err := paramstore.New(awsssm.NewFromConfig(cfg))
	if err != nil {
		slog.Error("failed to create SSM client", "err", err)
		os.Exit(1)
	}

	var events usecase.EventRecorder = repository.Noop{}
	if eventTable != "" {
		eventClient, err := repository.New(awsdynamodb.NewFromConfig(cfg), eventTable)
		if err != nil {
			slog.Error("failed to create event log client", "err", err)
			os.Exit(1)
		}
		events = eventClient
	} else {
		slog.Info("EVENT_TABLE not set; intake events are not recorded")
	}

	openaiClient, err := openai.NewClient(ssmClient, paramPrefix)
	if err != nil {
		slog.Error("failed to create OpenAI client", "err", err)
		os.Exit(1)
	}

	// ---- Referral catalog ----
	cat, err := loadCatalog(ctx, ssmClient, catalogParam)
	if err != nil {
		slog.Error("failed to load referral catalog", "param", catalogParam, "err", err)
		os.Exit(1)
	}
	machine, err := triage.New(cat)
	if err != nil {
		slog.Error("failed to create triage machine", "err", err)
		os.Exit(1)
	}

	// ---- Handler ----
	triageService, err := usecase.NewTriageService(machine, events, logger, maxMessageLen)
	if err != nil {
		slog.Error("failed to create triage service", "err", err)
		os.Exit(1)
	}
	assistService, err := usecase.NewAssistService(ssmClient, openaiClient, logger, paramPrefix, maxContextItems, maxMessageLen)
	if err != nil {
		slog.Error("failed to create assist service", "err", err)
		os.Exit(1)
	}

	h, err := handler.NewHandler(triageService, assistService, allowedOrigins, logger)
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}

// loadCatalog reads the catalog document from SSM when a parameter is
// configured and falls back to the embedded default otherwise.
func loadCatalog(ctx context.Context, ps *paramstore.Client, param string) (*catalog.Catalog, error) {
	if strings.TrimSpace(param) == "" {
		return catalog.Default()
	}
	doc, err := ps.GetDocument(ctx, param)
	if err != nil {
		return nil, err
	}
	return catalog.Parse(doc)
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		slog.Error("required environment variable is not set", "key", key)
		os.Exit(1)
	}
	return v
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
