package rafiq

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/futig/rafiq-frontend/internal/config"
	"github.com/futig/rafiq-frontend/internal/entity"
	"github.com/futig/rafiq-frontend/internal/integration/common"
	"github.com/futig/rafiq-frontend/internal/metrics"
	pkgRetry "github.com/futig/rafiq-frontend/internal/pkg/retry"
	pkghttp "github.com/futig/rafiq-frontend/pkg/http"
)

const (
	opIngest = "ingest"
	opChat   = "chat"
	opHealth = "health"
)

// Connector talks to the Rafiq-AI backend over its JSON endpoints
type Connector struct {
	config    config.RafiqConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.RafiqConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

// Ingest sends text (or a URL) to be indexed.
// POST {ingest_endpoint} {"text", "source_name", "url"?} -> {"indexed", "source"}
func (c *Connector) Ingest(ctx context.Context, req *entity.IngestRequest) (*entity.IngestResponse, error) {
	ctxzap.Info(ctx, "ingesting text in Rafiq-AI",
		zap.String("source_name", req.SourceName),
		zap.Int("text_length", len(req.Text)),
		zap.Bool("has_url", req.URL != ""),
	)

	resp, err := do[entity.IngestResponse](ctx, c, opIngest, http.MethodPost, c.config.IngestEndpoint, req)
	if err != nil {
		ctxzap.Error(ctx, "failed to ingest text", zap.Error(err))
		return nil, err
	}

	fields := []zap.Field{}
	if resp.Indexed != nil {
		fields = append(fields, zap.Int("indexed", *resp.Indexed))
	}
	ctxzap.Info(ctx, "text ingested successfully", fields...)
	return resp, nil
}

// Chat asks a question.
// POST {chat_endpoint} {"question"} -> {"answer"?, "sources"?}
func (c *Connector) Chat(ctx context.Context, req *entity.ChatRequest) (*entity.ChatResponse, error) {
	ctxzap.Info(ctx, "asking Rafiq-AI", zap.Int("question_length", len(req.Question)))

	resp, err := do[entity.ChatResponse](ctx, c, opChat, http.MethodPost, c.config.ChatEndpoint, req)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			ctxzap.Error(ctx, "failed to get answer", zap.Error(err))
		}
		return nil, err
	}

	ctxzap.Info(ctx, "answer received",
		zap.Bool("has_answer", resp.HasAnswer),
		zap.Bool("has_sources", resp.HasSources),
	)
	return resp, nil
}

// Health probes the backend root route
func (c *Connector) Health(ctx context.Context) (*entity.HealthResponse, error) {
	return do[entity.HealthResponse](ctx, c, opHealth, http.MethodGet, c.config.HealthEndpoint, nil)
}

func do[T any](ctx context.Context, c *Connector, op, method, endpoint string, body any) (*T, error) {
	done := metrics.ObserveBackend(op)

	resp, err := pkgRetry.Do(ctx, &c.config.Retry, func() (*T, error) {
		var out T
		err := c.connector.DoRequest(ctx, method, endpoint, body, &out,
			pkghttp.WithHeader(middleware.RequestIDHeader, middleware.GetReqID(ctx)),
		)
		if err != nil {
			if !retryable(err) {
				return nil, pkgRetry.Permanent(err)
			}
			return nil, err
		}
		return &out, nil
	}, func(n uint, err error) {
		ctxzap.Warn(ctx, "backend call failed, retrying",
			zap.String("operation", op),
			zap.Uint("attempt", n+1),
			zap.Error(err),
		)
	})

	done(err)
	return resp, err
}

// retryable reports whether another attempt could succeed: transport failures and 5xx.
func retryable(err error) bool {
	var httpErr *pkghttp.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode >= 500
	}

	var netErr *pkghttp.NetworkError
	return errors.As(err, &netErr)
}
