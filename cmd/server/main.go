package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/yourorg/payment-router/internal/circuitbreaker"
	"github.com/yourorg/payment-router/internal/config"
	"github.com/yourorg/payment-router/internal/fee"
	"github.com/yourorg/payment-router/internal/monitor"
	"github.com/yourorg/payment-router/internal/orchestrator"
	"github.com/yourorg/payment-router/internal/payment"
	"github.com/yourorg/payment-router/internal/provider"
	"github.com/yourorg/payment-router/internal/provider/fastpay"
	"github.com/yourorg/payment-router/internal/provider/securepay"
	"github.com/yourorg/payment-router/internal/provider/transport"
	"github.com/yourorg/payment-router/internal/reporting"
	"github.com/yourorg/payment-router/internal/routing"
)

// Non-standard status nginx popularized for clients that disconnected
// before the response was ready.
const statusClientClosedRequest = 499

type server struct {
	orch     *orchestrator.Orchestrator
	contract *monitor.ContractMonitor
	recorder *reporting.Recorder
	logger   zerolog.Logger
}

func (s *server) processPaymentHandler(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read request body"})
		return
	}

	valid, violations, err := s.contract.Validate(body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON payload"})
		return
	}
	if !valid {
		c.JSON(http.StatusBadRequest, gin.H{"error": monitor.FormatErrors(violations)})
		return
	}

	var req payment.Request
	if err := json.Unmarshal(body, &req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request format: " + err.Error()})
		return
	}

	resp, err := s.orch.Process(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			c.Status(statusClientClosedRequest)
			return
		}
		if errors.Is(err, context.DeadlineExceeded) {
			c.JSON(http.StatusGatewayTimeout, gin.H{"error": "payment processing deadline exceeded"})
			return
		}
		s.logger.Error().Err(err).Msg("payment processing failed with a non-provider error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal configuration error"})
		return
	}

	s.recorder.Record(resp, req.Currency)
	// Exhausted providers are a business-level failure, still HTTP 200.
	c.JSON(http.StatusOK, resp)
}

func (s *server) retrospectiveHandler(c *gin.Context) {
	c.JSON(http.StatusOK, s.recorder.Retrospective())
}

func setupRouter(s *server) *gin.Engine {
	router := gin.Default()
	router.Use(otelgin.Middleware("payment-router"))
	router.POST("/payments", s.processPaymentHandler)
	router.GET("/reports/retrospective", s.retrospectiveHandler)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return router
}

func initTracer() (*sdktrace.TracerProvider, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, err
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(exporter))
	otel.SetTracerProvider(tp)
	return tp, nil
}

func buildServer(cfg config.Config, logger zerolog.Logger) (*server, error) {
	breaker := circuitbreaker.New()
	client := transport.NewClient(breaker)

	// Registration order is the fallback order among non-preferred
	// providers.
	registry, err := provider.NewRegistry(
		fastpay.New(fastpay.Config{BaseURL: cfg.FastPay.BaseURL, APIKey: cfg.FastPay.APIKey}, client),
		securepay.New(securepay.Config{BaseURL: cfg.SecurePay.BaseURL, APIKey: cfg.SecurePay.APIKey}, client),
	)
	if err != nil {
		return nil, err
	}

	contract, err := monitor.NewContractMonitor()
	if err != nil {
		return nil, err
	}

	orch := orchestrator.New(
		registry,
		routing.DefaultPolicy(),
		fee.NewCalculator(fee.DefaultSchedules()),
		payment.NewSequence(),
		logger,
	)
	return &server{
		orch:     orch,
		contract: contract,
		recorder: reporting.NewRecorder(),
		logger:   logger,
	}, nil
}

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	tp, err := initTracer()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize tracer")
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Error().Err(err).Msg("tracer shutdown failed")
		}
	}()

	cfg := config.Load()
	srv, err := buildServer(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build server")
	}

	if cfg.FastPay.BaseURL == "" {
		logger.Info().Msg("FastPay has no endpoint configured, running in simulation mode")
	}
	if cfg.SecurePay.BaseURL == "" {
		logger.Info().Msg("SecurePay has no endpoint configured, running in simulation mode")
	}

	router := setupRouter(srv)
	logger.Info().Str("port", cfg.Port).Msg("starting payment router")
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
}
