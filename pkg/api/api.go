package api

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/pprof"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
	"sigs.k8s.io/external-dns/endpoint"

	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/netguru/dotty-dns/internal/healthscan"
	"github.com/netguru/dotty-dns/internal/model"
)

type Api interface {
	Listen(port string) error
	Test(req *http.Request, msTimeout ...int) (resp *http.Response, err error)
}

type api struct {
	logger *zap.Logger
	app    *fiber.App
}

func (a api) Test(req *http.Request, msTimeout ...int) (resp *http.Response, err error) {
	return a.app.Test(req, msTimeout...)
}

func (a api) Listen(address string) error {
	go func() {
		listenAddress := address

		// If the address starts with "localhost:", replace it with ":" to bind to all interfaces
		if strings.HasPrefix(address, "localhost:") {
			listenAddress = ":" + strings.Split(address, ":")[1]
			a.logger.Info("Changed listen address from localhost to all interfaces",
				zap.String("original", address),
				zap.String("new", listenAddress))
		} else if !strings.Contains(address, ":") {
			// If no colon, assume it's just a port number
			listenAddress = ":" + address
		}

		a.logger.Info("Starting server", zap.String("address", listenAddress))
		if err := a.app.Listen(listenAddress); err != nil {
			a.logger.Fatal("Error starting the server", zap.Error(err))
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	sig := <-sigCh

	a.logger.Info("shutting down server due to received signal", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	err := a.app.ShutdownWithContext(ctx)
	if err != nil {
		a.logger.Error("error shutting down server", zap.Error(err))
	}
	return err
}

// CommandService runs Dotty commands and reads their history.
type CommandService interface {
	ExecuteCommand(ctx context.Context, identity *model.Identity, command, domain string) (*model.CommandResult, error)
	ListHistory(ctx context.Context, identity *model.Identity, domain string, limit int) ([]*model.HistoryEntry, error)
}

// HealthScanner analyzes a domain's records.
type HealthScanner interface {
	Scan(ctx context.Context, identity *model.Identity, domain string) (*healthscan.Report, error)
}

// TokenVerifier turns a bearer token into a caller identity.
type TokenVerifier interface {
	Verify(token string) (model.Identity, error)
}

// DomainFilterProvider exposes the configured domain allow-list.
type DomainFilterProvider interface {
	GetDomainFilter() endpoint.DomainFilter
}

// Services bundles the collaborators the HTTP surface dispatches to.
type Services struct {
	Commands     CommandService
	Scanner      HealthScanner
	Verifier     TokenVerifier
	DomainFilter DomainFilterProvider
}

type Options struct {
	// EnablePprof mounts the profiling handlers under /pprof.
	EnablePprof bool
}

type handlers struct {
	logger *zap.Logger
	Services
}

func New(logger *zap.Logger, services Services, opts Options) Api {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          6 * time.Minute,
		IdleTimeout:           120 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if e, ok := err.(*fiber.Error); ok {
				logger.Warn("Request rejected",
					zap.Int("code", e.Code),
					zap.String("path", c.Path()),
					zap.String("method", c.Method()))
				return c.Status(e.Code).JSON(errorResponse{Error: errorBody{
					Status:  statusForCode(e.Code),
					Message: e.Message,
				}})
			}
			logger.Error("Unhandled error in request",
				zap.Error(err),
				zap.String("path", c.Path()),
				zap.String("method", c.Method()),
				zap.String("ip", c.IP()))
			return writeError(c, err)
		},
	})

	h := handlers{logger: logger, Services: services}

	// Public health endpoint (no auth required)
	app.Get("/healthz", h.Health)

	// Global middleware
	app.Use(requestid.New())
	app.Use(fiberlogger.New())
	if opts.EnablePprof {
		app.Use(pprof.New(pprof.Config{Prefix: "/pprof"}))
	}
	app.Use(fiberrecover.New())
	app.Use(helmet.New())

	v1 := app.Group("/v1", h.authenticate)
	v1.Post("/commands", h.ExecuteCommand)
	v1.Get("/history", h.ListHistory)
	v1.Post("/scans", h.RunHealthScan)
	v1.Get("/domain-filter", h.GetDomainFilter)

	return &api{
		logger: logger,
		app:    app,
	}
}

func (h handlers) logCall(ctx *fiber.Ctx, name string) {
	h.logger.Info(name+" endpoint called",
		zap.String("remote_ip", ctx.IP()),
		zap.String("method", ctx.Method()),
		zap.String("path", ctx.Path()),
		zap.String("user_agent", string(ctx.Request().Header.UserAgent())),
		zap.String("request_id", ctx.GetRespHeader(fiber.HeaderXRequestID, "-")))
}
