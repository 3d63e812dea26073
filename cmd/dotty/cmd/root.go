package cmd

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"sigs.k8s.io/external-dns/endpoint"

	"github.com/netguru/dotty-dns/internal/auth"
	"github.com/netguru/dotty-dns/internal/cloudflareprovider"
	"github.com/netguru/dotty-dns/internal/command"
	"github.com/netguru/dotty-dns/internal/executor"
	"github.com/netguru/dotty-dns/internal/gemini"
	"github.com/netguru/dotty-dns/internal/healthscan"
	"github.com/netguru/dotty-dns/internal/planner"
	"github.com/netguru/dotty-dns/pkg/api"
)

var (
	listenAddress      string
	cloudflareAPIToken string
	cloudflareAPIKey   string
	cloudflareEmail    string
	cloudflareBaseURL  string
	geminiAPIKey       string
	geminiModel        string
	authJWTSecret      string
	authPublicKeyFile  string
	authIssuer         string
	authAudience       string
	authLeeway         time.Duration
	dbURL              string
	domainFilter       []string
	commandTimeout     time.Duration
	defaultTTL         int
	serializeDomains   bool
	dryRun             bool
	enablePprof        bool
	logLevel           string
)

var rootCmd = &cobra.Command{
	Use:   "dotty",
	Short: "Natural-language DNS management service",
	Long:  "Dotty turns plain-language commands into Cloudflare DNS record changes, planned by Gemini and recorded in a command history",
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := getLogger()
		defer func() {
			if err := logger.Sync(); err != nil {
				fmt.Printf("Failed to sync logger: %v\n", err)
			}
		}()
		return run(cmd.Context(), logger)
	},
	SilenceUsage: true,
}

func run(ctx context.Context, logger *zap.Logger) error {
	provider, err := cloudflareprovider.NewCloudflareDNSProvider(
		logger.With(zap.String("component", "cloudflareprovider")),
		cloudflareprovider.Config{
			APIToken:     cloudflareAPIToken,
			APIKey:       cloudflareAPIKey,
			Email:        cloudflareEmail,
			BaseURL:      cloudflareBaseURL,
			DomainFilter: endpoint.DomainFilter{Filters: domainFilter},
			DryRun:       dryRun,
			TTL:          defaultTTL,
		},
	)
	if err != nil {
		logger.Error("Failed to initialize Cloudflare provider", zap.Error(err))
		return err
	}

	var model planner.Model
	geminiClient, err := gemini.New(ctx, logger.With(zap.String("component", "gemini")), gemini.Config{
		APIKey: geminiAPIKey,
		Model:  geminiModel,
	})
	if err != nil {
		// Commands and scans fail with a configuration error until a key is set.
		logger.Error("Language model is not available", zap.Error(err), zap.String("hint", "set GEMINI_API_KEY"))
	} else {
		model = geminiClient
		defer geminiClient.Close()
	}

	var verifier api.TokenVerifier
	v, err := auth.NewVerifier(auth.Config{
		HMACSecret:    authJWTSecret,
		PublicKeyFile: authPublicKeyFile,
		Issuer:        authIssuer,
		Audience:      authAudience,
		Leeway:        authLeeway,
	})
	if err != nil {
		logger.Error("Token verification is not available, authenticated routes will fail", zap.Error(err))
	} else {
		verifier = v
	}

	store, err := buildHistoryStore(dbURL)
	if err != nil {
		logger.Error("Failed to open command history store", zap.String("db_url", dbURL), zap.Error(err))
		return err
	}

	orchestrator := command.New(
		logger.With(zap.String("component", "command")),
		provider,
		planner.New(logger.With(zap.String("component", "planner")), model),
		executor.New(logger.With(zap.String("component", "executor")), provider, defaultTTL),
		store,
		command.Config{Timeout: commandTimeout, SerializeDomains: serializeDomains},
	)
	scanner := healthscan.New(logger.With(zap.String("component", "healthscan")), orchestrator, provider, model)

	app := api.New(logger.With(zap.String("component", "api")), api.Services{
		Commands:     orchestrator,
		Scanner:      scanner,
		Verifier:     verifier,
		DomainFilter: provider,
	}, api.Options{EnablePprof: enablePprof})

	logger.Info("Starting Dotty server",
		zap.String("address", listenAddress),
		zap.Bool("dry_run", dryRun),
		zap.Strings("domain_filter", domainFilter))
	return app.Listen(listenAddress)
}

// getLogger creates a new logger with the configured log level
func getLogger() *zap.Logger {
	cfg := zap.Config{
		Level:             zap.NewAtomicLevelAt(getZapLogLevel()),
		Development:       false,
		DisableCaller:     false,
		DisableStacktrace: false,
		Encoding:          "json",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "time",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			FunctionKey:    zapcore.OmitKey,
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.StringDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := cfg.Build()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	logger.Info("Logger initialized", zap.String("level", logLevel))
	return logger
}

// getZapLogLevel converts the string log level to a zap log level
func getZapLogLevel() zapcore.Level {
	switch strings.ToLower(logLevel) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// Execute executes the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	f := rootCmd.PersistentFlags()
	f.StringVar(&listenAddress, "listen-address", ":8080", "The address to listen on for HTTP requests")
	f.StringVar(&cloudflareAPIToken, "cloudflare-api-token", "", "Cloudflare API token")
	f.StringVar(&cloudflareAPIKey, "cloudflare-api-key", "", "Cloudflare global API key, used with --cloudflare-email")
	f.StringVar(&cloudflareEmail, "cloudflare-email", "", "Cloudflare account email for the global API key")
	f.StringVar(&cloudflareBaseURL, "cloudflare-base-url", "", "Override the Cloudflare API base URL")
	f.StringVar(&geminiAPIKey, "gemini-api-key", "", "Gemini API key")
	f.StringVar(&geminiModel, "gemini-model", gemini.DefaultModel, "Gemini model name")
	f.StringVar(&authJWTSecret, "auth-jwt-secret", "", "HS256 secret for caller tokens")
	f.StringVar(&authPublicKeyFile, "auth-jwt-public-key-file", "", "PEM RSA public key for RS256 caller tokens")
	f.StringVar(&authIssuer, "auth-issuer", "", "Required token issuer")
	f.StringVar(&authAudience, "auth-audience", "", "Required token audience")
	f.DurationVar(&authLeeway, "auth-leeway", auth.DefaultLeeway, "Clock skew tolerated when validating tokens")
	f.StringVar(&dbURL, "db-url", "sqlite:./dotty.db", "Command history store (sqlite:<dsn> or memory:)")
	f.StringSliceVar(&domainFilter, "domain-filter", []string{}, "Filter domain names to manage")
	f.DurationVar(&commandTimeout, "command-timeout", command.DefaultTimeout, "Upper bound for one command")
	f.IntVar(&defaultTTL, "default-ttl", executor.DefaultTTL, "TTL used when a planned record has none")
	f.BoolVar(&serializeDomains, "serialize-domains", true, "Run commands for the same domain one at a time")
	f.BoolVar(&dryRun, "dry-run", false, "If true, only log the changes that would be made")
	f.BoolVar(&enablePprof, "enable-pprof", false, "Serve profiling handlers under /pprof")
	f.StringVar(&logLevel, "log-level", "info", "The log level to use (debug, info, warn, error)")
}

// envAliases maps flags to the unprefixed variable names operators already use.
var envAliases = map[string]string{
	"cloudflare-api-token": "CLOUDFLARE_API_TOKEN",
	"cloudflare-api-key":   "CLOUDFLARE_API_KEY",
	"cloudflare-email":     "CLOUDFLARE_EMAIL",
	"cloudflare-base-url":  "CLOUDFLARE_BASE_URL",
	"gemini-api-key":       "GEMINI_API_KEY",
	"gemini-model":         "GEMINI_MODEL",
	"auth-jwt-secret":      "AUTH_JWT_SECRET",
	"db-url":               "DB_URL",
	"domain-filter":        "DOMAIN_FILTER",
	"dry-run":              "DRY_RUN",
	"log-level":            "LOG_LEVEL",
}

func initConfig() {
	// Load environment variables from .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Printf("Note: .env file not found, using environment variables")
	} else {
		log.Printf("Loaded configuration from .env file")
	}

	// DOTTY_<FLAG> works for every flag, aliases for the common ones
	viper.SetEnvPrefix("DOTTY")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	for flag, env := range envAliases {
		if err := viper.BindEnv(flag, "DOTTY_"+strings.ToUpper(strings.ReplaceAll(flag, "-", "_")), env); err != nil {
			log.Printf("Warning: Failed to bind %s: %v", env, err)
		}
	}

	if port := os.Getenv("DOTTY_LISTEN_ADDRESS_PORT"); port != "" {
		viper.Set("listen-address", ":"+port)
	}

	// Bind viper environment variables to flags
	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		if !f.Changed && viper.IsSet(f.Name) {
			val := viper.GetString(f.Name)
			if err := rootCmd.PersistentFlags().Set(f.Name, val); err != nil {
				log.Printf("Warning: Failed to set flag %s from environment variable: %v", f.Name, err)
			}
		}
	})
}
