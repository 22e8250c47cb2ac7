package main

import (
	"fmt"
	"log"

	"meibo/internal/config"
	"meibo/internal/domain"
	emailnoop "meibo/internal/email/noop"
	emailses "meibo/internal/email/ses"
	"meibo/internal/handler"
	"meibo/internal/parser"
	"meibo/internal/port"
	"meibo/internal/recon"
	"meibo/internal/repository/postgres"
	"meibo/internal/router"
	"meibo/internal/service"
	s3storage "meibo/internal/storage/s3"

	// Register parser providers.
	_ "meibo/internal/parser/claude"
	_ "meibo/internal/parser/openai"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Initialize repositories
	batchRepo := postgres.NewBatchRepo(db)

	// Initialize storage
	s3Client, err := s3storage.NewS3Client(&cfg.S3)
	if err != nil {
		return fmt.Errorf("failed to initialize S3 client: %w", err)
	}

	// Initialize document parser, with fallback when a secondary is configured
	docParser, err := buildParser(&cfg.Parser)
	if err != nil {
		return fmt.Errorf("failed to initialize document parser: %w", err)
	}

	// Initialize email sender
	emailSender, err := buildEmailSender(&cfg.Email)
	if err != nil {
		return fmt.Errorf("failed to initialize email sender: %w", err)
	}

	schema := domain.DefaultFieldSchema()
	engine := recon.New(schema)

	// Initialize services
	extractSvc := service.NewExtractService(docParser, schema, cfg.Extract.Concurrency)
	scanSvc := service.NewScanService(s3Client, &cfg.S3)
	sessionSvc := service.NewSessionService(
		engine, extractSvc, scanSvc, batchRepo, emailSender, cfg.Email, cfg.Extract.MaxFiles,
	)

	// Initialize handlers
	batchH := handler.NewBatchHandler(sessionSvc, batchRepo, engine, schema)
	healthH := handler.NewHealthHandler(db)

	// Setup router
	r := router.Setup(cfg.CORS.AllowedOrigins, batchH, healthH)

	log.Printf("Server starting on %s", cfg.Server.Port)
	if err := r.Run(cfg.Server.Port); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	return nil
}

// buildParser constructs the document parser from config. With only a primary
// provider configured it is used directly; a secondary provider wraps both in
// a FallbackParser.
func buildParser(cfg *config.ParserConfig) (port.DocumentParser, error) {
	primaryCfg := cfg.PrimaryConfig()
	primary, err := parser.NewParser(primaryCfg)
	if err != nil {
		return nil, err
	}

	secondaryCfg := cfg.SecondaryConfig()
	if secondaryCfg == nil {
		return primary, nil
	}

	secondary, err := parser.NewParser(secondaryCfg)
	if err != nil {
		return nil, err
	}

	return parser.NewFallbackParser(
		[]port.DocumentParser{primary, secondary},
		[]string{primaryCfg.Provider, secondaryCfg.Provider},
	), nil
}

func buildEmailSender(cfg *config.EmailConfig) (port.EmailSender, error) {
	switch cfg.Provider {
	case "ses":
		return emailses.NewSESSender(cfg.Region, cfg.FromAddress, cfg.FromName)
	default:
		return emailnoop.NewNoopSender(), nil
	}
}
