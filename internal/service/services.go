package service

import (
	"fmt"
	"log/slog"

	"github.com/jmylchreest/refyne-catalog/internal/config"
	"github.com/jmylchreest/refyne-catalog/internal/content"
	"github.com/jmylchreest/refyne-catalog/internal/images"
	"github.com/jmylchreest/refyne-catalog/internal/llm"
	"github.com/jmylchreest/refyne-catalog/internal/pipeline"
)

// Services holds all service instances.
type Services struct {
	Storage    *StorageService
	Conversion *ConversionService
	Pipeline   *pipeline.Pipeline
}

// NewServices creates all service instances.
func NewServices(cfg *config.Config, logger *slog.Logger) (*Services, error) {
	storageSvc, err := NewStorageService(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage service: %w", err)
	}

	gen, err := llm.New(cfg.LLM())
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM generator: %w", err)
	}
	describer := content.NewDescriber(gen, cfg.CopyLanguage, cfg.CopyStyle)

	scraper := images.NewScraper(images.ScraperConfig{
		UserAgent: cfg.UserAgent,
		Timeout:   cfg.FetchTimeout,
		Logger:    logger,
	})
	searcher := images.NewSearcher(images.SearcherConfig{
		URLTemplate: cfg.ImageSearchURL,
		UserAgent:   cfg.UserAgent,
		Timeout:     cfg.FetchTimeout,
	})
	if !searcher.Enabled() {
		logger.Info("image search disabled - no search URL configured")
	}
	resolver := images.NewResolver(scraper, searcher, logger)

	p := pipeline.New(describer, resolver, cfg.PipelineDefaults(), logger)

	logger.Info("services initialized",
		"llm_provider", cfg.LLMProvider,
		"image_policy", cfg.ImagePolicy,
		"concurrency", cfg.Concurrency,
		"archive", cfg.ArchiveOutputs,
	)

	return &Services{
		Storage:    storageSvc,
		Conversion: NewConversionService(p, storageSvc, cfg.ArchiveOutputs, logger),
		Pipeline:   p,
	}, nil
}
