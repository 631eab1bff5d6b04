package main

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/atelier-ops/projectflow/config"
	"github.com/atelier-ops/projectflow/internal/bootstrap"
	"github.com/atelier-ops/projectflow/internal/googledrive"
	"github.com/atelier-ops/projectflow/internal/webhook"
	"github.com/atelier-ops/projectflow/internal/workspace"
)

const serviceName = "projectflow"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	bootstrap.SetGinMode(cfg.App.Environment)

	if cfg.App.Debug {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}

	ctx := context.Background()

	tokenSource, err := googledrive.NewTokenSource(cfg.Drive.ServiceAccountJSON)
	if err != nil {
		log.Fatalf("drive auth: %v", err)
	}

	driveSvc, err := googledrive.NewService(ctx, tokenSource)
	if err != nil {
		log.Fatalf("drive service: %v", err)
	}

	limiter := googledrive.NewDriveLimiter()

	brandRoots := cfg.Drive.BrandRootIDs
	if len(brandRoots) == 0 {
		brandRoots = []string{cfg.Drive.RootFolderID}
	}
	resolver := googledrive.NewBrandResolver(driveSvc, brandRoots, cfg.Drive.BrandSearchDepth, limiter)
	provisioner := googledrive.NewProvisioner(driveSvc, cfg.Drive.RootFolderID, resolver, limiter)

	wsClient := workspace.NewClient(workspace.ClientConfig{
		BaseURL:           cfg.Workspace.BaseURL,
		Token:             cfg.Workspace.Token,
		TitleProperty:     cfg.Workspace.TitleProperty,
		FolderURLProperty: cfg.Workspace.FolderURLProperty,
	})

	sequencer := workspace.NewSequencer(
		wsClient,
		workspace.Strategy(cfg.Workspace.SequenceStrategy),
		cfg.Workspace.ProjectsDatabaseID,
		cfg.Workspace.SequenceRollup,
	)

	var store *redis.Client
	if cfg.Redis.Addr != "" {
		store = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	}
	guard := webhook.NewIdempotencyGuard(store, time.Duration(cfg.Redis.IdempotencyTTL)*time.Hour)

	service := webhook.NewService(webhook.ServiceConfig{
		Workspace:       wsClient,
		Sequencer:       sequencer,
		Provisioner:     provisioner,
		Guard:           guard,
		ClientRelation:  cfg.Workspace.ClientRelation,
		ClientNameProp:  cfg.Workspace.ClientNameProperty,
		TemplateBlockID: cfg.Workspace.TemplateBlockID,
	})

	r := bootstrap.BuildRouter(bootstrap.RouterDeps{
		ServiceName:    serviceName,
		Version:        cfg.App.Version,
		WebhookSecret:  cfg.Server.WebhookSecret,
		Store:          store,
		WebhookHandler: webhook.NewHandler(service),
	})

	log.Printf("listening on :%s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatal(err)
	}
}
