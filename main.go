package main

import (
	"log"

	api "lifehub-backend/cmd/api"
	authdomain "lifehub-backend/internal/auth/domain"
	authRepo "lifehub-backend/internal/auth/repository"
	authUsecase "lifehub-backend/internal/auth/usecase"
	recorddomain "lifehub-backend/internal/record/domain"
	recordRepo "lifehub-backend/internal/record/repository"
	recordUsecase "lifehub-backend/internal/record/usecase"
	syncdomain "lifehub-backend/internal/sync/domain"
	syncRepo "lifehub-backend/internal/sync/repository"
	syncUsecase "lifehub-backend/internal/sync/usecase"
	"lifehub-backend/internal/sync/workspace"
	"lifehub-backend/pkg/config"
	"lifehub-backend/pkg/database"
	"lifehub-backend/pkg/notion"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(
		&authdomain.User{},
		&authdomain.RefreshToken{},
		&recorddomain.Record{},
		&syncdomain.SyncStatus{},
		&syncdomain.WorkspaceConnection{},
		&syncdomain.CollectionLink{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	userRepository := authRepo.NewUserRepository(db)
	recordRepository := recordRepo.NewGormRecordRepository(db)
	statusRepository := syncRepo.NewGormSyncStatusRepository(db)
	connectionRepository := syncRepo.NewGormConnectionRepository(db)

	// Initialize Notion client and adapter
	notionClient := notion.NewClient(notion.ClientOptions{
		BaseURL:   cfg.NotionBaseURL,
		UserAgent: "lifehub-backend",
	})
	notionSource := workspace.NewNotionSource(notionClient, cfg.SyncPageSize)

	// Initialize use cases (dependency injection)
	authUsecaseInstance := authUsecase.NewAuthUsecase(userRepository, cfg)
	recordUsecaseInstance := recordUsecase.NewRecordUsecase(recordRepository)
	syncUsecaseInstance := syncUsecase.NewSyncUsecase(
		recordRepository,
		statusRepository,
		connectionRepository,
		notionSource,
		notionSource,
		cfg.SyncCollectionDelay,
	)

	// Initialize HTTP handler
	handler := api.NewHandler(authUsecaseInstance, recordUsecaseInstance, syncUsecaseInstance, cfg)

	// Start server
	log.Printf("Server starting on port %s", cfg.Port)
	if err := handler.Start(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
