package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/healthyback-backend/internal/data/store"
	"github.com/yungbote/healthyback-backend/internal/platform/logger"
	"github.com/yungbote/healthyback-backend/internal/services"
	"github.com/yungbote/healthyback-backend/internal/userdata"
)

type Services struct {
	Auth services.AuthService
	Sync services.SyncService

	// Resolver is exposed so shutdown can drain in-flight migration writes.
	Resolver *userdata.Resolver
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos) (Services, error) {
	log.Info("Wiring services...")

	recordStore := store.NewGormStore(db, log)
	verifier := userdata.NewVerifier(recordStore, log)
	resolver := userdata.NewResolver(recordStore, verifier, log, nil)

	locker, err := services.NewWriteLocker(log)
	if err != nil {
		return Services{}, fmt.Errorf("init write locker: %w", err)
	}

	return Services{
		Auth:     services.NewAuthService(log, repos.User, cfg.JWTSecretKey, cfg.AccessTokenTTL),
		Sync:     services.NewSyncService(log, resolver, verifier, locker),
		Resolver: resolver,
	}, nil
}
