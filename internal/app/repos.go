package app

import (
	"gorm.io/gorm"

	userrepo "github.com/yungbote/healthyback-backend/internal/data/repos/user"
	"github.com/yungbote/healthyback-backend/internal/platform/logger"
)

type Repos struct {
	User userrepo.UserRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User: userrepo.NewUserRepo(db, log),
	}
}
