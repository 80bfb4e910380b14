package app

import (
	"gorm.io/gorm"

	"github.com/mand0ng/fitness-app-backend/internal/data/aggregates"
	"github.com/mand0ng/fitness-app-backend/internal/data/repos/programs"
	"github.com/mand0ng/fitness-app-backend/internal/data/repos/users"
	"github.com/mand0ng/fitness-app-backend/internal/platform/logger"
)

type Repos struct {
	Tx      aggregates.TxRunner
	User    users.UserRepo
	Program programs.ProgramRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Tx:      aggregates.NewGormTxRunner(db),
		User:    users.NewUserRepo(db, log),
		Program: programs.NewProgramRepo(db, log),
	}
}
