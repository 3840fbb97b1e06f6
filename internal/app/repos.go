package app

import (
	"gorm.io/gorm"

	repos "github.com/yungbote/sotfinder-backend/internal/data/repos/curriculum"
	savedRepos "github.com/yungbote/sotfinder-backend/internal/data/repos/savedlink"
	"github.com/yungbote/sotfinder-backend/internal/platform/logger"
)

type Repos struct {
	Curriculum repos.CurriculumRepo
	SavedLinks savedRepos.SavedLinkRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Curriculum: repos.NewCurriculumRepo(db, log),
		SavedLinks: savedRepos.NewSavedLinkRepo(db, log),
	}
}
