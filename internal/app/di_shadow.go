package app

import (
	"database/sql"

	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/identifier"
	"github.com/gravinawill/starsoft-backend-challenge-sub001/internal/operation"
	shadowRepository "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/shadow/repository"
	shadowUsecase "github.com/gravinawill/starsoft-backend-challenge-sub001/internal/shadow/usecase"
)

// shadow returns the local copy table of model owned by one service, and the use case
// that fills it from account events.
func (c *Container) shadow(
	executor *operation.Executor,
	db *sql.DB,
	table string,
	model identifier.Model,
) (*shadowRepository.PostgreSQLShadowRepository, *shadowUsecase.CreateShadow) {
	repo := shadowRepository.NewPostgreSQLShadowRepository(db, table, model)
	return repo, shadowUsecase.NewCreateShadow(executor, repo, model)
}
