package usecase

import (
	"github.com/x-xyz/goauction/base/ctx"
	"github.com/x-xyz/goauction/domain"
	hcdomain "github.com/x-xyz/goauction/domain/healthcheck"
)

type impl struct {
	repo hcdomain.HealthCheckRepo
}

// New creates a HealthCheckUsecase reporting any unreachable backing store
// as domain.ErrRepositoryUnavailable.
func New(repo hcdomain.HealthCheckRepo) hcdomain.HealthCheckUsecase {
	return &impl{
		repo: repo,
	}
}

func (im *impl) Check(context ctx.Ctx) error {
	return domain.NewRepositoryError("healthcheck.Check", im.repo.PingDB(context))
}
