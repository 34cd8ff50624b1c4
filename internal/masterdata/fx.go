package masterdata

import (
	"github.com/smallbiznis/salesinvoice/internal/masterdata/repository"
	"github.com/smallbiznis/salesinvoice/internal/masterdata/service"
	"go.uber.org/fx"
)

var Module = fx.Module("masterdata.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
