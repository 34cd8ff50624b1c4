package discount

import (
	"github.com/smallbiznis/salesinvoice/internal/discount/repository"
	"github.com/smallbiznis/salesinvoice/internal/discount/service"
	"go.uber.org/fx"
)

var Module = fx.Module("discount.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Provide(service.NewResolver),
)
