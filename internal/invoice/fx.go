package invoice

import (
	"github.com/smallbiznis/salesinvoice/internal/invoice/render"
	"github.com/smallbiznis/salesinvoice/internal/invoice/repository"
	"github.com/smallbiznis/salesinvoice/internal/invoice/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invoice.service",
	fx.Provide(repository.Provide),
	fx.Provide(render.NewRenderer),
	fx.Provide(service.New),
)
