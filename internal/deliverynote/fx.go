package deliverynote

import (
	"github.com/smallbiznis/salesinvoice/internal/deliverynote/repository"
	"github.com/smallbiznis/salesinvoice/internal/deliverynote/service"
	"go.uber.org/fx"
)

var Module = fx.Module("deliverynote.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
