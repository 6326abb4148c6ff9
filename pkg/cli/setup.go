package cli

import (
	"context"

	"github.com/hotelops/intervention/pkg/cli/config"
	"github.com/hotelops/intervention/pkg/domain/interfaces"
	"github.com/hotelops/intervention/pkg/domain/model"
	"github.com/hotelops/intervention/pkg/usecase"
	"github.com/hotelops/intervention/pkg/utils/safe"
	"github.com/m-mizutani/goerr/v2"
)

// runtime bundles what every command needs to reach the stores
type runtime struct {
	repo           interfaces.Repository
	registry       *model.EstablishmentRegistry
	uc             *usecase.UseCases
	closeFunctions []func()
}

func (rt *runtime) Close() {
	for i := len(rt.closeFunctions) - 1; i >= 0; i-- {
		rt.closeFunctions[i]()
	}
}

// newRuntime opens the repository and loads the establishment catalog.
// The broker is optional; nil disables publishing.
func newRuntime(ctx context.Context, repoCfg *config.Repository, estCfg *config.Establishment, brokerCfg *config.Broker) (*runtime, error) {
	registry, err := estCfg.Configure()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load establishment catalog")
	}

	repo, err := repoCfg.Configure(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize repository")
	}

	rt := &runtime{
		repo:     repo,
		registry: registry,
	}
	rt.closeFunctions = append(rt.closeFunctions, func() { safe.Close(ctx, repo) })

	opts := []usecase.Option{usecase.WithEstablishments(registry)}
	if brokerCfg != nil {
		pub, err := brokerCfg.Configure()
		if err != nil {
			rt.Close()
			return nil, err
		}
		if pub != nil {
			opts = append(opts, usecase.WithPublisher(pub))
			rt.closeFunctions = append(rt.closeFunctions, func() { safe.Close(ctx, pub) })
		}
	}

	rt.uc = usecase.New(repo, opts...)
	return rt, nil
}
