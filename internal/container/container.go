package container

import (
	"github.com/nftbazaar/marketplace/internal/assets"
	"github.com/nftbazaar/marketplace/internal/config"
	"github.com/nftbazaar/marketplace/internal/elastic_search"
	"github.com/nftbazaar/marketplace/internal/indexer"
	"github.com/nftbazaar/marketplace/internal/market"
	"github.com/nftbazaar/marketplace/internal/messenger"
	"github.com/nftbazaar/marketplace/internal/rail"
	"github.com/sarulabs/di/v2"
	"go.uber.org/zap"
)

type Container struct {
	ctn di.Container
}

func NewContainer() (*Container, error) {
	builder, err := di.NewBuilder()
	if err != nil {
		return nil, err
	}

	if err := builder.Add(definitions...); err != nil {
		return nil, err
	}

	return &Container{ctn: builder.Build()}, nil
}

var definitions = []di.Def{
	{
		Name: "elastic",
		Build: func(ctn di.Container) (interface{}, error) {
			elastic, err := elastic_search.New()
			if err != nil {
				zap.L().With(zap.Error(err)).Fatal("Failed to start ES")
			}

			return elastic, nil
		},
	},
	{
		Name: "registry",
		Build: func(ctn di.Container) (interface{}, error) {
			p := assets.NewProvider(config.Get().Registry.Url, config.Get().Registry.Timeout)
			return assets.NewAssetService(p), nil
		},
	},
	{
		Name: "rail",
		Build: func(ctn di.Container) (interface{}, error) {
			p := rail.NewProvider(config.Get().Rail.Url, config.Get().Rail.Timeout)
			return rail.NewRailService(p), nil
		},
	},
	{
		Name: "gate",
		Build: func(ctn di.Container) (interface{}, error) {
			return market.NewGate(config.Get().Operator, config.Get().FeePercentage), nil
		},
	},
	{
		Name: "ledger",
		Build: func(ctn di.Container) (interface{}, error) {
			return market.NewLedger(
				ctn.Get("gate").(market.Gate),
				ctn.Get("registry").(assets.Service),
				config.Get().Custodian,
			), nil
		},
	},
	{
		Name: "settlement",
		Build: func(ctn di.Container) (interface{}, error) {
			return market.NewSettlement(
				ctn.Get("gate").(market.Gate),
				ctn.Get("ledger").(market.Ledger),
				ctn.Get("registry").(assets.Service),
				ctn.Get("rail").(rail.Service),
				config.Get().Custodian,
			), nil
		},
	},
	{
		Name: "action.indexer",
		Build: func(ctn di.Container) (interface{}, error) {
			return indexer.NewActionIndexer(ctn.Get("elastic").(elastic_search.Index)), nil
		},
	},
	{
		Name: "messenger",
		Build: func(ctn di.Container) (interface{}, error) {
			return messenger.NewMessenger(), nil
		},
	},
}

func (c *Container) GetElastic() elastic_search.Index {
	return c.ctn.Get("elastic").(elastic_search.Index)
}

func (c *Container) GetRegistry() assets.Service {
	return c.ctn.Get("registry").(assets.Service)
}

func (c *Container) GetRail() rail.Service {
	return c.ctn.Get("rail").(rail.Service)
}

func (c *Container) GetGate() market.Gate {
	return c.ctn.Get("gate").(market.Gate)
}

func (c *Container) GetLedger() market.Ledger {
	return c.ctn.Get("ledger").(market.Ledger)
}

func (c *Container) GetSettlement() market.Settlement {
	return c.ctn.Get("settlement").(market.Settlement)
}

func (c *Container) GetActionIndexer() indexer.ActionIndexer {
	return c.ctn.Get("action.indexer").(indexer.ActionIndexer)
}

func (c *Container) GetMessenger() messenger.MessageService {
	return c.ctn.Get("messenger").(messenger.MessageService)
}
