package indexer

import (
	"github.com/nftbazaar/marketplace/internal/dev"
	"github.com/nftbazaar/marketplace/internal/elastic_search"
	"github.com/nftbazaar/marketplace/internal/entity"
	"github.com/nftbazaar/marketplace/internal/event"
	"go.uber.org/zap"
)

// ActionIndexer forwards emitted marketplace facts into Elasticsearch. It is
// a pure observer; the marketplace core works the same with it switched off.
type ActionIndexer interface {
	Subscribe()
	IndexAction(msg interface{})
}

type actionIndexer struct {
	elastic elastic_search.Index
}

func NewActionIndexer(elastic elastic_search.Index) ActionIndexer {
	return actionIndexer{elastic}
}

func (i actionIndexer) Subscribe() {
	for _, eventType := range []event.Type{
		event.ListedEvent,
		event.PriceChangedEvent,
		event.DelistedEvent,
		event.SoldEvent,
		event.FeeCollectedEvent,
		event.CollectionAddedEvent,
		event.CollectionRemovedEvent,
	} {
		event.AddEventListener(eventType, i.IndexAction)
	}
}

func (i actionIndexer) IndexAction(msg interface{}) {
	action, ok := msg.(entity.MarketAction)
	if !ok {
		zap.L().With(zap.Any("msg", msg)).Error("ActionIndexer: Unexpected event payload")
		i.elastic.AddIndexRequest(elastic_search.ErrorIndex.Get(), dev.NewError("indexer", "IndexAction", errUnexpectedPayload, map[string]interface{}{"msg": msg}))
		return
	}

	zap.L().With(
		zap.String("contract", action.Contract),
		zap.Uint64("tokenId", action.TokenId),
		zap.String("action", string(action.Action)),
	).Info("ActionIndexer: Indexing market action")

	i.elastic.AddIndexRequest(elastic_search.MarketActionIndex.Get(), action)
	i.elastic.BatchPersist()
}
