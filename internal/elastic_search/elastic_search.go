package elastic_search

import (
	"context"
	"strings"
	"time"

	"github.com/nftbazaar/marketplace/internal/config"
	"github.com/nftbazaar/marketplace/internal/entity"
	"github.com/olivere/elastic/v7"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Index buffers fact documents and flushes them to Elasticsearch in bulk.
// The marketplace core only ever appends; nothing here is read back by it.
type Index interface {
	GetClient() *elastic.Client

	InstallIndices()

	AddIndexRequest(index string, entity entity.Entity)
	GetRequests() []Request
	ClearRequests()

	BatchPersist() bool
	Persist() int
}

type index struct {
	client  *elastic.Client
	cache   *cache.Cache
	refresh string
}

type Request struct {
	Index  string
	Entity entity.Entity
}

const batchPersistThreshold = 250

func New() (Index, error) {
	client, err := newClient()
	if err != nil {
		zap.L().With(zap.Error(err)).Fatal("ElasticCache: Failed to create client")
	}

	return index{client, cache.New(5*time.Minute, 10*time.Minute), config.Get().ElasticSearch.Refresh}, err
}

func newClient() (*elastic.Client, error) {
	opts := []elastic.ClientOptionFunc{
		elastic.SetURL(strings.Join(config.Get().ElasticSearch.Hosts, ",")),
		elastic.SetSniff(config.Get().ElasticSearch.Sniff),
		elastic.SetHealthcheck(config.Get().ElasticSearch.HealthCheck),
	}

	if config.Get().ElasticSearch.Username != "" {
		opts = append(opts, elastic.SetBasicAuth(
			config.Get().ElasticSearch.Username,
			config.Get().ElasticSearch.Password,
		))
	}

	return elastic.NewClient(opts...)
}

func (i index) GetClient() *elastic.Client {
	return i.client
}

func (i index) InstallIndices() {
	zap.L().Info("ElasticCache: Install indices")

	for _, idx := range []Indices{MarketActionIndex, ErrorIndex} {
		if err := i.createIndex(idx.Get()); err != nil {
			zap.S().With(zap.Error(err)).Fatalf("ElasticCache: Failed to create index %s", idx.Get())
		}
	}
}

func (i index) createIndex(index string) error {
	ctx := context.Background()

	exists, err := i.client.IndexExists(index).Do(ctx)
	if err != nil {
		return err
	}

	if !exists {
		createIndex, err := i.client.CreateIndex(index).Do(ctx)
		if err != nil {
			return err
		}

		if createIndex.Acknowledged {
			zap.S().Infof("ElasticCache: Created index %s", index)
		}
	}

	return nil
}

func (i index) AddIndexRequest(index string, entity entity.Entity) {
	zap.L().With(
		zap.String("index", index),
		zap.String("slug", entity.Slug()),
	).Debug("ElasticCache: AddIndexRequest")

	i.cache.Set(entity.Slug(), Request{index, entity}, cache.DefaultExpiration)
}

func (i index) GetRequests() []Request {
	requests := make([]Request, 0)

	for _, item := range i.cache.Items() {
		requests = append(requests, item.Object.(Request))
	}

	return requests
}

func (i index) ClearRequests() {
	i.cache.Flush()
}

func (i index) BatchPersist() bool {
	if len(i.GetRequests()) < batchPersistThreshold {
		return false
	}

	actions := len(i.GetRequests())
	start := time.Now()
	i.Persist()

	zap.L().With(
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("actions", actions),
	).Info("ElasticCache: Persisting data")

	return true
}

func (i index) Persist() int {
	bulk := i.client.Bulk()
	for _, r := range i.GetRequests() {
		bulk.Add(elastic.NewBulkIndexRequest().Index(r.Index).Id(r.Entity.Slug()).Doc(r.Entity))

		if bulk.NumberOfActions() >= config.Get().ElasticSearch.BulkPersistCount {
			i.persist(bulk)
			bulk = i.client.Bulk()
		}
	}

	actions := bulk.NumberOfActions()
	if actions != 0 {
		i.persist(bulk)
	}

	i.ClearRequests()

	return actions
}

func (i index) persist(bulk *elastic.BulkService) {
	zap.S().Debugf("ElasticCache: Persisting %d actions", bulk.NumberOfActions())

	response, err := bulk.Refresh(i.refresh).Do(context.Background())
	if err != nil {
		time.Sleep(1 * time.Second)
		response, err = bulk.Refresh(i.refresh).Do(context.Background())
		if err != nil {
			zap.L().With(zap.Error(err)).Fatal("ElasticCache: Failed to persist requests")
		}
	}

	for _, failed := range response.Failed() {
		zap.L().With(
			zap.Any("error", failed.Error),
			zap.String("index", failed.Index),
			zap.String("id", failed.Id),
		).Error("ElasticCache: Failed to persist request")
	}
}
