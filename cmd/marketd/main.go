package main

import (
	"encoding/json"
	"net/http"

	"github.com/nftbazaar/marketplace/internal/api"
	"github.com/nftbazaar/marketplace/internal/config"
	"github.com/nftbazaar/marketplace/internal/container"
	"github.com/nftbazaar/marketplace/internal/event"
	"github.com/nftbazaar/marketplace/internal/messenger"
	"go.uber.org/zap"
)

func main() {
	config.Init("marketd")

	ctn, err := container.NewContainer()
	if err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to build container")
	}

	if len(config.Get().ElasticSearch.Hosts) != 0 {
		ctn.GetElastic().InstallIndices()
		ctn.GetActionIndexer().Subscribe()
	}

	if config.Get().Aws.Region != "" {
		subscribeMessenger(ctn.GetMessenger())
	}

	server := api.NewServer(ctn.GetGate(), ctn.GetLedger(), ctn.GetSettlement())

	zap.L().With(zap.String("port", config.Get().ApiPort)).Info("Marketplace started")

	if err := http.ListenAndServe(":"+config.Get().ApiPort, server.Router()); err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to start marketplace")
	}
}

func subscribeMessenger(messageService messenger.MessageService) {
	publish := func(item messenger.Item) func(msg interface{}) {
		return func(msg interface{}) {
			body, err := json.Marshal(msg)
			if err != nil {
				zap.L().With(zap.Error(err)).Error("Failed to encode fact")
				return
			}
			if err := messageService.SendMessage(item, body); err != nil {
				zap.L().With(zap.Error(err)).Error("Failed to publish fact")
			}
		}
	}

	event.AddEventListener(event.SoldEvent, publish(messenger.SoldFact))
	event.AddEventListener(event.FeeCollectedEvent, publish(messenger.FeeCollectedFact))
}
