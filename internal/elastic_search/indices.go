package elastic_search

import (
	"fmt"

	"github.com/nftbazaar/marketplace/internal/config"
)

type Indices string

var (
	MarketActionIndex Indices = "marketaction"
	ErrorIndex        Indices = "error"
)

// Prefixes the environment and index name and returns the full string
func (i *Indices) Get() string {
	return fmt.Sprintf("%s.%s.%s", config.Get().Env, config.Get().Index, string(*i))
}
