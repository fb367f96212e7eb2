package rail

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

type Provider struct {
	url        string
	httpClient *retryablehttp.Client
}

type paymentRequest struct {
	To     string `json:"to"`
	Amount uint64 `json:"amount"`
}

func NewProvider(url string, timeout int) *Provider {
	client := retryablehttp.NewClient()
	client.HTTPClient.Timeout = time.Duration(timeout) * time.Second
	client.Logger = nil

	return &Provider{url: url, httpClient: client}
}

func (p *Provider) RequestPayment(to string, amount uint64) error {
	payload, err := json.Marshal(paymentRequest{To: to, Amount: amount})
	if err != nil {
		return err
	}

	resp, err := p.httpClient.Post(fmt.Sprintf("%s/payments", p.url), "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusPaymentRequired {
		zap.L().With(zap.String("to", to), zap.Uint64("amount", amount)).Warn("Rail: insufficient funds")
		return ErrInsufficientFunds
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("rail: %s", resp.Status)
	}

	return nil
}
