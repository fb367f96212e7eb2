package assets

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"go.uber.org/zap"
)

// Provider talks to the asset registry over its HTTP JSON interface.
type Provider struct {
	url        string
	httpClient *retryablehttp.Client
}

type transferRequest struct {
	Contract string `json:"contract"`
	TokenId  uint64 `json:"tokenId"`
	From     string `json:"from"`
	To       string `json:"to"`
}

type ownerResponse struct {
	Owner string `json:"owner"`
}

func NewProvider(url string, timeout int) *Provider {
	client := retryablehttp.NewClient()
	client.HTTPClient.Timeout = time.Duration(timeout) * time.Second
	client.Logger = nil

	return &Provider{url: url, httpClient: client}
}

func (p *Provider) GetOwner(contract string, tokenId uint64) (string, error) {
	resp, err := p.httpClient.Get(fmt.Sprintf("%s/collections/%s/assets/%d/owner", p.url, contract, tokenId))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		zap.L().With(zap.String("contract", contract), zap.Uint64("tokenId", tokenId), zap.Int("status", resp.StatusCode)).Warn("Registry: owner lookup failed")
		return "", fmt.Errorf("registry: %s", resp.Status)
	}

	body, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var owner ownerResponse
	if err := json.Unmarshal(body, &owner); err != nil {
		return "", err
	}

	return owner.Owner, nil
}

func (p *Provider) RequestTransfer(contract string, tokenId uint64, from, to string) error {
	payload, err := json.Marshal(transferRequest{Contract: contract, TokenId: tokenId, From: from, To: to})
	if err != nil {
		return err
	}

	resp, err := p.httpClient.Post(fmt.Sprintf("%s/transfers", p.url), "application/json", bytes.NewReader(payload))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	// The registry refuses transfers it has not been approved for, or when
	// the asset moved out-of-band. Both surface as a rejection.
	if resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusConflict {
		zap.L().With(
			zap.String("contract", contract),
			zap.Uint64("tokenId", tokenId),
			zap.String("from", from),
			zap.String("to", to),
		).Warn("Registry: transfer rejected")
		return ErrTransferRejected
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("registry: %s", resp.Status)
	}

	return nil
}
