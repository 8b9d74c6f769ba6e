package actions

import (
	"context"
	"fmt"
	"net/url"

	"github.com/vietddude/autodash/internal/core/domain"
	"github.com/vietddude/autodash/internal/core/retry"
)

type coindeskResponse struct {
	BPI map[string]struct {
		RateFloat *float64 `json:"rate_float"`
	} `json:"bpi"`
}

type coingeckoResponse map[string]map[string]float64

// BTCPrice fetches the Bitcoin price in USD.
func (s *Service) BTCPrice(ctx context.Context) domain.Result {
	if s.deps.BTC == nil {
		return domain.Failure(domain.ActionBTCPrice, domain.KindConfig, "Bitcoin price feed is not configured.")
	}

	price, err := retry.Do(ctx, s.policy(), func(ctx context.Context) (float64, error) {
		var resp coindeskResponse
		if err := s.deps.BTC.GetJSON(ctx, s.cfg.Crypto.BTCURL, nil, &resp); err != nil {
			return 0, err
		}
		usd, ok := resp.BPI["USD"]
		if !ok || usd.RateFloat == nil {
			return 0, domain.NewError(domain.KindParse, "coindesk", "missing bpi.USD.rate_float", nil)
		}
		return *usd.RateFloat, nil
	}, s.retryOpts("btc_price")...)
	if err != nil {
		return priceFailure(domain.ActionBTCPrice, "Bitcoin", err)
	}

	return domain.SuccessValue(domain.ActionBTCPrice, price, fmt.Sprintf("Bitcoin price: %.2f USD", price))
}

// ETHPrice fetches the Ethereum price in USD.
func (s *Service) ETHPrice(ctx context.Context) domain.Result {
	if s.deps.ETH == nil {
		return domain.Failure(domain.ActionETHPrice, domain.KindConfig, "Ethereum price feed is not configured.")
	}

	query := url.Values{"ids": {"ethereum"}, "vs_currencies": {"usd"}}
	price, err := retry.Do(ctx, s.policy(), func(ctx context.Context) (float64, error) {
		var resp coingeckoResponse
		if err := s.deps.ETH.GetJSON(ctx, s.cfg.Crypto.ETHURL, query, &resp); err != nil {
			return 0, err
		}
		usd, ok := resp["ethereum"]["usd"]
		if !ok {
			return 0, domain.NewError(domain.KindParse, "coingecko", "missing ethereum.usd", nil)
		}
		return usd, nil
	}, s.retryOpts("eth_price")...)
	if err != nil {
		return priceFailure(domain.ActionETHPrice, "Ethereum", err)
	}

	return domain.SuccessValue(domain.ActionETHPrice, price, fmt.Sprintf("Ethereum price: %.2f USD", price))
}

func priceFailure(action domain.ActionName, coin string, err error) domain.Result {
	kind := domain.KindOf(err)
	switch kind {
	case domain.KindParse:
		return domain.Failure(action, kind, fmt.Sprintf("Error parsing %s price data: %v", coin, err))
	case domain.KindNone:
		kind = domain.KindNetwork
	}
	return domain.Failure(action, kind, fmt.Sprintf("Network error fetching %s price: %v", coin, err))
}
