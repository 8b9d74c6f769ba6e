package actions

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietddude/autodash/internal/core/domain"
)

func TestBTCPrice_Success(t *testing.T) {
	btc := &fakeFetcher{fn: func(_ int, out any) error {
		rate := 67012.5
		resp := out.(*coindeskResponse)
		resp.BPI = map[string]struct {
			RateFloat *float64 `json:"rate_float"`
		}{"USD": {RateFloat: &rate}}
		return nil
	}}
	svc, sleeps := newTestService(t, testConfig(), Deps{BTC: btc})

	res := svc.BTCPrice(context.Background())

	require.True(t, res.OK, res.Message)
	require.NotNil(t, res.Value)
	assert.InDelta(t, 67012.5, *res.Value, 1e-9)
	assert.Equal(t, 1, btc.Calls())
	assert.Empty(t, sleeps.delays)
}

func TestBTCPrice_ExhaustsRetries(t *testing.T) {
	btc := &fakeFetcher{fn: func(int, any) error {
		return domain.NewError(domain.KindNetwork, "coindesk", "request failed", errBoom)
	}}
	svc, sleeps := newTestService(t, testConfig(), Deps{BTC: btc})

	res := svc.BTCPrice(context.Background())

	assert.False(t, res.OK)
	assert.Equal(t, domain.KindNetwork, res.Kind)
	assert.Contains(t, res.Message, "Network error fetching Bitcoin price")
	assert.Equal(t, 3, btc.Calls())
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, sleeps.delays)
}

func TestETHPrice_SucceedsOnSecondAttempt(t *testing.T) {
	eth := &fakeFetcher{fn: func(call int, out any) error {
		if call == 1 {
			return domain.NewError(domain.KindNetwork, "coingecko", "http 502", nil)
		}
		*out.(*coingeckoResponse) = coingeckoResponse{"ethereum": {"usd": 3120.75}}
		return nil
	}}
	svc, sleeps := newTestService(t, testConfig(), Deps{ETH: eth})

	res := svc.ETHPrice(context.Background())

	require.True(t, res.OK, res.Message)
	assert.InDelta(t, 3120.75, *res.Value, 1e-9)
	assert.Equal(t, 2, eth.Calls())
	assert.Equal(t, []time.Duration{time.Second}, sleeps.delays)
	assert.Equal(t, "ethereum", eth.last.Get("ids"))
	assert.Equal(t, "usd", eth.last.Get("vs_currencies"))
}

func TestETHPrice_MissingFieldIsParseError(t *testing.T) {
	eth := &fakeFetcher{fn: func(int, any) error { return nil }}
	svc, _ := newTestService(t, testConfig(), Deps{ETH: eth})

	res := svc.ETHPrice(context.Background())

	assert.False(t, res.OK)
	assert.Equal(t, domain.KindParse, res.Kind)
	assert.Contains(t, res.Message, "Error parsing Ethereum price data")
	assert.Equal(t, 3, eth.Calls())
}

func TestPrice_NotConfigured(t *testing.T) {
	svc, _ := newTestService(t, testConfig(), Deps{})

	assert.Equal(t, domain.KindConfig, svc.BTCPrice(context.Background()).Kind)
	assert.Equal(t, domain.KindConfig, svc.ETHPrice(context.Background()).Kind)
}
