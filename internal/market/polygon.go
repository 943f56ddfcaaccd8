package market

import (
	"context"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/shopspring/decimal"

	"github.com/papertrade-sim/papertrade/internal/ledger"
	"github.com/papertrade-sim/papertrade/internal/types"
	"github.com/papertrade-sim/papertrade/pkg/errors"
)

// PolygonSource quotes prices from the Polygon REST API. Successful
// quotes refresh the catalog's cached price so the offline views stay
// roughly current; the refresh is best-effort and never fails a quote.
type PolygonSource struct {
	client *polygon.Client
	store  *ledger.Store
}

// NewPolygonSource creates a polygon-backed price source.
func NewPolygonSource(apiKey string, store *ledger.Store) (*PolygonSource, error) {
	if apiKey == "" {
		return nil, errors.New(errors.ErrCodeInvalidConfiguration, "polygon source requires an API key")
	}

	return &PolygonSource{
		client: polygon.New(apiKey),
		store:  store,
	}, nil
}

// CurrentPrice implements market.Source using the previous close.
func (p *PolygonSource) CurrentPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	//nolint:exhaustruct // third-party struct with many optional fields
	params := &models.GetPreviousCloseAggParams{
		Ticker: symbol,
	}

	resp, err := p.client.GetPreviousCloseAgg(ctx, params)
	if err != nil {
		return decimal.Zero, errors.Wrapf(errors.ErrCodePriceUnavailable, err, "polygon quote failed for %s", symbol)
	}

	if len(resp.Results) == 0 {
		return decimal.Zero, errors.Newf(errors.ErrCodePriceUnavailable, "polygon returned no data for %s", symbol)
	}

	price := decimal.NewFromFloat(resp.Results[0].Close).Round(4)
	if !price.IsPositive() {
		return decimal.Zero, errors.Newf(errors.ErrCodePriceUnavailable, "polygon returned a non-positive price for %s", symbol)
	}

	if p.store != nil {
		// Cache refresh is a collaborator concern; a failure here must
		// not abort the quote.
		_ = p.store.SetLastPrice(symbol, price)
	}

	return price, nil
}

// History implements market.Source using daily aggregates.
func (p *PolygonSource) History(ctx context.Context, symbol string, from time.Time) ([]types.PricePoint, error) {
	//nolint:exhaustruct // third-party struct with many optional fields
	params := models.ListAggsParams{
		Ticker:     symbol,
		Multiplier: 1,
		Timespan:   models.Day,
		From:       models.Millis(from),
		To:         models.Millis(time.Now().UTC()),
	}.WithLimit(50000)

	iter := p.client.ListAggs(ctx, params)

	var series []types.PricePoint

	for iter.Next() {
		agg := iter.Item()
		series = append(series, types.PricePoint{
			Time:  time.Time(agg.Timestamp),
			Price: decimal.NewFromFloat(agg.Close).Round(4),
		})
	}

	if iter.Err() != nil {
		return nil, errors.Wrapf(errors.ErrCodePriceUnavailable, iter.Err(), "polygon history failed for %s", symbol)
	}

	if len(series) == 0 {
		return nil, errors.Newf(errors.ErrCodePriceUnavailable, "polygon has no history for %s since %s", symbol, from.Format("2006-01-02"))
	}

	return series, nil
}
