package mocks

//go:generate mockgen -destination=./mock_market_source.go -package=mocks github.com/papertrade-sim/papertrade/internal/market Source
