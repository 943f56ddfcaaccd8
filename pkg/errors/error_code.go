package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidAmount        ErrorCode = 100
	ErrCodeInvalidAction        ErrorCode = 101
	ErrCodeInvalidTradeRequest  ErrorCode = 102
	ErrCodeInvalidConfiguration ErrorCode = 103
	ErrCodeInvalidParameter     ErrorCode = 104

	// Account errors (200-299)
	ErrCodeUnknownUser        ErrorCode = 200
	ErrCodeDuplicateUsername  ErrorCode = 201
	ErrCodeInvalidCredentials ErrorCode = 202
	ErrCodeInsufficientFunds  ErrorCode = 203

	// Portfolio errors (300-399)
	ErrCodeUnknownPortfolio       ErrorCode = 300
	ErrCodeDuplicatePortfolioName ErrorCode = 301
	ErrCodePositionNotFound       ErrorCode = 302
	ErrCodeInsufficientShares     ErrorCode = 303

	// Trading errors (400-499)
	ErrCodeTradeFailed ErrorCode = 400

	// Market data errors (500-599)
	ErrCodePriceUnavailable ErrorCode = 500
	ErrCodeUnknownTicker    ErrorCode = 501
	ErrCodeDuplicateTicker  ErrorCode = 502
	ErrCodeCatalogSeed      ErrorCode = 503
	ErrCodeInvalidProvider  ErrorCode = 504

	// Storage errors (600-699)
	ErrCodeQueryFailed       ErrorCode = 600
	ErrCodeStoreInitFailed   ErrorCode = 601
	ErrCodeTransactionFailed ErrorCode = 602
)
