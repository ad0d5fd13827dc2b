package rastertile

import (
	"go.uber.org/zap"
)

// NewLogger returns a zap logger configured for the given environment name
// ("production" or "development"; anything else falls back to production).
// It is meant to be passed to [WithLogger].
func NewLogger(environment string) (*zap.Logger, error) {
	if environment == "development" {
		logger, err := zap.NewDevelopment()
		if err != nil {
			return nil, IOError(err)
		}
		return logger, nil
	}
	logger, err := zap.NewProduction()
	if err != nil {
		return nil, IOError(err)
	}
	return logger, nil
}
