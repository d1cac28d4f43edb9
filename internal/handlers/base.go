// Package handlers implements the connector's REST surface over the
// integration facade.
package handlers

import (
	"iot-connector/internal/common/logging"
	"iot-connector/internal/config"
	"iot-connector/internal/connector"
)

type Handlers struct {
	facade *connector.Facade
	config *config.Config
	logger logging.Logger
}

func New(facade *connector.Facade, cfg *config.Config, logger logging.Logger) *Handlers {
	if logger == nil {
		logger = logging.GetGlobalLogger()
	}
	return &Handlers{
		facade: facade,
		config: cfg,
		logger: logger,
	}
}
