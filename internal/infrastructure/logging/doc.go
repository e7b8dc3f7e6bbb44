// Package logging builds the service's zap loggers.
//
// Production logs are JSON; development logs are colored console output.
// Components take a *zap.Logger in their constructors and treat nil as a
// no-op logger, so tests rarely need this package.
//
//	logger := logging.NewDefault()
//	defer logger.Sync()
//	store := selection.NewStore(backend, cfg, nil, logger.Component("selection"), nil)
package logging
