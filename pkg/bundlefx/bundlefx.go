// bundlefx/bundlefx.go
package bundlefx

import (
	"github.com/joeydtaylor/steeze-dispatch/pkg/middleware/logger"
	"github.com/joeydtaylor/steeze-dispatch/pkg/middleware/metrics"
	"go.uber.org/fx"
)

// Module provides the middleware stack every dispatch server runs:
// *zap.Logger, *logger.Middleware and the name:"metrics" handler.
var Module = fx.Options(
	logger.Module,
	metrics.Module,
)
