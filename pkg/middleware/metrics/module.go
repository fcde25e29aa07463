package metrics

import "go.uber.org/fx"

// Module provides the /metrics handler tagged name:"metrics".
var Module = fx.Options(
	fx.Provide(fx.Annotate(ProvideMetrics, fx.ResultTags(`name:"metrics"`))),
)
