package core

import (
	"net/http"

	"github.com/joeydtaylor/steeze-dispatch/pkg/middleware/logger"
	httpx "github.com/joeydtaylor/steeze-dispatch/pkg/transport/httpx"
	"go.uber.org/zap"
)

type BuildDeps struct {
	Client  *Client
	LogMW   *logger.Middleware
	Metrics http.Handler
	Router  httpx.Router
	Log     *zap.Logger
}
