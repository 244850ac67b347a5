// Package httpapi exposes the estimator's single debug/demo estimation route. It is explicitly not
// a reimplementation of a bundler's JSON-RPC method surface: no mempool, no batching, no handleOps
// dispatch, just one POST /estimate endpoint wired to pkg/gas.Estimator, plus a GET /ping health
// check.
package httpapi

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/go-logr/logr"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/AO-Metaplayer/gasestimator/internal/logger"
	"github.com/AO-Metaplayer/gasestimator/internal/o11y"
	"github.com/AO-Metaplayer/gasestimator/pkg/gas"
	"github.com/AO-Metaplayer/gasestimator/pkg/rpcerr"
	"github.com/AO-Metaplayer/gasestimator/pkg/rpctypes"
)

// Server owns the gin engine and the estimator it dispatches requests to.
type Server struct {
	engine    *gin.Engine
	estimator *Estimators
	log       logr.Logger
	metrics   *o11y.EstimatorMetrics
}

// Estimators carries one Estimator per supported EntryPoint version.
type Estimators struct {
	V06 *gas.Estimator
	V07 *gas.Estimator
}

// New builds the gin engine: CORS, recovery, request logging, optional OTEL middleware, a /ping
// health route, and the single POST /estimate route.
func New(ginMode string, otelServiceName string, estimators *Estimators, log logr.Logger) *Server {
	gin.SetMode(ginMode)
	r := gin.New()
	_ = r.SetTrustedProxies(nil)

	if o11y.IsEnabled(otelServiceName) {
		r.Use(otelgin.Middleware(otelServiceName))
	}
	r.Use(cors.Default(), logger.WithLogr(log), gin.Recovery())

	s := &Server{engine: r, estimator: estimators, log: log, metrics: o11y.NewEstimatorMetrics()}

	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/estimate", s.handleEstimate)

	return s
}

// Run starts the HTTP server on the given port, blocking until it exits.
func (s *Server) Run(port int) error {
	return s.engine.Run(fmt.Sprintf(":%d", port))
}

func (s *Server) handleEstimate(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, rpctypes.ErrorJSON{Code: http.StatusBadRequest, Message: "failed to read request body"})
		return
	}
	if err := rpctypes.ValidateEnvelope(raw); err != nil {
		c.JSON(http.StatusBadRequest, rpctypes.ErrorJSON{Code: http.StatusBadRequest, Message: err.Error()})
		return
	}

	var req rpctypes.EstimateRequestJSON
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, rpctypes.ErrorJSON{Code: http.StatusBadRequest, Message: err.Error()})
		return
	}
	if err := rpctypes.ValidateStruct(&req); err != nil {
		c.JSON(http.StatusBadRequest, rpctypes.ErrorJSON{Code: http.StatusBadRequest, Message: err.Error()})
		return
	}

	estimator := s.estimator.V06
	component := "v06"
	if req.UseV07 {
		estimator = s.estimator.V07
		component = "v07"
	}
	if estimator == nil {
		c.JSON(http.StatusBadRequest, rpctypes.ErrorJSON{
			Code:    http.StatusBadRequest,
			Message: fmt.Sprintf("no estimator configured for EntryPoint %s", req.EntryPoint),
		})
		return
	}

	start := time.Now()
	result, err := estimator.EstimateOpGas(c.Request.Context(), req.Op.ToOptionalGas())
	s.metrics.RecordDuration(c.Request.Context(), time.Since(start).Seconds(), component)
	if err != nil {
		rpcErr := rpcerrFrom(err)
		s.log.Error(err, "estimate failed")
		c.JSON(http.StatusOK, rpcErr)
		return
	}

	s.metrics.RecordRounds(c.Request.Context(), result.VerificationGasRounds, "verificationGas")
	s.metrics.RecordRounds(c.Request.Context(), result.CallGasRounds, "callGas")
	c.JSON(http.StatusOK, rpctypes.FromEstimate(result))
}

func rpcerrFrom(err error) rpctypes.ErrorJSON {
	if rpcErr, ok := err.(*rpcerr.Error); ok {
		return rpctypes.ErrorJSON{Code: int(rpcErr.Code), Message: rpcErr.Message, Data: rpcErr.Data}
	}
	return rpctypes.ErrorJSON{Code: int(rpcerr.Other), Message: err.Error()}
}
