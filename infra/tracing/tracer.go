package tracing

import (
	"io"
	"planboard/common"

	"github.com/opentracing/opentracing-go"
	jaegercfg "github.com/uber/jaeger-client-go/config"
	"github.com/uber/jaeger-lib/metrics"
)

// Bootstrap installs a jaeger tracer configured by the JAEGER_* environment variables as the global tracer.
// JAEGER_DISABLED=true installs a no-op tracer.
func Bootstrap(serviceName string) (io.Closer, error) {
	cfg, err := jaegercfg.FromEnv()
	if err != nil {
		return nil, err
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = serviceName
	}

	tracer, closer, err := cfg.NewTracer(jaegercfg.Logger(logrusLogger{}), jaegercfg.Metrics(metrics.NullFactory))
	if err != nil {
		return nil, err
	}
	opentracing.SetGlobalTracer(tracer)
	common.Log.WithField("service", cfg.ServiceName).WithField("disabled", cfg.Disabled).Info("tracer installed")
	return closer, nil
}

type logrusLogger struct{}

func (logrusLogger) Error(msg string) {
	common.Log.WithField("component", "jaeger").Error(msg)
}

func (logrusLogger) Infof(msg string, args ...interface{}) {
	common.Log.WithField("component", "jaeger").Infof(msg, args...)
}
