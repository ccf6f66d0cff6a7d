package es

import (
	"net/http"

	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"
)

// TracingTransport records an elasticsearch client span for every request whose context carries a span.
// Requests without a parent span pass through untouched.
type TracingTransport struct {
	Transport http.RoundTripper
}

func operationName(req *http.Request) string {
	path := req.URL.Path
	if path == "" {
		path = "/"
	}
	return "elasticsearch " + req.Method + " " + path
}

func (t *TracingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	parentSpan := opentracing.SpanFromContext(req.Context())
	if parentSpan == nil {
		return t.Transport.RoundTrip(req)
	}

	tracer := parentSpan.Tracer()
	span := tracer.StartSpan(operationName(req), opentracing.ChildOf(parentSpan.Context()), ext.SpanKindRPCClient)
	defer span.Finish()

	ext.DBType.Set(span, "elasticsearch")
	ext.PeerHostname.Set(span, req.URL.Hostname())
	ext.HTTPMethod.Set(span, req.Method)
	ext.HTTPUrl.Set(span, req.URL.String())
	_ = tracer.Inject(span.Context(), opentracing.HTTPHeaders, opentracing.HTTPHeadersCarrier(req.Header))

	res, err := t.Transport.RoundTrip(req)
	if err != nil {
		ext.Error.Set(span, true)
		span.SetTag("error.detail", err.Error())
		return res, err
	}
	ext.HTTPStatusCode.Set(span, uint16(res.StatusCode))
	// a missing document or index is an expected answer, only server failures mark the span
	if res.StatusCode >= 500 {
		ext.Error.Set(span, true)
	}
	return res, nil
}
