package persistence_test

import (
	"context"
	"planboard/domain"
	"planboard/persistence"
	"planboard/testinfra"
	"testing"

	. "github.com/onsi/gomega"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/mocktracer"
)

func TestGormTracing(t *testing.T) {
	RegisterTestingT(t)

	tracer := mocktracer.New()
	opentracing.SetGlobalTracer(tracer)
	defer opentracing.SetGlobalTracer(opentracing.NoopTracer{})

	t.Run("gorm tracing should be ignored when parent span not found", func(t *testing.T) {
		testDatabase := testinfra.StartMysqlTestDatabase(t, "planboard")
		defer testinfra.StopMysqlTestDatabase(testDatabase)

		tracer.Reset()
		projects, err := persistence.NewGormStore(testDatabase.DS).Repositories(context.Background()).ListProjects(nil)
		Expect(err).To(BeNil())
		Expect(len(projects)).To(BeZero())
		Expect(len(tracer.FinishedSpans())).To(Equal(0))
	})

	t.Run("gorm tracing should be work with parent span", func(t *testing.T) {
		testDatabase := testinfra.StartMysqlTestDatabase(t, "planboard")
		defer testinfra.StopMysqlTestDatabase(testDatabase)

		tracer.Reset()
		clientSpan := tracer.StartSpan("client")
		ctx := opentracing.ContextWithSpan(context.Background(), clientSpan)

		_, err := persistence.NewGormStore(testDatabase.DS).Repositories(ctx).GetProject(1)
		Expect(err).To(Equal(domain.ErrNotFound))
		clientSpan.Finish()

		spans := tracer.FinishedSpans()
		Expect(len(spans)).To(Equal(2))
		s0 := spans[1]
		Expect(s0.OperationName).To(Equal("client"))
		Expect(s0.ParentID).To(BeZero())

		s1 := spans[0]
		Expect(s1.OperationName).To(Equal("sql"))
		Expect(s1.ParentID).To(Equal(s0.SpanContext.SpanID))
	})
}
