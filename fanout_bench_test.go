package xfanout

import (
	"context"
	"regexp"
	"testing"
)

func BenchmarkFanout_Publish(b *testing.B) {
	f, err := NewFanoutBuilder().WithoutLoggingObserver().WithRegexRetention(true).Build()
	if err != nil {
		b.Fatalf("build fanout: %v", err)
	}
	noop := HandlerFunc(func(context.Context, string, ...any) error { return nil })
	for _, p := range []any{"sql.query", nil, regexp.MustCompile(`^sql\.`)} {
		if _, err := f.Subscribe(p, noop); err != nil {
			b.Fatalf("subscribe: %v", err)
		}
	}
	ctx := context.Background()

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := f.Publish(ctx, "sql.query", i); err != nil {
			b.Fatalf("publish: %v", err)
		}
	}
}

func BenchmarkFanout_StartFinish(b *testing.B) {
	f, err := NewFanoutBuilder().WithoutLoggingObserver().Build()
	if err != nil {
		b.Fatalf("build fanout: %v", err)
	}
	noop := HandlerFunc(func(context.Context, string, ...any) error { return nil })
	if _, err := f.Subscribe(nil, noop); err != nil {
		b.Fatalf("subscribe: %v", err)
	}
	ctx := WithTimeline(context.Background())

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		sctx, err := f.Start(ctx, "render", "id", nil)
		if err != nil {
			b.Fatalf("start: %v", err)
		}
		if err := f.Finish(sctx, "render", "id", nil); err != nil {
			b.Fatalf("finish: %v", err)
		}
	}
}
