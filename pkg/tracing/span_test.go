package tracing

import (
	"context"
	"testing"
)

func TestSpanTree(t *testing.T) {
	tr := NewTracer(true, 1)
	ctx, root := tr.StartSpan(context.Background(), "dictionary", "req-1")
	if root == nil {
		t.Fatal("sampled tracer returned nil span")
	}
	_, child := StartChildSpan(ctx, "lemmatize")
	child.SetAttr("candidates", 2)
	child.End()
	root.End()

	if len(root.Children) != 1 || root.Children[0].TraceID != "req-1" {
		t.Errorf("children = %+v", root.Children)
	}
	if child.Attrs["candidates"] != 2 {
		t.Errorf("attrs = %v", child.Attrs)
	}
}

func TestDisabledTracerIsNoop(t *testing.T) {
	tr := NewTracer(false, 1)
	ctx, root := tr.StartSpan(context.Background(), "matches", "req-2")
	if root != nil {
		t.Fatal("disabled tracer produced a span")
	}
	_, child := StartChildSpan(ctx, "query")
	child.SetAttr("k", "v")
	child.End()
	root.End()
	if child != nil {
		t.Error("child span without parent")
	}
}
