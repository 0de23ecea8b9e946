package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/core/domain"
	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/core/ports"
)

type stubInvoker struct {
	lastName    string
	lastPayload any
	result      json.RawMessage
	err         error
}

func (i *stubInvoker) Invoke(_ context.Context, name string, payload any) (json.RawMessage, error) {
	i.lastName = name
	i.lastPayload = payload
	if i.err != nil {
		return nil, i.err
	}
	return i.result, nil
}

func TestInsightService_Generate_Success(t *testing.T) {
	products := newStubProductRepo()
	_, _ = products.Create(context.Background(), &domain.Product{
		OwnerID: "u1", Name: "Kopi", Price: 100, Cost: 60, Stock: 2, IsActive: true,
	})
	sales := &stubSaleRepo{sales: []domain.Sale{{OwnerID: "u1"}, {OwnerID: "u1"}}}
	invoker := &stubInvoker{result: json.RawMessage(`{"insight":"Naikkan stok kopi."}`)}
	svc := NewInsightService(products, sales, invoker, zerolog.Nop())

	insight, err := svc.Generate(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	if insight == nil || insight.Text != "Naikkan stok kopi." {
		t.Fatalf("unexpected insight: %+v", insight)
	}
	if insight.Inputs.Omzet != 200 || insight.Inputs.Laba != 80 {
		t.Fatalf("unexpected snapshot: %+v", insight.Inputs)
	}
	if insight.Inputs.ProductCount != 1 || insight.Inputs.SalesCount != 2 {
		t.Fatalf("unexpected counts: %+v", insight.Inputs)
	}
	if invoker.lastName != "generate-insight" {
		t.Fatalf("unexpected function name %q", invoker.lastName)
	}
}

func TestInsightService_Generate_RemoteFailureIsNotAnError(t *testing.T) {
	products := newStubProductRepo()
	sales := &stubSaleRepo{}
	invoker := &stubInvoker{err: errors.New("model unavailable")}
	svc := NewInsightService(products, sales, invoker, zerolog.Nop())

	insight, err := svc.Generate(context.Background(), "u1")
	if err != nil {
		t.Fatalf("remote failure must not surface as error, got %v", err)
	}
	if insight != nil {
		t.Fatalf("expected nil insight on remote failure, got %+v", insight)
	}
}

func TestInsightService_Generate_UnusablePayload(t *testing.T) {
	products := newStubProductRepo()
	sales := &stubSaleRepo{}
	svc := NewInsightService(products, sales, &stubInvoker{result: json.RawMessage(`{"insight":""}`)}, zerolog.Nop())

	insight, err := svc.Generate(context.Background(), "u1")
	if err != nil || insight != nil {
		t.Fatalf("empty insight must be treated as unavailable, got %+v %v", insight, err)
	}

	svc = NewInsightService(products, sales, &stubInvoker{result: json.RawMessage(`not json`)}, zerolog.Nop())
	insight, err = svc.Generate(context.Background(), "u1")
	if err != nil || insight != nil {
		t.Fatalf("malformed payload must be treated as unavailable, got %+v %v", insight, err)
	}
}

var _ ports.InsightService = (*InsightService)(nil)
