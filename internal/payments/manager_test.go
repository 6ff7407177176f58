package payments

import (
	"context"
	"errors"
	"net/url"
	"testing"
)

type stubProvider struct {
	paymentURLFn   func(ctx context.Context, req PaymentURLRequest) (string, error)
	verifyReturnFn func(ctx context.Context, params url.Values) (ReturnResult, error)
}

func (s *stubProvider) PaymentURL(ctx context.Context, req PaymentURLRequest) (string, error) {
	if s.paymentURLFn != nil {
		return s.paymentURLFn(ctx, req)
	}
	return "", nil
}

func (s *stubProvider) VerifyReturn(ctx context.Context, params url.Values) (ReturnResult, error) {
	if s.verifyReturnFn != nil {
		return s.verifyReturnFn(ctx, params)
	}
	return ReturnResult{}, nil
}

func TestNewManagerValidation(t *testing.T) {
	if _, err := NewManager(nil); err == nil {
		t.Error("expected error for empty provider map")
	}
	if _, err := NewManager(map[string]Provider{" ": &stubProvider{}}); err == nil {
		t.Error("expected error for blank provider key")
	}
	if _, err := NewManager(map[string]Provider{"vnpay": nil}); err == nil {
		t.Error("expected error for nil provider")
	}
}

func TestManagerResolvesPreferredProvider(t *testing.T) {
	called := ""
	manager, err := NewManager(map[string]Provider{
		"vnpay": &stubProvider{paymentURLFn: func(context.Context, PaymentURLRequest) (string, error) {
			called = "vnpay"
			return "https://vnpay.example", nil
		}},
		"mock": &stubProvider{paymentURLFn: func(context.Context, PaymentURLRequest) (string, error) {
			called = "mock"
			return "https://mock.example", nil
		}},
	})
	if err != nil {
		t.Fatalf("NewManager returned error: %v", err)
	}

	if _, err := manager.PaymentURL(context.Background(), "mock", PaymentURLRequest{}); err != nil {
		t.Fatalf("PaymentURL returned error: %v", err)
	}
	if called != "mock" {
		t.Errorf("expected preferred provider to be used, got %s", called)
	}

	// Without a preference the vnpay default wins.
	if _, err := manager.PaymentURL(context.Background(), "", PaymentURLRequest{}); err != nil {
		t.Fatalf("PaymentURL returned error: %v", err)
	}
	if called != "vnpay" {
		t.Errorf("expected default provider vnpay, got %s", called)
	}
}

func TestManagerVerifyReturnSetsProvider(t *testing.T) {
	manager, err := NewManager(map[string]Provider{
		"vnpay": &stubProvider{verifyReturnFn: func(context.Context, url.Values) (ReturnResult, error) {
			return ReturnResult{OrderID: 7, Succeeded: true}, nil
		}},
	})
	if err != nil {
		t.Fatalf("NewManager returned error: %v", err)
	}

	result, err := manager.VerifyReturn(context.Background(), "", url.Values{})
	if err != nil {
		t.Fatalf("VerifyReturn returned error: %v", err)
	}
	if result.Provider != "vnpay" {
		t.Errorf("expected provider name on result, got %q", result.Provider)
	}
	if result.OrderID != 7 || !result.Succeeded {
		t.Errorf("unexpected result: %+v", result)
	}
}

func TestManagerUnknownProvider(t *testing.T) {
	manager, err := NewManager(
		map[string]Provider{"mock": &stubProvider{}, "other": &stubProvider{}},
		WithDefaultProvider("missing"),
	)
	if err != nil {
		t.Fatalf("NewManager returned error: %v", err)
	}

	if _, err := manager.PaymentURL(context.Background(), "nope", PaymentURLRequest{}); !errors.Is(err, ErrUnsupportedProvider) {
		t.Errorf("expected ErrUnsupportedProvider, got %v", err)
	}
}
