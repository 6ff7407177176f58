package payments

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"
)

// ErrUnsupportedProvider is returned when the manager cannot locate a provider.
var ErrUnsupportedProvider = errors.New("payments: unsupported provider")

// ErrInvalidSignature is returned when a gateway return callback fails signature verification.
var ErrInvalidSignature = errors.New("payments: invalid return signature")

// PaymentURLRequest captures the payload required to build a hosted payment page URL.
type PaymentURLRequest struct {
	OrderID   int64
	Amount    int64
	OrderInfo string
	ClientIP  string
	Locale    string
	CreatedAt time.Time
}

// ReturnResult normalises the gateway's redirect-back parameters after the
// shopper completes (or abandons) the hosted payment page.
type ReturnResult struct {
	Provider      string
	OrderID       int64
	Amount        int64
	TransactionID string
	ResponseCode  string
	Succeeded     bool
	Raw           map[string]string
}

// Provider defines the contract for hosted payment gateway adapters.
type Provider interface {
	// PaymentURL builds the signed redirect URL for the hosted payment page.
	PaymentURL(ctx context.Context, req PaymentURLRequest) (string, error)
	// VerifyReturn validates the signature on the gateway's return
	// parameters and decodes the payment outcome.
	VerifyReturn(ctx context.Context, params url.Values) (ReturnResult, error)
}

// Manager coordinates provider selection and exposes the aggregated interface.
type Manager struct {
	providers       map[string]Provider
	defaultProvider string
}

// ManagerOption configures optional behaviour when building a Manager.
type ManagerOption func(*Manager)

// WithDefaultProvider overrides the provider used when no preference is given.
func WithDefaultProvider(provider string) ManagerOption {
	return func(m *Manager) {
		m.defaultProvider = provider
	}
}

// NewManager constructs a Manager over the supplied providers.
func NewManager(providers map[string]Provider, opts ...ManagerOption) (*Manager, error) {
	if len(providers) == 0 {
		return nil, errors.New("payments: at least one provider is required")
	}
	copyMap := make(map[string]Provider, len(providers))
	for k, v := range providers {
		key := strings.TrimSpace(strings.ToLower(k))
		if key == "" || v == nil {
			return nil, fmt.Errorf("payments: invalid provider registration for key %q", k)
		}
		copyMap[key] = v
	}
	m := &Manager{
		providers: copyMap,
	}
	if _, ok := copyMap["vnpay"]; ok {
		m.defaultProvider = "vnpay"
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

func (m *Manager) resolveProvider(preferred string) (string, Provider, error) {
	if m == nil {
		return "", nil, errors.New("payments: manager is nil")
	}
	if len(m.providers) == 0 {
		return "", nil, errors.New("payments: no providers registered")
	}
	if provider := strings.TrimSpace(strings.ToLower(preferred)); provider != "" {
		if p, ok := m.providers[provider]; ok {
			return provider, p, nil
		}
	}
	if def := strings.TrimSpace(strings.ToLower(m.defaultProvider)); def != "" {
		if p, ok := m.providers[def]; ok {
			return def, p, nil
		}
	}
	if len(m.providers) == 1 {
		for key, p := range m.providers {
			return key, p, nil
		}
	}
	return "", nil, ErrUnsupportedProvider
}

// PaymentURL delegates to the resolved provider.
func (m *Manager) PaymentURL(ctx context.Context, preferred string, req PaymentURLRequest) (string, error) {
	_, provider, err := m.resolveProvider(preferred)
	if err != nil {
		return "", err
	}
	return provider.PaymentURL(ctx, req)
}

// VerifyReturn delegates to the resolved provider.
func (m *Manager) VerifyReturn(ctx context.Context, preferred string, params url.Values) (ReturnResult, error) {
	key, provider, err := m.resolveProvider(preferred)
	if err != nil {
		return ReturnResult{}, err
	}
	result, err := provider.VerifyReturn(ctx, params)
	if err != nil {
		return ReturnResult{}, err
	}
	result.Provider = key
	return result, nil
}
