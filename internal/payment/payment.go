package payment

import (
	"context"
	"fmt"
	"strings"
)

// 決済状態（画面の3分岐）
type Outcome string

const (
	OutcomeSucceeded  Outcome = "succeeded"
	OutcomeProcessing Outcome = "processing"
	OutcomeFailed     Outcome = "failed"
)

// MapStatus folds the processor's status into the three outcomes the checkout
// knows about. Anything other than succeeded or processing is a failure.
func MapStatus(status string) Outcome {
	switch status {
	case "succeeded":
		return OutcomeSucceeded
	case "processing":
		return OutcomeProcessing
	default:
		return OutcomeFailed
	}
}

type IntentRequest struct {
	AmountCents    int64
	Currency       string
	IdempotencyKey string
	Metadata       map[string]string
}

// 決済ハンドル
type Intent struct {
	ID           string
	ClientSecret string
	Status       string
	AmountCents  int64
	Currency     string
	Metadata     map[string]string
	// カード拒否などの理由（そのまま表示する）
	LastError string
}

type WebhookEvent struct {
	ID     string
	Type   string
	Intent Intent
}

type Balance struct {
	AvailableCents int64
	PendingCents   int64
}

// 決済代行の窓口
type Gateway interface {
	CreateIntent(ctx context.Context, req IntentRequest) (Intent, error)
	GetIntent(ctx context.Context, id string) (Intent, error)
	ParseWebhook(payload []byte, signature string) (WebhookEvent, error)
	Balance(ctx context.Context, currency string) (Balance, error)
}

// 決済代行側の失敗
type ProcessorError struct {
	Op  string
	Err error
}

func (e *ProcessorError) Error() string {
	return fmt.Sprintf("payment processor %s: %v", e.Op, e.Err)
}

func (e *ProcessorError) Unwrap() error { return e.Err }

// IntentIDFromClientSecret extracts "pi_123" from "pi_123_secret_abc".
func IntentIDFromClientSecret(secret string) (string, bool) {
	i := strings.Index(secret, "_secret_")
	if i <= 0 {
		return "", false
	}
	return secret[:i], true
}
