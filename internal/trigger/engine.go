// Package trigger executes payment rules: it resolves a rule through the
// ownership closure, assembles a value transfer from live chain state,
// submits it, and records a payment for every accepted submission.
package trigger

import (
	"context"
	"errors"
	"sync"
	"time"

	"givechain.org/internal/audit"
	"givechain.org/internal/chain"
	"givechain.org/internal/obs"
	"givechain.org/internal/payments"
	"givechain.org/internal/registry"
	"givechain.org/internal/stream"
)

// ErrNotFound reports a rule the caller cannot see, whether absent or
// owned by someone else.
var ErrNotFound = errors.New("trigger: payment rule not found")

// RuleSource resolves a payment rule and its closure for a given user.
type RuleSource interface {
	ResolveRule(ctx context.Context, userID, ruleID int64) (registry.RuleResolution, error)
}

// Recorder persists accepted payments.
type Recorder interface {
	Record(ctx context.Context, ruleID int64, txHash string) (payments.Payment, error)
}

type Option func(*Engine)

// WithTimeout bounds each trigger attempt end to end. Zero disables the
// bound.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// WithStream publishes an event for every accepted payment.
func WithStream(s *stream.Stream) Option {
	return func(e *Engine) { e.stream = s }
}

// Engine drives the trigger pipeline. Attempts against the same payment
// method are serialized so concurrent triggers cannot observe the same
// nonce; attempts against different methods proceed in parallel.
type Engine struct {
	rules    RuleSource
	gateway  chain.Gateway
	payments Recorder
	stream   *stream.Stream
	timeout  time.Duration

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewEngine(rules RuleSource, gateway chain.Gateway, recorder Recorder, opts ...Option) *Engine {
	e := &Engine{
		rules:    rules,
		gateway:  gateway,
		payments: recorder,
		locks:    make(map[int64]*sync.Mutex),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) methodLock(methodID int64) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.locks[methodID]
	if !ok {
		l = &sync.Mutex{}
		e.locks[methodID] = l
	}
	return l
}

// Trigger executes ruleID on behalf of userID. On success the returned
// payment carries the transaction hash the node answered with. A rule the
// user does not own yields ErrNotFound. Chain refusals surface as
// *chain.RejectedError, transport failures as chain.ErrUnavailable; in
// both cases no payment is recorded.
func (e *Engine) Trigger(ctx context.Context, userID, ruleID int64) (payments.Payment, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	res, err := e.rules.ResolveRule(ctx, userID, ruleID)
	if err != nil {
		if errors.Is(err, registry.ErrNotFound) {
			obs.ObserveTrigger("denied")
			return payments.Payment{}, ErrNotFound
		}
		obs.ObserveTrigger("error")
		return payments.Payment{}, err
	}

	// Serialize per payment method: nonce discovery and submission must
	// not interleave for the same sending key.
	lock := e.methodLock(res.Method.ID)
	lock.Lock()
	defer lock.Unlock()

	p, err := e.execute(ctx, res)
	if err != nil {
		var rejected *chain.RejectedError
		switch {
		case errors.As(err, &rejected):
			obs.ObserveTrigger("rejected")
		case errors.Is(err, chain.ErrUnavailable):
			obs.ObserveTrigger("unavailable")
		default:
			obs.ObserveTrigger("error")
		}
		return payments.Payment{}, err
	}

	obs.ObserveTrigger("recorded")
	_ = audit.LogEvent(ctx, "payments.executed", map[string]any{
		"payment_id":       p.ID,
		"payment_rule_id":  res.Rule.ID,
		"foundation":       res.Foundation.Name,
		"amount_ether":     res.Rule.Amount,
		"transaction_hash": p.TransactionHash,
	})
	if e.stream != nil {
		e.stream.Publish(stream.PaymentEvent{
			PaymentID:       p.ID,
			PaymentRuleID:   res.Rule.ID,
			Foundation:      res.Foundation.Name,
			AmountEther:     res.Rule.Amount,
			TransactionHash: p.TransactionHash,
			Timestamp:       p.CreatedAt,
		})
	}
	return p, nil
}

func (e *Engine) execute(ctx context.Context, res registry.RuleResolution) (payments.Payment, error) {
	account, err := e.gateway.DeriveAccount(res.Method.Key)
	if err != nil {
		return payments.Payment{}, err
	}
	valueWei, err := chain.EtherToWei(res.Rule.Amount)
	if err != nil {
		return payments.Payment{}, err
	}

	nonce, err := e.gateway.CurrentNonce(ctx, account.Address)
	if err != nil {
		return payments.Payment{}, err
	}
	gasPrice, err := e.gateway.SuggestGasPrice(ctx)
	if err != nil {
		return payments.Payment{}, err
	}

	params := chain.TxParams{
		From:     account.Address,
		To:       res.Foundation.PaymentAddress,
		ValueWei: valueWei,
		Nonce:    nonce,
		GasPrice: gasPrice,
	}
	gasLimit, err := e.gateway.EstimateGas(ctx, params)
	if err != nil {
		return payments.Payment{}, err
	}
	params.GasLimit = gasLimit

	txHash, err := e.gateway.SignAndSend(ctx, res.Method.Key, params)
	if err != nil {
		return payments.Payment{}, err
	}

	// The node has accepted the transaction; from here the hash must not
	// be lost. Recording uses a context detached from the request deadline
	// so a late cancellation cannot drop an accepted payment.
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	p, err := e.payments.Record(recordCtx, res.Rule.ID, txHash)
	if err != nil {
		obs.Logger().Printf(`{"type":"error","event":"payments.record_failed","rule_id":%d,"transaction_hash":%q,"error":%q}`,
			res.Rule.ID, txHash, err.Error())
		return payments.Payment{}, err
	}
	return p, nil
}
