// Package payment verifies and decodes payment provider webhooks.
package payment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"go-jobboard-backend/internal/domain"

	"github.com/cockroachdb/errors"
)

const (
	SignatureHeader = "Payment-Signature"

	EventCheckoutCompleted = "checkout.session.completed"
)

var (
	ErrMissingSignature = errors.New("missing payment signature")
	ErrBadSignature     = errors.New("payment signature mismatch")
	ErrStaleSignature   = errors.New("payment signature timestamp outside tolerance")
	ErrMalformedEvent   = errors.New("malformed payment event")
)

// Verifier checks `t=<unix>,v1=<hex hmac-sha256(t + "." + body)>` signatures.
type Verifier struct {
	Secret    []byte
	Tolerance time.Duration
	Now       func() time.Time
}

func NewVerifier(secret string, tolerance time.Duration) *Verifier {
	return &Verifier{Secret: []byte(secret), Tolerance: tolerance, Now: time.Now}
}

// Sign produces a header value for body at ts. Used by tests and local tooling.
func (v *Verifier) Sign(body []byte, ts time.Time) string {
	t := strconv.FormatInt(ts.Unix(), 10)
	return "t=" + t + ",v1=" + hex.EncodeToString(v.mac(t, body))
}

func (v *Verifier) mac(t string, body []byte) []byte {
	h := hmac.New(sha256.New, v.Secret)
	h.Write([]byte(t))
	h.Write([]byte("."))
	h.Write(body)
	return h.Sum(nil)
}

// Verify authenticates a raw webhook body against its signature header.
//
// The header may carry several v1 entries while the provider rotates its
// secret; any one matching is enough. The timestamp is part of the signed
// payload, and the tolerance window bounds how long a captured request can
// be replayed (redelivery of the same event id is handled by the payment
// event ledger, not here).
func (v *Verifier) Verify(header string, body []byte) error {
	if len(v.Secret) == 0 || header == "" {
		return ErrMissingSignature
	}

	var ts string
	var sigs [][]byte
	for _, part := range strings.Split(header, ",") {
		key, value, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		// unknown schemes (v0, future versions) are ignored
		switch key {
		case "t":
			ts = value
		case "v1":
			if sig, err := hex.DecodeString(value); err == nil {
				sigs = append(sigs, sig)
			}
		}
	}
	if ts == "" || len(sigs) == 0 {
		return ErrMissingSignature
	}

	unix, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		return ErrMissingSignature
	}
	if v.Tolerance > 0 {
		age := v.Now().Sub(time.Unix(unix, 0))
		if age > v.Tolerance || age < -v.Tolerance {
			return ErrStaleSignature
		}
	}

	// hmac.Equal compares in constant time
	expected := v.mac(ts, body)
	for _, sig := range sigs {
		if hmac.Equal(sig, expected) {
			return nil
		}
	}
	return ErrBadSignature
}

// Event is the provider's webhook payload.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		JobID   int64  `json:"job_id"`
		Plan    string `json:"plan"`
		Outcome string `json:"outcome"`
	} `json:"data"`
}

// Decode parses a verified body into a domain payment event.
func Decode(body []byte) (*domain.PaymentEvent, error) {
	var e Event
	if err := json.Unmarshal(body, &e); err != nil {
		return nil, errors.Wrap(ErrMalformedEvent, err.Error())
	}
	if e.ID == "" || e.Type == "" {
		return nil, errors.Wrap(ErrMalformedEvent, "id and type are required")
	}
	// checkout.session.completed implies success when the provider omits
	// the outcome; other event types without one are treated as unknown
	outcome := e.Data.Outcome
	if outcome == "" && e.Type == EventCheckoutCompleted {
		outcome = domain.PaymentOutcomeSucceeded
	}
	plan := e.Data.Plan
	if plan == "" {
		plan = domain.PaymentPlanBasic
	}
	return &domain.PaymentEvent{
		ID:      e.ID,
		Type:    e.Type,
		JobID:   e.Data.JobID,
		Plan:    plan,
		Outcome: outcome,
	}, nil
}
