package payment

import (
	"testing"
	"time"

	"go-jobboard-backend/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedVerifier(now time.Time) *Verifier {
	v := NewVerifier("whsec_test", 5*time.Minute)
	v.Now = func() time.Time { return now }
	return v
}

func TestVerifyRoundTrip(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	v := fixedVerifier(now)
	body := []byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"job_id":4,"plan":"featured"}}`)

	header := v.Sign(body, now.Add(-time.Minute))
	assert.NoError(t, v.Verify(header, body))
	assert.ErrorIs(t, v.Verify(header, append(body, ' ')), ErrBadSignature)
}

func TestVerifyRejectsStaleAndMissing(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	v := fixedVerifier(now)
	body := []byte(`{}`)

	assert.ErrorIs(t, v.Verify(v.Sign(body, now.Add(-10*time.Minute)), body), ErrStaleSignature)
	assert.ErrorIs(t, v.Verify("", body), ErrMissingSignature)
	assert.ErrorIs(t, v.Verify("t=abc,v1=00", body), ErrMissingSignature)

	unconfigured := NewVerifier("", time.Minute)
	assert.ErrorIs(t, unconfigured.Verify(v.Sign(body, now), body), ErrMissingSignature)
}

func TestDecode(t *testing.T) {
	e, err := Decode([]byte(`{"id":"evt_1","type":"checkout.session.completed","data":{"job_id":4,"plan":"featured"}}`))
	require.NoError(t, err)
	assert.Equal(t, "evt_1", e.ID)
	assert.Equal(t, int64(4), e.JobID)
	assert.Equal(t, domain.PaymentPlanFeatured, e.Plan)
	assert.Equal(t, domain.PaymentOutcomeSucceeded, e.Outcome)

	e, err = Decode([]byte(`{"id":"evt_2","type":"payment.failed","data":{"job_id":4,"outcome":"failed"}}`))
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentOutcomeFailed, e.Outcome)
	assert.Equal(t, domain.PaymentPlanBasic, e.Plan)

	_, err = Decode([]byte(`not json`))
	assert.ErrorIs(t, err, ErrMalformedEvent)
	_, err = Decode([]byte(`{"type":"x"}`))
	assert.ErrorIs(t, err, ErrMalformedEvent)
}
