package webhookauth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignAndVerify(t *testing.T) {
	secret := "shared-secret"
	body := []byte(`{"zonas":[]}`)

	sig := Sign(secret, body)

	assert.True(t, Verify(secret, body, sig))
}

func TestVerifyRejectsTamperedBody(t *testing.T) {
	secret := "shared-secret"
	sig := Sign(secret, []byte(`{"zonas":[]}`))

	assert.False(t, Verify(secret, []byte(`{"zonas":[{}]}`), sig))
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	body := []byte(`{"zonas":[]}`)
	sig := Sign("secret-a", body)

	assert.False(t, Verify("secret-b", body, sig))
}

func TestVerifyRejectsMalformedSignature(t *testing.T) {
	body := []byte(`{}`)

	assert.False(t, Verify("secret", body, ""))
	assert.False(t, Verify("secret", body, "md5=abcdef"))
	assert.False(t, Verify("secret", body, "not-a-signature"))
}
