package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setTestSecret(t *testing.T) {
	t.Helper()
	t.Setenv(secretEnvVariable, "test-secret")
	ResetSecretForTests()
	t.Cleanup(ResetSecretForTests)
}

func TestIssueAndParseToken(t *testing.T) {
	setTestSecret(t)

	token, expiresAt, err := IssueToken("alice")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// 24h window, fixed at issuance
	assert.WithinDuration(t, time.Now().UTC().Add(TokenTTL), expiresAt, 5*time.Second)

	claims, err := ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Name)
	assert.Equal(t, issuer, claims.Issuer)
	assert.NotEmpty(t, claims.ID)
}

func TestParseTokenRejectsTampering(t *testing.T) {
	setTestSecret(t)

	token, _, err := IssueToken("alice")
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	tampered := parts[0] + "." + parts[1] + "." + strings.Repeat("A", len(parts[2]))
	_, err = ParseToken(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = ParseToken("")
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = ParseToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenWrongKey(t *testing.T) {
	setTestSecret(t)
	token, _, err := IssueToken("alice")
	require.NoError(t, err)

	t.Setenv(secretEnvVariable, "other-secret")
	ResetSecretForTests()

	_, err = ParseToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestIssueTokenMissingSecret(t *testing.T) {
	t.Setenv(secretEnvVariable, "")
	ResetSecretForTests()
	t.Cleanup(ResetSecretForTests)

	_, _, err := IssueToken("alice")
	assert.ErrorIs(t, err, errMissingSecret)
}
