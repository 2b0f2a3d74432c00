package utils

import (
	"testing"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("Esperanza2024")
	require.NoError(t, err)
	assert.NotEqual(t, "Esperanza2024", hash)

	assert.True(t, CheckPasswordHash("Esperanza2024", hash))
	assert.False(t, CheckPasswordHash("esperanza2024", hash))
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("Caracas123"))

	assert.Error(t, ValidatePassword("Ab1"))          // too short
	assert.Error(t, ValidatePassword("lowercase123")) // no upper
	assert.Error(t, ValidatePassword("UPPERCASE123")) // no lower
	assert.Error(t, ValidatePassword("NoNumbersHere")) // no digit
}

func TestTOTPRoundTrip(t *testing.T) {
	key, err := GenerateTOTPKey("admin@causafund.org")
	require.NoError(t, err)
	require.NotEmpty(t, key.Secret)

	code, err := totp.GenerateCodeCustom(key.Secret, time.Now().UTC(), totp.ValidateOpts{
		Period:    30,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	require.NoError(t, err)

	assert.True(t, ValidateTOTPCode(key.Secret, code))
	assert.False(t, ValidateTOTPCode(key.Secret, "12345"))
}
