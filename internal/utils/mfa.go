package utils

import (
	"fmt"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// Admin accounts confirm money-moving decisions (manual payment approvals)
// with a TOTP code once two-factor is enabled.

const totpIssuer = "CausaFund"

// TOTPKey represents a generated TOTP enrollment key
type TOTPKey struct {
	Secret string `json:"secret"`
	URL    string `json:"url"`
}

// GenerateTOTPKey generates a new TOTP key for an account
func GenerateTOTPKey(accountName string) (*TOTPKey, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: accountName,
		Period:      30,
		Digits:      otp.DigitsSix,
		Algorithm:   otp.AlgorithmSHA1,
		SecretSize:  20,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate TOTP key: %w", err)
	}

	return &TOTPKey{
		Secret: key.Secret(),
		URL:    key.URL(),
	}, nil
}

// ValidateTOTPCode validates a TOTP code against a secret
func ValidateTOTPCode(secret, code string) bool {
	code = strings.ReplaceAll(code, " ", "")

	valid, err := totp.ValidateCustom(
		code,
		secret,
		time.Now().UTC(),
		totp.ValidateOpts{
			Period:    30,
			Digits:    otp.DigitsSix,
			Algorithm: otp.AlgorithmSHA1,
		},
	)
	if err != nil {
		return false
	}

	return valid
}
