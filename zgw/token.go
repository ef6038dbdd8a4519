package zgw

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// mintClientToken builds the HS256 JWT that ZGW backends such as Open Zaak
// expect: the client id doubles as issuer and key id, and the secret shared
// at registration time signs the token. Tokens are minted per request so no
// refresh bookkeeping is needed.
func mintClientToken(clientID string, secret string, issuedAt time.Time) (string, error) {
	clientID = strings.TrimSpace(clientID)
	secret = strings.TrimSpace(secret)
	if clientID == "" {
		return "", fmt.Errorf("zgw: jwt client id is required")
	}
	if secret == "" {
		return "", fmt.Errorf("zgw: jwt signing secret is required")
	}

	header := map[string]any{
		"alg":               "HS256",
		"typ":               "JWT",
		"client_identifier": clientID,
	}
	claims := map[string]any{
		"iss":                 clientID,
		"iat":                 issuedAt.UTC().Unix(),
		"client_id":           clientID,
		"user_id":             clientID,
		"user_representation": clientID,
	}

	headerRaw, err := json.Marshal(header)
	if err != nil {
		return "", fmt.Errorf("zgw: marshal jwt header: %w", err)
	}
	claimsRaw, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("zgw: marshal jwt claims: %w", err)
	}

	headerToken := base64.RawURLEncoding.EncodeToString(headerRaw)
	claimsToken := base64.RawURLEncoding.EncodeToString(claimsRaw)
	signed := headerToken + "." + claimsToken

	mac := hmac.New(sha256.New, []byte(secret))
	_, _ = mac.Write([]byte(signed))
	signature := base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
	return signed + "." + signature, nil
}
