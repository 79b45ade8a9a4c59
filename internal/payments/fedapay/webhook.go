package fedapay

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	"github.com/tidwall/gjson"
)

const SignatureHeader = "X-FedaPay-Signature"

// VerifySignature сравнивает HMAC-SHA256(body, secret) в hex с подписью
// за постоянное время. Пустой секрет или подпись никогда не проходят.
func VerifySignature(body []byte, signature, secret string) bool {
	if signature == "" || secret == "" {
		return false
	}
	return hmac.Equal([]byte(Sign(body, secret)), []byte(signature))
}

// Sign - hex HMAC-SHA256, как его считает шлюз
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// WebhookEvent - то, что нам нужно из события шлюза
type WebhookEvent struct {
	Name          string
	TransactionID string
	Status        string
}

func ParseWebhook(body []byte) WebhookEvent {
	event := gjson.ParseBytes(body)
	return WebhookEvent{
		Name:          event.Get("name").String(),
		TransactionID: event.Get("entity.id").String(),
		Status:        event.Get("entity.status").String(),
	}
}
