package services

// Gateway webhook payloads are not stable across gateway versions: the
// transaction id may arrive at the top level or inside a "data" envelope, as
// camelCase or snake_case. Field resolution is therefore an ordered
// fallback over candidate names; extending the tables below covers a new
// payload shape without touching the logic.

var (
	transactionIDFields = []string{"transactionId", "transaction_id"}
	referenceFields     = []string{"reference", "checkoutRequestID", "checkout_request_id"}
)

var successEvents = map[string]bool{
	"payment.success":     true,
	"transaction.success": true,
}

var failureEvents = map[string]bool{
	"payment.failed":      true,
	"transaction.failed":  true,
	"transaction.timeout": true,
}

// WebhookEvent is a gateway event reduced to the fields reconciliation needs.
type WebhookEvent struct {
	Name          string
	TransactionID string
	Reference     string
}

// ParseWebhookEvent resolves the event name, transaction id and reference out
// of a raw webhook body. It returns false when no transaction id can be
// located anywhere; such events are ignored rather than rejected, because
// unrelated or malformed webhook traffic must not fail the endpoint.
func ParseWebhookEvent(body map[string]interface{}) (*WebhookEvent, bool) {
	payload := envelope(body)

	txnID, ok := lookupString(payload, transactionIDFields)
	if !ok {
		return nil, false
	}

	event := &WebhookEvent{
		Name:          stringField(body, "event"),
		TransactionID: txnID,
	}
	event.Reference, _ = lookupString(payload, referenceFields)

	return event, true
}

// envelope picks the object the identifier fields are read from: a top-level
// "data" object when present, the body itself otherwise.
func envelope(body map[string]interface{}) map[string]interface{} {
	if data, ok := body["data"].(map[string]interface{}); ok {
		return data
	}
	return body
}

// lookupString returns the first candidate field that holds a non-empty string.
func lookupString(obj map[string]interface{}, candidates []string) (string, bool) {
	for _, name := range candidates {
		if value, ok := obj[name].(string); ok && value != "" {
			return value, true
		}
	}
	return "", false
}

func stringField(obj map[string]interface{}, name string) string {
	value, _ := obj[name].(string)
	return value
}
