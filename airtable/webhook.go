package airtable

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mbolis/quick-form/model"
)

const MACHeader = "X-Airtable-Content-MAC"

type WebhookPayload struct {
	Base struct {
		ID string `json:"id"`
	} `json:"base"`
	Webhook struct {
		ID                string                  `json:"id"`
		ChangedTablesByID map[string]TableChanges `json:"changedTablesById"`
	} `json:"webhook"`
	Timestamp time.Time `json:"timestamp"`
}

type TableChanges struct {
	ChangedRecordsByID map[string]json.RawMessage `json:"changedRecordsById"`
	DestroyedRecordIDs []string                   `json:"destroyedRecordIds"`
}

// Notification converts the payload into a change notification with
// tables and records in a stable order.
func (p WebhookPayload) Notification() model.ChangeNotification {
	n := model.ChangeNotification{
		BaseID:    p.Base.ID,
		Timestamp: p.Timestamp,
	}

	tableIDs := make([]string, 0, len(p.Webhook.ChangedTablesByID))
	for id := range p.Webhook.ChangedTablesByID {
		tableIDs = append(tableIDs, id)
	}
	sort.Strings(tableIDs)

	for _, id := range tableIDs {
		changes := p.Webhook.ChangedTablesByID[id]

		changed := make([]string, 0, len(changes.ChangedRecordsByID))
		for recID := range changes.ChangedRecordsByID {
			changed = append(changed, recID)
		}
		sort.Strings(changed)

		n.Tables = append(n.Tables, model.TableChanges{
			TableID:            id,
			ChangedRecordIDs:   changed,
			DestroyedRecordIDs: changes.DestroyedRecordIDs,
		})
	}
	return n
}

// VerifyMAC checks the body against the webhook's MAC header, which has the
// form "hmac-sha256=<hex>". secret is the webhook's base64 MAC secret.
func VerifyMAC(secret, header string, body []byte) error {
	key, err := base64.StdEncoding.DecodeString(secret)
	if err != nil {
		return fmt.Errorf("decode mac secret: %w", err)
	}
	digest, ok := strings.CutPrefix(header, "hmac-sha256=")
	if !ok {
		return fmt.Errorf("unsupported mac header %q", header)
	}
	got, err := hex.DecodeString(digest)
	if err != nil {
		return fmt.Errorf("decode mac: %w", err)
	}

	mac := hmac.New(sha256.New, key)
	mac.Write(body)
	if !hmac.Equal(got, mac.Sum(nil)) {
		return fmt.Errorf("mac mismatch")
	}
	return nil
}
