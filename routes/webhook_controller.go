package routes

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/mbolis/quick-form/airtable"
	"github.com/mbolis/quick-form/app"
	"github.com/mbolis/quick-form/httpx"
	"github.com/mbolis/quick-form/log"
)

// AirtableWebhook reconciles stored responses with an Airtable change
// notification. Entries that cannot be applied are logged by the
// reconciler; the delivery itself always succeeds once decoded.
func AirtableWebhook(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := airtable.WebhookPayload{}
		if err := render.DecodeJSON(r.Body, &payload); err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "webhook.parse_body")
			return
		}

		notification := payload.Notification()
		summary := app.Reconciler.Apply(r.Context(), notification)
		log.WithFields(log.Fields{
			"base":      notification.BaseID,
			"webhook":   payload.Webhook.ID,
			"touched":   summary.Touched,
			"deleted":   summary.Deleted,
			"not_found": summary.NotFound,
			"failed":    summary.Failed,
		}).Debug("webhook.reconciled")

		render.JSON(w, r, summary)
	}
}
