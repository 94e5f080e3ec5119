package routes

import (
	"encoding/csv"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/mbolis/quick-form/analytics"
	"github.com/mbolis/quick-form/app"
	"github.com/mbolis/quick-form/database"
	"github.com/mbolis/quick-form/httpx"
	"github.com/mbolis/quick-form/log"
	"github.com/mbolis/quick-form/model"
	"github.com/mbolis/quick-form/projection"
	"github.com/mbolis/quick-form/rules"
)

func ListResponses(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, responses, ok := formResponses(app, w, r)
		if !ok {
			return
		}

		render.JSON(w, r, map[string]any{
			"formId":    form.ID,
			"responses": responses,
		})
	}
}

func GetResponse(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response, _, ok := ownedResponse(app, w, r)
		if !ok {
			return
		}

		render.JSON(w, r, response)
	}
}

// DeleteResponse removes the response and, best effort, its external record.
func DeleteResponse(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response, form, ok := ownedResponse(app, w, r)
		if !ok {
			return
		}

		owner, err := app.OwnerByID(r.Context(), form.OwnerID)
		if err != nil {
			httpx.LogInternalError(w, "db.get_owner", err)
			return
		}
		if owner.ExternalToken != "" && !response.DeletedInExternal {
			err = app.External(owner.ExternalToken).DeleteRecord(r.Context(), form.ExternalBaseID, form.ExternalTableID, response.ExternalRecordID)
			if err != nil {
				log.Warnf("external.delete_record: %s", err)
			}
		}

		err = app.DeleteResponse(r.Context(), response.ID)
		switch {
		case errors.Is(err, database.ErrNotFound):
			httpx.LogNotFound(w, "delete_response", response.ID)
			return
		case err != nil:
			httpx.LogInternalError(w, "db.delete_response", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func FormStats(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, responses, ok := formResponses(app, w, r)
		if !ok {
			return
		}

		render.JSON(w, r, analytics.Summarize(responses))
	}
}

func FormAnalytics(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, responses, ok := formResponses(app, w, r)
		if !ok {
			return
		}

		render.JSON(w, r, analytics.Aggregate(form, responses))
	}
}

// ExportResponses writes the form's responses as CSV or JSON, keyed by
// question label.
func ExportResponses(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, responses, ok := formResponses(app, w, r)
		if !ok {
			return
		}

		switch format := r.URL.Query().Get("format"); format {
		case "", "json":
			labels := projection.QuestionLabels(form)
			rows := make([]map[string]any, len(responses))
			for i, resp := range responses {
				row := map[string]any{
					"Response ID":         resp.ID,
					"Created At":          resp.CreatedAt,
					"Updated At":          resp.UpdatedAt,
					"Deleted In Airtable": resp.DeletedInExternal,
					"Airtable Record ID":  resp.ExternalRecordID,
				}
				for key, v := range resp.Answers {
					if label, ok := labels[key]; ok {
						row[label] = v
					}
				}
				rows[i] = row
			}
			w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="form-%s.json"`, form.ID))
			render.JSON(w, r, rows)

		case "csv":
			w.Header().Set("Content-Type", "text/csv; charset=utf-8")
			w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="form-%s.csv"`, form.ID))
			if err := writeCSV(w, form, responses); err != nil {
				log.Errorf("export.csv: %s", err)
			}

		default:
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "export.format", "unsupported format %q", format)
		}
	}
}

func writeCSV(w http.ResponseWriter, form model.Form, responses []model.Response) error {
	out := csv.NewWriter(w)

	header := []string{"Response ID", "Created At", "Updated At", "Deleted In Airtable"}
	for _, q := range form.Questions {
		header = append(header, q.Label)
	}
	if err := out.Write(header); err != nil {
		return err
	}

	for _, resp := range responses {
		row := []string{
			resp.ID,
			resp.CreatedAt.UTC().Format(time.RFC3339),
			resp.UpdatedAt.UTC().Format(time.RFC3339),
			fmt.Sprint(resp.DeletedInExternal),
		}
		for _, q := range form.Questions {
			row = append(row, csvValue(resp.Answers[q.QuestionKey]))
		}
		if err := out.Write(row); err != nil {
			return err
		}
	}

	out.Flush()
	return out.Error()
}

func csvValue(v any) string {
	if v == nil {
		return ""
	}
	if rules.IsSequence(v) {
		parts := []string{}
		for _, el := range rules.Elements(v) {
			if att, ok := el.(map[string]any); ok {
				if url, ok := att["url"].(string); ok {
					parts = append(parts, url)
					continue
				}
			}
			parts = append(parts, analytics.Key(el))
		}
		return strings.Join(parts, ", ")
	}
	return analytics.Key(v)
}

func formResponses(app app.App, w http.ResponseWriter, r *http.Request) (model.Form, []model.Response, bool) {
	form, ok := ownedForm(app, w, r, chi.URLParam(r, "id"))
	if !ok {
		return form, nil, false
	}

	responses, err := app.ResponsesByForm(r.Context(), form.ID)
	if err != nil {
		httpx.LogInternalError(w, "db.get_responses", err)
		return form, nil, false
	}
	return form, responses, true
}

func ownedResponse(app app.App, w http.ResponseWriter, r *http.Request) (model.Response, model.Form, bool) {
	responseID := chi.URLParam(r, "id")
	response, err := app.ResponseByID(r.Context(), responseID)
	switch {
	case errors.Is(err, database.ErrNotFound):
		httpx.LogNotFound(w, "get_response", responseID)
		return response, model.Form{}, false
	case err != nil:
		httpx.LogInternalError(w, "db.get_response", err)
		return response, model.Form{}, false
	}

	form, ok := ownedForm(app, w, r, response.FormID)
	return response, form, ok
}
