package routes

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/mbolis/quick-form/app"
	"github.com/mbolis/quick-form/database"
	"github.com/mbolis/quick-form/httpx"
	"github.com/mbolis/quick-form/log"
	"github.com/mbolis/quick-form/model"
	"github.com/mbolis/quick-form/projection"
	"github.com/mbolis/quick-form/rules"
	"github.com/mbolis/quick-form/validation"
)

type answersRequest struct {
	Answers model.AnswerSet `json:"answers"`
}

func PublicGetForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, ok := loadForm(app, w, r)
		if !ok {
			return
		}

		form.OwnerID = ""
		render.JSON(w, r, form)
	}
}

// PublicFormVisibility tells the form renderer which questions are in play
// for the answers given so far.
func PublicFormVisibility(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, ok := loadForm(app, w, r)
		if !ok {
			return
		}

		body := answersRequest{}
		if err := render.DecodeJSON(r.Body, &body); err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		visible := []string{}
		for _, q := range form.Questions {
			if rules.IsVisible(q.ConditionalRule, body.Answers) {
				visible = append(visible, q.QuestionKey)
			}
		}

		render.JSON(w, r, map[string]any{
			"visible": visible,
		})
	}
}

func PublicSubmitResponse(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := answersRequest{}
		if err := render.DecodeJSON(r.Body, &body); err != nil {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}
		if body.Answers == nil {
			body.Answers = model.AnswerSet{}
		}

		form, ok := loadForm(app, w, r)
		if !ok {
			return
		}

		if err := validation.Validate(form, body.Answers); err != nil {
			submissions.WithLabelValues("rejected").Inc()
			respondValidation(w, r, err)
			return
		}

		owner, err := app.OwnerByID(r.Context(), form.OwnerID)
		if err != nil {
			httpx.LogInternalError(w, "db.get_owner", err)
			return
		}
		if owner.ExternalToken == "" {
			httpx.LogStatusMsg(w, http.StatusServiceUnavailable, log.WarnLevel, "submit.external_token",
				"form %s is not connected to Airtable", form.ID)
			return
		}

		fields := projection.Project(form, body.Answers)
		record, err := app.External(owner.ExternalToken).CreateRecord(r.Context(), form.ExternalBaseID, form.ExternalTableID, fields)
		if err != nil {
			submissions.WithLabelValues("failed").Inc()
			httpx.LogStatusMsg(w, http.StatusBadGateway, log.ErrorLevel, "external.create_record",
				"failed to submit response: %s", err)
			return
		}

		response, err := app.CreateResponse(r.Context(), form.ID, record.ID, body.Answers)
		if err != nil {
			submissions.WithLabelValues("failed").Inc()
			httpx.LogInternalError(w, "db.insert_response", err)
			return
		}
		submissions.WithLabelValues("accepted").Inc()

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, map[string]any{
			"message":    "Response submitted successfully",
			"responseId": response.ID,
		})
	}
}

func loadForm(app app.App, w http.ResponseWriter, r *http.Request) (model.Form, bool) {
	formID := chi.URLParam(r, "id")
	form, err := app.FormByID(r.Context(), formID)
	switch {
	case errors.Is(err, database.ErrNotFound):
		httpx.LogNotFound(w, "get_form", formID)
		return form, false
	case err != nil:
		httpx.LogInternalError(w, "db.get_form", err)
		return form, false
	}
	return form, true
}

func respondValidation(w http.ResponseWriter, r *http.Request, err error) {
	var (
		missing     *validation.RequiredFieldMissingError
		option      *validation.InvalidOptionError
		options     *validation.InvalidOptionsError
		unsupported *validation.UnsupportedRuleError
	)

	body := httpx.ErrorBody{Message: err.Error()}
	status := http.StatusBadRequest
	switch {
	case errors.Is(err, validation.ErrFormInactive):
		status = http.StatusForbidden
		body.Code = "form_inactive"
	case errors.As(err, &missing):
		body.Code = "required_field_missing"
		body.QuestionKey = missing.QuestionKey
	case errors.As(err, &option):
		body.Code = "invalid_option"
		body.QuestionKey = option.QuestionKey
	case errors.As(err, &options):
		body.Code = "invalid_options"
		body.QuestionKey = options.QuestionKey
	case errors.As(err, &unsupported):
		body.Code = "unsupported_rule"
		body.QuestionKey = unsupported.QuestionKey
	default:
		body.Code = "invalid_answers"
	}

	httpx.LogStatusJSON(w, r, status, log.DebugLevel, body)
}
