package routes

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/mbolis/quick-form/airtable"
	"github.com/mbolis/quick-form/app"
	"github.com/mbolis/quick-form/database"
	"github.com/mbolis/quick-form/httpx"
	"github.com/mbolis/quick-form/log"
	"github.com/mbolis/quick-form/model"
	"github.com/mbolis/quick-form/routes/middlewares"
	"github.com/mbolis/quick-form/validation"
)

func SetExternalToken(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body := struct {
			Token string `json:"token"`
		}{}
		err := render.DecodeJSON(r.Body, &body)
		if err != nil || body.Token == "" {
			httpx.LogStatus(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body")
			return
		}

		err = app.SetExternalToken(r.Context(), middlewares.OwnerID(r), body.Token)
		if err != nil {
			httpx.LogInternalError(w, "db.set_external_token", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func ListBases(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		external, ok := ownerExternal(app, w, r)
		if !ok {
			return
		}

		bases, err := external.Bases(r.Context())
		if err != nil {
			externalError(w, "external.get_bases", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"bases": bases,
		})
	}
}

func ListTables(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		external, ok := ownerExternal(app, w, r)
		if !ok {
			return
		}

		tables, err := external.Tables(r.Context(), chi.URLParam(r, "baseId"))
		if err != nil {
			externalError(w, "external.get_tables", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"tables": tables,
		})
	}
}

// ListFields returns the fields of a table that questions can be bound to.
func ListFields(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		external, ok := ownerExternal(app, w, r)
		if !ok {
			return
		}

		table, err := external.TableSchema(r.Context(), chi.URLParam(r, "baseId"), chi.URLParam(r, "tableId"))
		if err != nil {
			externalError(w, "external.get_schema", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"table":  table.Name,
			"fields": airtable.SupportedFields(table),
		})
	}
}

func CreateForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form := model.Form{Active: true}
		if err := render.DecodeJSON(r.Body, &form); err != nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body", "%s", err)
			return
		}
		form.OwnerID = middlewares.OwnerID(r)

		if !checkForm(app, w, r, form) {
			return
		}

		created, err := app.CreateForm(r.Context(), form)
		if err != nil {
			httpx.LogInternalError(w, "db.insert_form", err)
			return
		}

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, created)
	}
}

func ListForms(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		forms, err := app.FormsByOwner(r.Context(), middlewares.OwnerID(r))
		if err != nil {
			httpx.LogInternalError(w, "db.get_forms", err)
			return
		}

		render.JSON(w, r, map[string]any{
			"forms": forms,
		})
	}
}

func GetForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, ok := ownedForm(app, w, r, chi.URLParam(r, "id"))
		if !ok {
			return
		}

		render.JSON(w, r, form)
	}
}

// UpdateForm replaces title and questions, and the active flag when given.
// The version sent must match the stored one.
func UpdateForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stored, ok := ownedForm(app, w, r, chi.URLParam(r, "id"))
		if !ok {
			return
		}

		edit := struct {
			Version   int              `json:"version"`
			Title     string           `json:"title"`
			Questions []model.Question `json:"questions"`
			Active    *bool            `json:"active"`
		}{}
		if err := render.DecodeJSON(r.Body, &edit); err != nil {
			httpx.LogStatusMsg(w, http.StatusBadRequest, log.DebugLevel, "request.parse_body", "%s", err)
			return
		}

		form := stored
		form.Version = edit.Version
		form.Title = edit.Title
		form.Questions = edit.Questions
		if edit.Active != nil {
			form.Active = *edit.Active
		}

		if !checkForm(app, w, r, form) {
			return
		}

		updated, err := app.UpdateForm(r.Context(), form)
		switch {
		case errors.Is(err, database.ErrConflict):
			httpx.LogStatus(w, http.StatusConflict, log.DebugLevel, "db.update_form.verify.conflict")
			return
		case errors.Is(err, database.ErrNotFound):
			httpx.LogNotFound(w, "update_form", form.ID)
			return
		case err != nil:
			httpx.LogInternalError(w, "db.update_form", err)
			return
		}

		render.JSON(w, r, updated)
	}
}

func DeleteForm(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		form, ok := ownedForm(app, w, r, chi.URLParam(r, "id"))
		if !ok {
			return
		}

		err := app.DeleteForm(r.Context(), form.ID)
		switch {
		case errors.Is(err, database.ErrNotFound):
			httpx.LogNotFound(w, "delete_form", form.ID)
			return
		case err != nil:
			httpx.LogInternalError(w, "db.delete_form", err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// checkForm validates a form definition and checks its questions against
// the live table schema.
func checkForm(app app.App, w http.ResponseWriter, r *http.Request, form model.Form) bool {
	if err := validation.ValidateForm(form); err != nil {
		httpx.LogStatusJSON(w, r, http.StatusBadRequest, log.DebugLevel, httpx.ErrorBody{
			Code:    "invalid_form",
			Message: err.Error(),
		})
		return false
	}

	external, ok := ownerExternal(app, w, r)
	if !ok {
		return false
	}
	table, err := external.TableSchema(r.Context(), form.ExternalBaseID, form.ExternalTableID)
	if err != nil {
		externalError(w, "external.get_schema", err)
		return false
	}
	if key, ok := airtable.CheckQuestions(table, form.Questions); !ok {
		httpx.LogStatusJSON(w, r, http.StatusBadRequest, log.DebugLevel, httpx.ErrorBody{
			Code:        "unknown_field",
			Message:     "question is not bound to a supported field of the table",
			QuestionKey: key,
		})
		return false
	}
	return true
}

func ownedForm(app app.App, w http.ResponseWriter, r *http.Request, formID string) (model.Form, bool) {
	form, err := app.FormByID(r.Context(), formID)
	switch {
	case errors.Is(err, database.ErrNotFound):
		httpx.LogNotFound(w, "get_form", formID)
		return form, false
	case err != nil:
		httpx.LogInternalError(w, "db.get_form", err)
		return form, false
	}

	if form.OwnerID != middlewares.OwnerID(r) {
		httpx.LogStatus(w, http.StatusForbidden, log.DebugLevel, "get_form.owner")
		return form, false
	}
	return form, true
}

func ownerExternal(app app.App, w http.ResponseWriter, r *http.Request) (app.External, bool) {
	owner, err := app.OwnerByID(r.Context(), middlewares.OwnerID(r))
	if err != nil {
		httpx.LogInternalError(w, "db.get_owner", err)
		return nil, false
	}
	if owner.ExternalToken == "" {
		httpx.LogStatusMsg(w, http.StatusConflict, log.DebugLevel, "external.token", "connect an Airtable account first")
		return nil, false
	}
	return app.External(owner.ExternalToken), true
}

func externalError(w http.ResponseWriter, code string, err error) {
	var apiErr *airtable.APIError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
		httpx.LogNotFound(w, code, apiErr.Message)
		return
	}
	httpx.LogStatusMsg(w, http.StatusBadGateway, log.ErrorLevel, code, "%s", err)
}
