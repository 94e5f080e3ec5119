package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mbolis/quick-form/app"
	"github.com/mbolis/quick-form/routes/middlewares"
)

func Wire(app app.App) http.Handler {
	root := chi.NewRouter()
	root.Use(middleware.Logger, middleware.Recoverer)

	root.Mount("/api", apiRouter(app, middlewares.Owner(app.TokenSecret)))
	root.Handle("/metrics", promhttp.Handler())

	return root
}

func apiRouter(app app.App, ownerAuth func(http.Handler) http.Handler) http.Handler {
	api := chi.NewRouter()

	api.Get("/forms/{id}", PublicGetForm(app))
	api.Post("/forms/{id}/visibility", PublicFormVisibility(app))
	api.Post("/forms/{id}/responses", PublicSubmitResponse(app))

	api.
		With(middlewares.WebhookMAC(app.WebhookSecret)).
		Post("/webhooks/airtable", AirtableWebhook(app))

	api.Route("/admin", func(r chi.Router) {
		r.Use(ownerAuth)

		r.Put("/external-token", SetExternalToken(app))

		// external schema
		r.Get("/bases", ListBases(app))
		r.Get("/bases/{baseId}/tables", ListTables(app))
		r.Get("/bases/{baseId}/tables/{tableId}/fields", ListFields(app))

		// CRUD form
		r.Post("/forms", CreateForm(app))
		r.Get("/forms", ListForms(app))
		r.Get("/forms/{id}", GetForm(app))
		r.Put("/forms/{id}", UpdateForm(app))
		r.Delete("/forms/{id}", DeleteForm(app))

		r.Get("/forms/{id}/responses", ListResponses(app))
		r.Get("/forms/{id}/stats", FormStats(app))
		r.Get("/forms/{id}/analytics", FormAnalytics(app))
		r.Get("/forms/{id}/export", ExportResponses(app))

		r.Get("/responses/{id}", GetResponse(app))
		r.Delete("/responses/{id}", DeleteResponse(app))
	})

	api.Post("/login", Login(app))
	api.Post("/refresh", Refresh(app))

	return api
}
