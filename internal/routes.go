package internal

import (
	"net/http"

	"ecometrics/internal/controllers"
	"ecometrics/internal/providers"
)

func InitRoutes(applications *controllers.ApplicationController, metrics *controllers.MetricController, certificates *controllers.CertificateController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/applications", http.HandlerFunc(applications.Index))
	routers.Post("/applications", http.HandlerFunc(applications.Store))
	routers.Get("/applications/{app}", http.HandlerFunc(applications.Show))
	routers.Delete("/applications/{app}", http.HandlerFunc(applications.Destroy))

	routers.Get("/applications/{app}/metrics", http.HandlerFunc(metrics.Index))
	routers.Post("/applications/{app}/metrics", http.HandlerFunc(metrics.Store))
	routers.Get("/applications/{app}/metrics/stats", http.HandlerFunc(metrics.Stats))
	routers.Get("/applications/{app}/metrics/{metric}", http.HandlerFunc(metrics.Show))
	routers.Put("/applications/{app}/metrics/{metric}", http.HandlerFunc(metrics.Update))
	routers.Delete("/applications/{app}/metrics/{metric}", http.HandlerFunc(metrics.Destroy))

	routers.Post("/applications/{app}/issue-certificate", http.HandlerFunc(certificates.Issue))
	routers.Get("/applications/{app}/certificate", http.HandlerFunc(certificates.Latest))
	routers.Get("/applications/{app}/certificates", http.HandlerFunc(certificates.History))
	return routers
}
