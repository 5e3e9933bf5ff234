package providers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func namedHandler(name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(name))
	})
}

func serve(h http.Handler, method string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/test", nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRouterProvider_GetAddsRoute(t *testing.T) {
	rp := NewRouterProvider()
	rp.Get("/test", namedHandler("get"))

	routes := rp.GetRoutes()
	require.Len(t, routes, 1)
	assert.Equal(t, "/test", routes[0].Url)
}

func TestRouterProvider_GroupsMethodsPerURL(t *testing.T) {
	rp := NewRouterProvider()
	rp.Get("/applications/{app}/metrics/{metric}", namedHandler("show"))
	rp.Put("/applications/{app}/metrics/{metric}", namedHandler("amend"))
	rp.Delete("/applications/{app}/metrics/{metric}", namedHandler("remove"))
	rp.Post("/applications", namedHandler("create"))

	routes := rp.GetRoutes()
	require.Len(t, routes, 2)
	assert.Equal(t, "/applications/{app}/metrics/{metric}", routes[0].Url)
	assert.Equal(t, "/applications", routes[1].Url)

	h := routes[0].Handler
	assert.Equal(t, "show", serve(h, http.MethodGet).Body.String())
	assert.Equal(t, "amend", serve(h, http.MethodPut).Body.String())
	assert.Equal(t, "remove", serve(h, http.MethodDelete).Body.String())
}

func TestRouterProvider_RoutesMountOnServeMux(t *testing.T) {
	rp := NewRouterProvider()
	rp.Get("/applications", namedHandler("list"))
	rp.Post("/applications", namedHandler("create"))

	mux := http.NewServeMux()
	assert.NotPanics(t, func() {
		for _, route := range rp.GetRoutes() {
			mux.Handle(route.Url, route.Handler)
		}
	})
}

func TestMethodHandler_WrongMethod(t *testing.T) {
	rp := NewRouterProvider()
	rp.Get("/test", namedHandler("get"))
	rp.Post("/test", namedHandler("post"))

	rr := serve(rp.GetRoutes()[0].Handler, http.MethodPatch)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
	assert.Equal(t, "GET, POST", rr.Header().Get("Allow"))
}

func TestRouterProvider_PostRouteRejectsGet(t *testing.T) {
	rp := NewRouterProvider()
	rp.Post("/submit", namedHandler("post"))

	rr := serve(rp.GetRoutes()[0].Handler, http.MethodGet)
	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}
