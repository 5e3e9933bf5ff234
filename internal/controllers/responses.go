package controllers

import (
	"net/http"

	json "github.com/goccy/go-json"
	"github.com/gookit/validate"
	"github.com/juju/errors"

	"ecometrics/internal/models"
	"ecometrics/internal/providers"
)

const maxRequestBodySize = 1 << 20 // 1 MB

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	gson, err := json.Marshal(body)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(gson)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errors.NotValid):
		return http.StatusUnprocessableEntity
	case errors.Is(err, errors.AlreadyExists):
		return http.StatusConflict
	case errors.Is(err, errors.NotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrInsufficientData):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err with the status of its kind. Unclassified errors
// are logged and never leak to the client.
func writeError(w http.ResponseWriter, r *http.Request, logger providers.Logger, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		logger.Errorf(providers.GetLogTypeByRequestType(r.Method), "%s %s: %s", r.Method, r.URL.Path, errors.Details(err))
		message = "Internal Server Error"
	}
	writeJSON(w, status, messageResponse{Message: message})
}

// decodeBody reads a size limited JSON body into dst and runs its validate
// tags. Malformed JSON is a 400, failed rules a 422.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, messageResponse{Message: "Bad Request"})
		return false
	}
	v := validate.Struct(dst)
	if !v.Validate() {
		writeJSON(w, http.StatusUnprocessableEntity, validationResponse{
			Message: v.Errors.One(),
			Errors:  v.Errors.All(),
		})
		return false
	}
	return true
}

type validationResponse struct {
	Message string                       `json:"message"`
	Errors  map[string]map[string]string `json:"errors"`
}

// serveFromCacheOrCompute answers from cache when possible. Only successful
// responses are cached; writes drop the key through the services.
func serveFromCacheOrCompute(w http.ResponseWriter, r *http.Request, cache providers.CacheProviderInterface, logger providers.Logger, cacheKey string, compute func() (any, error)) {
	if data, ok := cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		writeError(w, r, logger, err)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		writeError(w, r, logger, errors.Trace(err))
		return
	}

	cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}
