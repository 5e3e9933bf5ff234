package controllers

import (
	"net/http"

	"ecometrics/internal/models"
	"ecometrics/internal/providers"
	"ecometrics/internal/services"
)

type CertificateController struct {
	logger       providers.Logger
	certificates services.CertificateServiceInterface
	cache        providers.CacheProviderInterface
	clock        providers.ClockProviderInterface
}

type issueResponse struct {
	Message     string                   `json:"message"`
	Certificate models.CarbonCertificate `json:"certificate"`
	Stats       models.Assessment        `json:"stats"`
}

type latestResponse struct {
	Certificate models.CarbonCertificate `json:"certificate"`
	IsValid     bool                     `json:"is_valid"`
}

type historyResponse struct {
	Certificates []models.CarbonCertificate `json:"certificates"`
}

func NewCertificateController(logger providers.Logger, certificates services.CertificateServiceInterface, cache providers.CacheProviderInterface, clock providers.ClockProviderInterface) *CertificateController {
	return &CertificateController{
		logger:       logger,
		certificates: certificates,
		cache:        cache,
		clock:        clock,
	}
}

func (cc *CertificateController) Issue(w http.ResponseWriter, r *http.Request) {
	cert, assessment, err := cc.certificates.Issue(r.Context(), r.PathValue("app"), cc.clock.Now())
	if err != nil {
		writeError(w, r, cc.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, issueResponse{
		Message:     "Certificate issued successfully",
		Certificate: cert,
		Stats:       assessment,
	})
}

// Latest is not cached: is_valid depends on the moment of the request.
func (cc *CertificateController) Latest(w http.ResponseWriter, r *http.Request) {
	cert, err := cc.certificates.Latest(r.Context(), r.PathValue("app"))
	if err != nil {
		writeError(w, r, cc.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, latestResponse{Certificate: cert, IsValid: cert.IsValid(cc.clock.Now())})
}

func (cc *CertificateController) History(w http.ResponseWriter, r *http.Request) {
	appID := r.PathValue("app")
	serveFromCacheOrCompute(w, r, cc.cache, cc.logger, services.CertificatesCacheKey(appID), func() (any, error) {
		certs, err := cc.certificates.History(r.Context(), appID)
		if err != nil {
			return nil, err
		}
		if certs == nil {
			certs = []models.CarbonCertificate{}
		}
		return historyResponse{Certificates: certs}, nil
	})
}
