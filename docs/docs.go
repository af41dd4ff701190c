// Package docs Relief Coordination API.
//
// Documentation of the Relief Coordination API: emergency reports, volunteer
// coordination, incentives and donations.
//
//	 Schemes: https
//	 BasePath: /
//	 Version: 1.0.0
//
//	 Consumes:
//	 - application/json
//	 - multipart/form-data
//
//	 Produces:
//	 - application/json
//
//	 Security:
//	 - bearer
//
//	SecurityDefinitions:
//	bearer:
//	  type: apiKey
//	  name: Authorization
//	  in: header
//
// swagger:meta
package docs

import (
	"github.com/linesmerrill/relief-api/models"
)

// swagger:route GET /health health healthEndpointID
// Reports whether the web service is alive.
// responses:
//   200: healthResponse

// Shows the current health of the api. true means it is alive.
// swagger:response healthResponse
type healthResponseWrapper struct {
	// in:body
	Body models.HealthCheckResponse
}

// swagger:route POST /login users login
// Exchanges an email and password for a session token.
// responses:
//   200: loginResponse
//   401: errorResponse

// A signed session token and the user it belongs to.
// swagger:response loginResponse
type loginResponseWrapper struct {
	// in:body
	Body models.LoginResponse
}

// swagger:route POST /emergency emergencies createEmergency
// Reports a new emergency. Media files may be attached as multipart parts.
// responses:
//   201: emergencyResponse
//   400: errorResponse

// swagger:route GET /{emergencyId} emergencies emergencyByID
// Gets a single emergency by id.
// responses:
//   200: emergencyResponse
//   404: errorResponse

// A single emergency with its volunteers and history.
// swagger:response emergencyResponse
type emergencyResponseWrapper struct {
	// in:body
	Body models.Emergency
}

// swagger:route GET /active emergencies activeEmergencies
// Lists pending and in progress emergencies, filtered and sorted by the query.
// responses:
//   200: emergenciesResponse

// A list of emergencies.
// swagger:response emergenciesResponse
type emergenciesResponseWrapper struct {
	// in:body
	Body []models.Emergency
}

// swagger:route GET /coins/balance incentives coinBalance
// Gets the caller's coin balance.
// responses:
//   200: balanceResponse

// The caller's coins.
// swagger:response balanceResponse
type balanceResponseWrapper struct {
	// in:body
	Body models.CoinBalance
}

// An error with its http status.
// swagger:response errorResponse
type errorResponseWrapper struct {
	// in:body
	Body models.ErrorMessageResponse
}
