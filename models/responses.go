package models

// ErrorMessageResponse is the body of every error response
type ErrorMessageResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// DataResponse is the body of every success response
type DataResponse struct {
	Status int         `json:"status"`
	Data   interface{} `json:"data"`
}

// HealthCheckResponse returns the health check response duh
type HealthCheckResponse struct {
	Alive bool `json:"alive"`
}
