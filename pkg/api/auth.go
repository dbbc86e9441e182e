package api

// DeviceAuthRequest is the device-exchange request body. A device obtains a
// credential pair from its stable installation identifier; no user-entered
// login exists in this flow.
type DeviceAuthRequest struct {
	DeviceID string `json:"device_id"`
}

// TokenResponse carries a freshly issued credential pair.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`  // JWT access token
	RefreshToken string `json:"refresh_token"` // opaque refresh token
	ExpiresIn    int64  `json:"expires_in"`    // access token lifetime, seconds
}

// ErrorResponse is the error body shape on any non-2xx status.
type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}
