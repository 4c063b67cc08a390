package qr

// Config of the QR tracking-token issuer.
type Config struct {
	// TokenSecret is the secret bound into every tracking token
	TokenSecret string `mapstructure:"TokenSecret"`
	// TrackingBaseURL is the public base URL embedded into QR tracking links
	TrackingBaseURL string `mapstructure:"TrackingBaseURL"`
}
