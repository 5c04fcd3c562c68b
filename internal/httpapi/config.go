package httpapi

// Request limits for the JSON endpoints. A frame batch carrying embeddings
// is far larger than a control call, hence the generous body default.
const (
	defaultMaxBodyBytes = 4 << 20
	defaultMaxFrames    = 256
)

var (
	maxBodyBytes int64 = defaultMaxBodyBytes
	maxFrames          = defaultMaxFrames
)

// SetMaxBodyBytes bounds request bodies; n <= 0 restores the default.
func SetMaxBodyBytes(n int64) {
	if n <= 0 {
		n = defaultMaxBodyBytes
	}
	maxBodyBytes = n
}

// SetMaxFrames bounds the slots of one /frames batch; n <= 0 restores the default.
func SetMaxFrames(n int) {
	if n <= 0 {
		n = defaultMaxFrames
	}
	maxFrames = n
}

// CORS configuration (opt-in). If disabled, no CORS middleware is added.
var (
	corsEnabled        bool
	corsAllowedOrigins []string
	corsAllowedMethods []string
	corsAllowedHeaders []string
)

// SetCORSOptions configures CORS behavior for the HTTP server.
func SetCORSOptions(enabled bool, origins, methods, headers []string) {
	corsEnabled = enabled
	corsAllowedOrigins = append([]string(nil), origins...)
	corsAllowedMethods = append([]string(nil), methods...)
	corsAllowedHeaders = append([]string(nil), headers...)
}
