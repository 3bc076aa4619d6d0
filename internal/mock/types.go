package mock

import "time"

// Config represents the mock backend configuration
type Config struct {
	Port    int     `json:"port" yaml:"port"`       // Server port (default: 8000, 0 with an explicit host picks a free port)
	Host    string  `json:"host" yaml:"host"`       // Server host (default: localhost)
	Routes  []Route `json:"routes" yaml:"routes"`   // Route definitions, first match wins
	Logging bool    `json:"logging" yaml:"logging"` // Enable request logging
}

// Route represents a mock route configuration
type Route struct {
	Name        string            `json:"name,omitempty" yaml:"name,omitempty"`               // Route description
	Method      string            `json:"method" yaml:"method"`                               // HTTP method (GET, POST, etc.)
	Path        string            `json:"path" yaml:"path"`                                   // URL path pattern
	PathType    string            `json:"pathType,omitempty" yaml:"pathType,omitempty"`       // exact, prefix, regex (default: exact)
	URLContains string            `json:"urlContains,omitempty" yaml:"urlContains,omitempty"` // Match only when the submitted video url contains this
	Status      int               `json:"status" yaml:"status"`                               // HTTP status code
	Headers     map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`         // Response headers
	Body        string            `json:"body,omitempty" yaml:"body,omitempty"`               // Response body, {{url}} and {{videoId}} are expanded
	BodyFile    string            `json:"bodyFile,omitempty" yaml:"bodyFile,omitempty"`       // Path to response body file
	Delay       int               `json:"delay,omitempty" yaml:"delay,omitempty"`             // Response delay in milliseconds
	Description string            `json:"description,omitempty" yaml:"description,omitempty"` // Route documentation
}

// RequestLog represents a logged request
type RequestLog struct {
	Timestamp   time.Time     `json:"timestamp"`
	Method      string        `json:"method"`
	Path        string        `json:"path"`
	RequestID   string        `json:"requestId,omitempty"`
	VideoURL    string        `json:"videoUrl,omitempty"`
	MatchedRule string        `json:"matchedRule"`
	Status      int           `json:"status"`
	Duration    time.Duration `json:"duration"`
}
