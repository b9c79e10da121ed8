package types

// GeneratedRecipe is the fixed shape every upstream response is normalised into
type GeneratedRecipe struct {
	Title    string   `json:"title"`
	PrepTime string   `json:"prep_time"`
	Servings int      `json:"servings"`
	Steps    []string `json:"steps"`
}

// GenerationDiagnostics is returned by GET /api/generate
type GenerationDiagnostics struct {
	TestRecipe  GeneratedRecipe        `json:"test_recipe"`
	Environment DiagnosticsEnvironment `json:"environment"`
}

type DiagnosticsEnvironment struct {
	WebhookURLConfigured bool `json:"webhook_url_configured"`
	RateLimitEnabled     bool `json:"rate_limit_enabled"`
	SessionAuthEnabled   bool `json:"session_auth_enabled"`
}

// RateLimitStatus reports the caller's remaining generation budget
type RateLimitStatus struct {
	Limit     int    `json:"limit"`
	Remaining int    `json:"remaining"`
	ResetTime int64  `json:"reset_time"`
	Window    string `json:"window"`
}
