package config

var defaults = map[string]any{
	"secret":      "",
	"session_ttl": 192, // 8 days
	"log_level":   "info",
	"listen":      ":8080",

	"base_url": "http://localhost:8080",

	"time_zone": "America/Argentina/Buenos_Aires",

	"nonce_store": "memory",

	"google.client_id":     "",
	"google.client_secret": "",
	"google.redirect_url":  "",

	"email.host":     "",
	"email.port":     25,
	"email.username": "",
	"email.password": "",
	"email.from":     "noreply@example.com",

	"storage.local.path": "./data/backoffice.db",
}

func Defaults() map[string]any {
	values := make(map[string]any)
	for k, v := range defaults {
		values[k] = v
	}
	return values
}
