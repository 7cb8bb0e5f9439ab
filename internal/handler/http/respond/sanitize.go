package respond

import (
	"regexp"
)

var (
	// Order matters: the Anthropic pattern is more specific than the OpenAI one.
	anthropicKeyPattern = regexp.MustCompile(`sk-ant-[a-zA-Z0-9-_]+`)
	// DeepSeek and OpenAI keys share the sk- prefix. Already masked values
	// contain '*' and are not matched again.
	openaiKeyPattern = regexp.MustCompile(`sk-[a-zA-Z0-9]{10,}`)
	// Gemini API keys.
	googleKeyPattern = regexp.MustCompile(`AIza[0-9A-Za-z_-]{20,}`)
	// NewsAPI keys travel as a query parameter or header value.
	newsAPIKeyPattern = regexp.MustCompile(`(?i)(apiKey=|X-Api-Key:\s*)[0-9a-f]{16,}`)

	// Webhook URLs carry their secret in the path.
	webhookPattern = regexp.MustCompile(`(https://(?:[a-z]+\.)?discord(?:app)?\.com/api/webhooks/|https://hooks\.slack\.com/services/)[^\s"':]+`)

	// Password inside a DSN.
	dbPasswordPattern = regexp.MustCompile(`://([^:/@]+):([^@]+)@`)
)

// SanitizeError returns err's message with API keys and DSN passwords masked.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()

	msg = anthropicKeyPattern.ReplaceAllString(msg, "sk-ant-****")
	msg = openaiKeyPattern.ReplaceAllString(msg, "sk-****")
	msg = googleKeyPattern.ReplaceAllString(msg, "AIza****")
	msg = newsAPIKeyPattern.ReplaceAllString(msg, "${1}****")
	msg = webhookPattern.ReplaceAllString(msg, "${1}****")
	msg = dbPasswordPattern.ReplaceAllString(msg, "://$1:****@")

	return msg
}
