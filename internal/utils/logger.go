package utils

import (
	"log"
	"strings"
)

// LogEvent writes one application-log line keyed by module and action.
// Message stays a short summary; never log sensitive payload through it.
func LogEvent(requestID, module, action, message string) {
	log.Printf("[%s] action=%s request_id=%s msg=%s",
		strings.ToUpper(strings.TrimSpace(module)),
		action,
		strings.TrimSpace(requestID),
		message,
	)
}
