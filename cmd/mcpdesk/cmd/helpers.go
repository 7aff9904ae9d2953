package cmd

import (
	"strings"

	"github.com/barysiuk/mcpdesk/internal/core/service"
)

func joinIDs(ids []service.ID) string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = string(id)
	}
	return strings.Join(names, ", ")
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// redactToken keeps the first three and last four characters of a token.
func redactToken(token string) string {
	switch {
	case token == "":
		return "(not set)"
	case len(token) < 8:
		return strings.Repeat("*", len(token))
	default:
		return token[:3] + "******" + token[len(token)-4:]
	}
}
