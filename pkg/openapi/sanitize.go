package openapi

import (
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	descriptionPolicyOnce sync.Once
	descriptionPolicy     *bluemonday.Policy
)

func defaultDescriptionPolicy() *bluemonday.Policy {
	descriptionPolicyOnce.Do(func() {
		policy := bluemonday.StrictPolicy()
		policy.AllowElements("code", "em", "strong", "br")
		descriptionPolicy = policy
	})
	return descriptionPolicy
}

func sanitizeDescription(policy *bluemonday.Policy, raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" || policy == nil {
		return trimmed
	}
	return strings.TrimSpace(policy.Sanitize(trimmed))
}
