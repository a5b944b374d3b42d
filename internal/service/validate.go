package service

import (
	"regexp"
	"sort"
	"strings"
	"sync"

	"bellissimo/internal/domain"
)

var patternCache sync.Map // pattern -> *regexp.Regexp

func compilePattern(p string) (*regexp.Regexp, error) {
	if re, ok := patternCache.Load(p); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(p)
	if err != nil {
		return nil, err
	}
	patternCache.Store(p, re)
	return re, nil
}

// ValidateDetails checks a details payload against cfg. It fails on the first
// missing required field, undeclared field, or pattern mismatch, naming the field.
func ValidateDetails(cfg *FieldConfiguration, details map[string]string) error {
	for _, f := range cfg.Required {
		if strings.TrimSpace(details[f]) == "" {
			return domain.Validation(f, "is required for %s", cfg.MethodCode)
		}
	}

	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		if !cfg.Accepts(k) {
			return domain.Validation(k, "is not accepted by %s", cfg.MethodCode)
		}
	}
	for _, k := range keys {
		rule, ok := cfg.Validation[k]
		v := strings.TrimSpace(details[k])
		if !ok || v == "" {
			continue
		}
		re, err := compilePattern(rule.Pattern)
		if err != nil {
			return domain.WrapConfiguration(err, "invalid validation pattern for %s", k)
		}
		if !re.MatchString(v) {
			msg := rule.Message
			if msg == "" {
				msg = "is invalid"
			}
			return domain.Validation(k, "%s", msg)
		}
	}
	return nil
}
