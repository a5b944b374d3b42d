package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"bellissimo/internal/domain"
	"bellissimo/internal/models"
	"bellissimo/internal/repository"
	"bellissimo/pkg/cache"
)

// FieldRule is the pattern a detail value must match and the message shown when it doesn't.
type FieldRule struct {
	Pattern string `json:"pattern"`
	Message string `json:"message"`
}

// FieldConfiguration describes which detail fields a method takes.
// Disallowed lists fields other active methods declare; any undeclared field is rejected.
type FieldConfiguration struct {
	MethodID   uint                 `json:"method_id"`
	MethodCode string               `json:"method_code"`
	Required   []string             `json:"required"`
	Optional   []string             `json:"optional"`
	Disallowed []string             `json:"disallowed"`
	Validation map[string]FieldRule `json:"validation"`
}

// Accepts reports whether field is declared, required or optional.
func (c *FieldConfiguration) Accepts(field string) bool {
	for _, f := range c.Required {
		if f == field {
			return true
		}
	}
	for _, f := range c.Optional {
		if f == field {
			return true
		}
	}
	return false
}

// PaymentMethodRegistry serves payment methods and their field configurations.
type PaymentMethodRegistry struct {
	methods *repository.PaymentMethodRepository
	uow     *repository.UnitOfWork
	cache   cache.Cache
	ttl     time.Duration
}

func NewPaymentMethodRegistry(methods *repository.PaymentMethodRepository, uow *repository.UnitOfWork, c cache.Cache, ttl time.Duration) *PaymentMethodRegistry {
	if c == nil {
		c = cache.NewMemory()
	}
	return &PaymentMethodRegistry{methods: methods, uow: uow, cache: c, ttl: ttl}
}

func fieldConfigKey(methodID uint) string {
	return fmt.Sprintf("fieldcfg:%d", methodID)
}

func (r *PaymentMethodRegistry) ListActive(ctx context.Context) ([]models.PaymentMethod, error) {
	return r.methods.ListActive(ctx)
}

// GetFieldConfiguration returns the field configuration of an active method.
// Inactive and unknown methods are NotFound.
func (r *PaymentMethodRegistry) GetFieldConfiguration(ctx context.Context, methodID uint) (*FieldConfiguration, error) {
	var cached FieldConfiguration
	if ok, err := r.cache.Get(ctx, fieldConfigKey(methodID), &cached); err != nil {
		slog.Warn("field config cache read failed", "method_id", methodID, "error", err)
	} else if ok {
		return &cached, nil
	}

	m, err := r.methods.GetByID(ctx, methodID)
	if err != nil {
		return nil, err
	}
	if !m.IsActive {
		return nil, domain.NotFound("payment method %d is not active", methodID)
	}
	active, err := r.methods.ActiveFieldNames(ctx)
	if err != nil {
		return nil, err
	}
	cfg := buildFieldConfiguration(m, active)

	if err := r.cache.Set(ctx, fieldConfigKey(methodID), cfg, r.ttl); err != nil {
		slog.Warn("field config cache write failed", "method_id", methodID, "error", err)
	}
	return cfg, nil
}

func buildFieldConfiguration(m *models.PaymentMethod, activeFields []string) *FieldConfiguration {
	cfg := &FieldConfiguration{
		MethodID:   m.ID,
		MethodCode: m.Code,
		Required:   []string{},
		Optional:   []string{},
		Disallowed: []string{},
		Validation: map[string]FieldRule{},
	}
	own := make(map[string]bool, len(m.Fields))
	for _, f := range m.Fields {
		own[f.FieldName] = true
		if f.Required {
			cfg.Required = append(cfg.Required, f.FieldName)
		} else {
			cfg.Optional = append(cfg.Optional, f.FieldName)
		}
		if f.ValidationPattern != "" {
			cfg.Validation[f.FieldName] = FieldRule{Pattern: f.ValidationPattern, Message: f.ValidationMessage}
		}
	}
	for _, name := range activeFields {
		if !own[name] {
			cfg.Disallowed = append(cfg.Disallowed, name)
		}
	}
	sort.Strings(cfg.Disallowed)
	return cfg
}

// CreateMethod registers a new payment method with its fields.
func (r *PaymentMethodRegistry) CreateMethod(ctx context.Context, m *models.PaymentMethod) error {
	m.Code = strings.TrimSpace(strings.ToLower(m.Code))
	if m.Code == "" {
		return domain.Validation("code", "is required")
	}
	if strings.TrimSpace(m.Name) == "" {
		return domain.Validation("name", "is required")
	}
	if err := checkFieldConfigs(m.Fields); err != nil {
		return err
	}
	if err := r.methods.Create(ctx, m); err != nil {
		return err
	}
	r.invalidateAll(ctx)
	return nil
}

// ReplaceFields swaps a method's field configs atomically.
func (r *PaymentMethodRegistry) ReplaceFields(ctx context.Context, methodID uint, fields []models.PaymentFieldConfig) (*models.PaymentMethod, error) {
	if err := checkFieldConfigs(fields); err != nil {
		return nil, err
	}
	var out *models.PaymentMethod
	err := r.uow.Do(ctx, func(tx *repository.Repos) error {
		if _, err := tx.Methods.GetByID(ctx, methodID); err != nil {
			return err
		}
		if err := tx.Methods.ReplaceFields(ctx, methodID, fields); err != nil {
			return err
		}
		m, err := tx.Methods.GetByID(ctx, methodID)
		out = m
		return err
	})
	if err != nil {
		return nil, err
	}
	r.invalidateAll(ctx)
	return out, nil
}

func (r *PaymentMethodRegistry) SetActive(ctx context.Context, methodID uint, active bool) error {
	if err := r.methods.SetActive(ctx, methodID, active); err != nil {
		return err
	}
	r.invalidateAll(ctx)
	return nil
}

// invalidateAll drops every cached configuration; one method's fields feed the
// Disallowed list of all others.
func (r *PaymentMethodRegistry) invalidateAll(ctx context.Context) {
	ids, err := r.methods.ListIDs(ctx)
	if err != nil {
		slog.Warn("field config cache invalidation skipped", "error", err)
		return
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = fieldConfigKey(id)
	}
	if err := r.cache.Delete(ctx, keys...); err != nil {
		slog.Warn("field config cache invalidation failed", "error", err)
	}
}

var fieldNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,63}$`)

func checkFieldConfigs(fields []models.PaymentFieldConfig) error {
	seen := make(map[string]bool, len(fields))
	for i := range fields {
		f := &fields[i]
		f.FieldName = strings.TrimSpace(f.FieldName)
		if !fieldNamePattern.MatchString(f.FieldName) {
			return domain.Validation("field_name", "%q must be snake_case", f.FieldName)
		}
		if seen[f.FieldName] {
			return domain.Validation("field_name", "%q is declared twice", f.FieldName)
		}
		seen[f.FieldName] = true
		if f.ValidationPattern != "" {
			if _, err := regexp.Compile(f.ValidationPattern); err != nil {
				return domain.Validation("validation_pattern", "invalid pattern for %s: %v", f.FieldName, err)
			}
		}
		if f.Position == 0 {
			f.Position = i
		}
	}
	return nil
}
