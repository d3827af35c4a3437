package validators

import (
	"encoding/json"
	"regexp"

	"pagecraft-backend/domain/catalog"
	"pagecraft-backend/domain/config"
	"pagecraft-backend/domain/core/valueobjects"
	pkgerrors "pagecraft-backend/pkg/errors"
)

// NodeValidator validates node-related domain rules before a node reaches
// the canvas aggregate
type NodeValidator struct {
	cfg         *config.DomainConfig
	kindPattern *regexp.Regexp
}

// NewNodeValidator creates a node validator with default rules
func NewNodeValidator(cfg *config.DomainConfig) *NodeValidator {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &NodeValidator{
		cfg:         cfg,
		kindPattern: regexp.MustCompile(`^[a-z][a-z0-9-]*$`),
	}
}

// ValidateKind checks the element archetype tag. The vocabulary is closed
// around the catalog but extensible when the config allows unknown kinds.
func (v *NodeValidator) ValidateKind(kind string) error {
	if kind == "" {
		return pkgerrors.NewValidationError("node kind cannot be empty")
	}
	if len(kind) > v.cfg.MaxKindLength {
		return pkgerrors.NewValidationError("node kind exceeds maximum length")
	}
	if !v.kindPattern.MatchString(kind) {
		return pkgerrors.NewValidationError("node kind must be a lowercase tag")
	}
	if !v.cfg.AllowUnknownKinds && !catalog.Has(kind) {
		return pkgerrors.NewValidationError("unknown node kind: " + kind)
	}
	return nil
}

// ValidateAttributes checks that the attribute bag is JSON-serializable and
// within configured limits
func (v *NodeValidator) ValidateAttributes(attrs valueobjects.Attributes) error {
	if len(attrs) > v.cfg.MaxAttributesPerNode {
		return pkgerrors.NewValidationError("too many attributes")
	}
	if len(attrs.Text()) > v.cfg.MaxTextLength {
		return pkgerrors.NewValidationError("text payload exceeds maximum length")
	}
	if _, err := json.Marshal(map[string]interface{}(attrs)); err != nil {
		return pkgerrors.NewValidationError("attributes must be JSON-serializable")
	}
	return nil
}
