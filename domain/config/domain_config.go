package config

import "time"

// DomainConfig holds all configurable business rules and constraints
type DomainConfig struct {
	// Canvas constraints
	MaxNodesPerCanvas int
	MaxPagesPerCanvas int
	MaxTreeDepth      int
	DefaultPageName   string
	DefaultPageRoute  string

	// Node constraints
	MaxAttributesPerNode int
	MaxKindLength        int
	MaxTextLength        int

	// Page constraints
	MaxPageNameLength  int
	MaxPageRouteLength int

	// Time constraints
	SessionTimeout time.Duration

	// Validation settings
	AllowUnknownKinds   bool
	RequireUniqueRoutes bool
	StampOwnerPageOnNew bool // retired fallback experiment, off to preserve legacy behavior
}

// DefaultDomainConfig returns the default domain configuration
func DefaultDomainConfig() *DomainConfig {
	return &DomainConfig{
		MaxNodesPerCanvas: 10000,
		MaxPagesPerCanvas: 100,
		MaxTreeDepth:      64,
		DefaultPageName:   "Home",
		DefaultPageRoute:  "/",

		MaxAttributesPerNode: 200,
		MaxKindLength:        50,
		MaxTextLength:        50000,

		MaxPageNameLength:  120,
		MaxPageRouteLength: 200,

		SessionTimeout: 24 * time.Hour,

		AllowUnknownKinds:   true,
		RequireUniqueRoutes: true,
		StampOwnerPageOnNew: false,
	}
}

// ProductionDomainConfig returns production-specific configuration
func ProductionDomainConfig() *DomainConfig {
	cfg := DefaultDomainConfig()

	cfg.MaxNodesPerCanvas = 5000
	cfg.MaxPagesPerCanvas = 50
	cfg.MaxTextLength = 20000
	cfg.AllowUnknownKinds = false

	return cfg
}

// DevelopmentDomainConfig returns development-specific configuration
func DevelopmentDomainConfig() *DomainConfig {
	cfg := DefaultDomainConfig()

	cfg.MaxNodesPerCanvas = 100000
	cfg.MaxTreeDepth = 256
	cfg.RequireUniqueRoutes = false

	return cfg
}

// LoadDomainConfig loads domain configuration based on environment
func LoadDomainConfig(environment string) *DomainConfig {
	switch environment {
	case "production":
		return ProductionDomainConfig()
	case "development":
		return DevelopmentDomainConfig()
	default:
		return DefaultDomainConfig()
	}
}
