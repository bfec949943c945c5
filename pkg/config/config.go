package config

import (
	"fmt"
	"strings"

	"github.com/Layr-Labs/eigenx-reserves-go/pkg/hashing"
	"github.com/Layr-Labs/eigenx-reserves-go/pkg/reserves"
	"k8s.io/apimachinery/pkg/util/validation/field"
)

// Environment variable names for Reserves Server configuration
const (
	EnvReservesPort           = "RESERVES_PORT"
	EnvReservesHashAlgorithm  = "RESERVES_HASH_ALGORITHM"
	EnvReservesLeafTag        = "RESERVES_LEAF_TAG"
	EnvReservesBranchTag      = "RESERVES_BRANCH_TAG"
	EnvReservesLeafEncoding   = "RESERVES_LEAF_ENCODING"
	EnvReservesSource         = "RESERVES_SOURCE"
	EnvReservesRecordsFile    = "RESERVES_RECORDS_FILE"
	EnvReservesBadgerPath     = "RESERVES_BADGER_PATH"
	EnvReservesRedisAddress   = "RESERVES_REDIS_ADDRESS"
	EnvReservesRedisPassword  = "RESERVES_REDIS_PASSWORD"
	EnvReservesRedisDB        = "RESERVES_REDIS_DB"
	EnvReservesRedisKeyPrefix = "RESERVES_REDIS_KEY_PREFIX"
	EnvReservesSigningKey     = "RESERVES_SIGNING_KEY"
	EnvReservesSignedRoot     = "RESERVES_SIGNED_ROOT"
	EnvReservesIssuer         = "RESERVES_ISSUER"
	EnvReservesRateLimit      = "RESERVES_RATE_LIMIT"
	EnvReservesRateBurst      = "RESERVES_RATE_BURST"
	EnvReservesVerbose        = "RESERVES_VERBOSE"

	EnvReservesServerURL = "RESERVES_SERVER_URL"
)

const (
	DefaultPort      = 3000
	DefaultLeafTag   = "ProofOfReserve_Leaf"
	DefaultBranchTag = "ProofOfReserve_Branch"
	DefaultIssuer    = "eigenx-reserves"
	DefaultRateBurst = 20
)

// SourceType selects where the account records are loaded from
type SourceType string

const (
	SourceType_Demo   SourceType = "demo"
	SourceType_File   SourceType = "file"
	SourceType_Badger SourceType = "badger"
	SourceType_Redis  SourceType = "redis"
)

func (s SourceType) String() string {
	return string(s)
}

// GetSupportedSourceTypes returns all record source types
func GetSupportedSourceTypes() []SourceType {
	return []SourceType{
		SourceType_Demo,
		SourceType_File,
		SourceType_Badger,
		SourceType_Redis,
	}
}

// GetSupportedSourceTypesString returns supported source types for CLI help
func GetSupportedSourceTypesString() string {
	names := make([]string, 0, len(GetSupportedSourceTypes()))
	for _, s := range GetSupportedSourceTypes() {
		names = append(names, s.String())
	}
	return strings.Join(names, ", ")
}

// RedisConfig holds the connection settings for the redis record source
type RedisConfig struct {
	Address   string `json:"address"`
	Password  string `json:"password"`
	DB        int    `json:"db"`
	KeyPrefix string `json:"key_prefix"`
}

// SourceConfig describes the record source
type SourceConfig struct {
	Type        SourceType   `json:"type"`
	RecordsFile string       `json:"records_file"`
	BadgerPath  string       `json:"badger_path"`
	Redis       *RedisConfig `json:"redis,omitempty"`
}

// Validate checks the fields required by the selected source type
func (s *SourceConfig) Validate(path *field.Path) field.ErrorList {
	var allErrors field.ErrorList

	switch s.Type {
	case SourceType_Demo:
	case SourceType_File:
		if s.RecordsFile == "" {
			allErrors = append(allErrors, field.Required(path.Child("recordsFile"), "recordsFile is required for the file source"))
		}
	case SourceType_Badger:
		if s.BadgerPath == "" {
			allErrors = append(allErrors, field.Required(path.Child("badgerPath"), "badgerPath is required for the badger source"))
		}
	case SourceType_Redis:
		if s.Redis == nil || s.Redis.Address == "" {
			allErrors = append(allErrors, field.Required(path.Child("redis", "address"), "redis address is required for the redis source"))
		} else if s.Redis.DB < 0 || s.Redis.DB > 15 {
			allErrors = append(allErrors, field.Invalid(path.Child("redis", "db"), s.Redis.DB, "must be between 0-15"))
		}
	default:
		allErrors = append(allErrors, field.NotSupported(path.Child("type"), s.Type, sourceTypeNames()))
	}
	return allErrors
}

func sourceTypeNames() []string {
	var names []string
	for _, s := range GetSupportedSourceTypes() {
		names = append(names, s.String())
	}
	return names
}

// ReservesServerConfig holds the proof service configuration
type ReservesServerConfig struct {
	Port int `json:"port"`

	// Tree parameters
	HashAlgorithm string `json:"hash_algorithm"`
	LeafTag       string `json:"leaf_tag"`
	BranchTag     string `json:"branch_tag"`
	LeafEncoding  string `json:"leaf_encoding"`

	Source SourceConfig `json:"source"`

	// Signed root attestation
	SignedRoot     bool   `json:"signed_root"`
	SigningKeyPath string `json:"signing_key_path"` // PEM encoded ECDSA P-256 key, generated when empty
	Issuer         string `json:"issuer"`

	// Requests per second, 0 disables limiting
	RateLimit float64 `json:"rate_limit"`
	RateBurst int     `json:"rate_burst"`

	Debug   bool `json:"debug"`
	Verbose bool `json:"verbose"`
}

// NewDefaultReservesServerConfig returns a config serving the demo records
func NewDefaultReservesServerConfig() *ReservesServerConfig {
	return &ReservesServerConfig{
		Port:          DefaultPort,
		HashAlgorithm: hashing.DefaultAlgorithm,
		LeafTag:       DefaultLeafTag,
		BranchTag:     DefaultBranchTag,
		LeafEncoding:  string(reserves.DefaultLeafEncoding),
		Source:        SourceConfig{Type: SourceType_Demo},
		Issuer:        DefaultIssuer,
		RateBurst:     DefaultRateBurst,
	}
}

// Validate validates the reserves server configuration
func (c *ReservesServerConfig) Validate() error {
	var allErrors field.ErrorList

	if c.Port < 1 || c.Port > 65535 {
		allErrors = append(allErrors, field.Invalid(field.NewPath("port"), c.Port, "must be between 1-65535"))
	}
	if _, err := hashing.Lookup(c.HashAlgorithm); err != nil {
		allErrors = append(allErrors, field.NotSupported(field.NewPath("hashAlgorithm"), c.HashAlgorithm, hashing.Names()))
	}
	if c.LeafTag == "" {
		allErrors = append(allErrors, field.Required(field.NewPath("leafTag"), "leafTag is required"))
	}
	if c.BranchTag == "" {
		allErrors = append(allErrors, field.Required(field.NewPath("branchTag"), "branchTag is required"))
	}
	if _, err := reserves.ParseLeafEncoding(c.LeafEncoding); err != nil {
		allErrors = append(allErrors, field.NotSupported(field.NewPath("leafEncoding"), c.LeafEncoding,
			[]string{string(reserves.LeafEncodingOpen), string(reserves.LeafEncodingClosed)}))
	}

	allErrors = append(allErrors, c.Source.Validate(field.NewPath("source"))...)

	if c.SignedRoot && c.Issuer == "" {
		allErrors = append(allErrors, field.Required(field.NewPath("issuer"), "issuer is required when signing roots"))
	}
	if c.RateLimit < 0 {
		allErrors = append(allErrors, field.Invalid(field.NewPath("rateLimit"), c.RateLimit, "must not be negative"))
	}
	if c.RateLimit > 0 && c.RateBurst < 1 {
		allErrors = append(allErrors, field.Invalid(field.NewPath("rateBurst"), c.RateBurst, "must be at least 1 when rate limiting"))
	}

	if len(allErrors) > 0 {
		return allErrors.ToAggregate()
	}
	return nil
}

// TagsEqual reports whether leaves and branches share a tag, which removes
// domain separation between the two.
func (c *ReservesServerConfig) TagsEqual() bool {
	return c.LeafTag == c.BranchTag
}

// ReservesClientConfig holds the client configuration
type ReservesClientConfig struct {
	ServerURL     string `json:"server_url"`
	HashAlgorithm string `json:"hash_algorithm"`
	LeafTag       string `json:"leaf_tag"`
	BranchTag     string `json:"branch_tag"`
	LeafEncoding  string `json:"leaf_encoding"`
}

// Validate validates the client configuration
func (c *ReservesClientConfig) Validate() error {
	var allErrors field.ErrorList
	if c.ServerURL == "" {
		allErrors = append(allErrors, field.Required(field.NewPath("serverURL"), "serverURL is required"))
	} else if !strings.HasPrefix(c.ServerURL, "http://") && !strings.HasPrefix(c.ServerURL, "https://") {
		allErrors = append(allErrors, field.Invalid(field.NewPath("serverURL"), c.ServerURL, "must be an http(s) URL"))
	}
	if _, err := hashing.Lookup(c.HashAlgorithm); err != nil {
		allErrors = append(allErrors, field.NotSupported(field.NewPath("hashAlgorithm"), c.HashAlgorithm, hashing.Names()))
	}
	if c.LeafTag == "" {
		allErrors = append(allErrors, field.Required(field.NewPath("leafTag"), "leafTag is required"))
	}
	if c.BranchTag == "" {
		allErrors = append(allErrors, field.Required(field.NewPath("branchTag"), "branchTag is required"))
	}
	if _, err := reserves.ParseLeafEncoding(c.LeafEncoding); err != nil {
		allErrors = append(allErrors, field.NotSupported(field.NewPath("leafEncoding"), c.LeafEncoding,
			[]string{string(reserves.LeafEncodingOpen), string(reserves.LeafEncodingClosed)}))
	}
	if len(allErrors) > 0 {
		return allErrors.ToAggregate()
	}
	return nil
}

// Address returns the listen address for the configured port
func (c *ReservesServerConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}
