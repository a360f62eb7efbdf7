package config

// RegistryConfig selects and configures the registry store
type RegistryConfig struct {
	Type          string `json:"type,omitempty" yaml:"type,omitempty" validate:"omitempty,storetype"`
	JSONPath      string `json:"json_path,omitempty" yaml:"json_path,omitempty" validate:"required_if=Type json"`
	RedisAddr     string `json:"redis_addr,omitempty" yaml:"redis_addr,omitempty" validate:"required_if=Type redis"`
	RedisPassword string `json:"redis_password,omitempty" yaml:"redis_password,omitempty"`
	RedisDB       int    `json:"redis_db,omitempty" yaml:"redis_db,omitempty" validate:"omitempty,min=0"`
	RedisKey      string `json:"redis_key,omitempty" yaml:"redis_key,omitempty"`
}

// NewDefaultRegistryConfig creates default registry configuration
func NewDefaultRegistryConfig() RegistryConfig {
	return RegistryConfig{
		Type:      DefaultRegistryType,
		JSONPath:  DefaultRegistryJSONPath,
		RedisAddr: DefaultRedisAddr,
		RedisKey:  DefaultRedisKey,
	}
}

// ReferenceConfig points to the reference "certificate" document
type ReferenceConfig struct {
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// NewDefaultReferenceConfig creates default reference configuration
func NewDefaultReferenceConfig() ReferenceConfig {
	return ReferenceConfig{Path: DefaultReferencePath}
}
