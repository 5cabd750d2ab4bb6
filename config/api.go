package config

// GetAuthSkipperPaths returns paths exempt from /api authentication.
func GetAuthSkipperPaths() []string {
	return []string{"/health", "/graphql"}
}
