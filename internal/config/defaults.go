package config

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 3001
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/tana/data/db/library.db"
	}
	if cfg.Storage.IndexPath == "" {
		cfg.Storage.IndexPath = "/usr/local/var/tana/data/indices/bleve"
	}
	if cfg.Explore.TimeoutSeconds == 0 {
		cfg.Explore.TimeoutSeconds = 5
	}
	if cfg.Explore.MaxResults == 0 {
		cfg.Explore.MaxResults = 60
	}
}
