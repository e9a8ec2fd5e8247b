package constants

import "time"

var CacheTTL = struct {
	Directory time.Duration
	Snapshot  time.Duration
	Videos    time.Duration
}{
	Directory: 5 * time.Minute,
	Snapshot:  24 * time.Hour,
	Videos:    2 * time.Hour,
}

var DirectoryConfig = struct {
	DefaultFeaturedLimit int
	DefaultReadRange     string
	FetchTimeout         time.Duration
}{
	DefaultFeaturedLimit: 8,
	DefaultReadRange:     "Speakers!A1:Z1000",
	FetchTimeout:         15 * time.Second,
}

var RedisConfig = struct {
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MaxRetries   int
	PoolSize     int
}{
	DialTimeout:  5 * time.Second,
	ReadTimeout:  3 * time.Second,
	WriteTimeout: 3 * time.Second,
	MaxRetries:   3,
	PoolSize:     10,
}

var CircuitBreakerConfig = struct {
	FailureThreshold int
	ResetTimeout     time.Duration
}{
	FailureThreshold: 3,
	ResetTimeout:     30 * time.Second,
}

var EnrichConfig = struct {
	MaxConcurrency  int
	BatchSize       int
	ScrapeTimeout   time.Duration
	ThumbnailFormat string
}{
	MaxConcurrency:  3,
	BatchSize:       50,
	ScrapeTimeout:   10 * time.Second,
	ThumbnailFormat: "https://img.youtube.com/vi/%s/mqdefault.jpg",
}

var ServerConfig = struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}{
	ReadTimeout:     10 * time.Second,
	WriteTimeout:    30 * time.Second,
	ShutdownTimeout: 10 * time.Second,
}
