package cfg

type Cfg struct {
	// Rendering configuration
	Decorator  string
	Format     string
	Unfiltered bool

	// Feed configuration
	FeedURL   string
	Releases  uint
	Start     uint
	Timeout   int
	UserAgent string

	// State configuration
	Diff     bool
	CacheDir string

	// Serve configuration
	Serve             bool
	Port              string
	SchedulerInterval int
	WorkerCount       int

	// Application metadata
	Timezone string
	Debug    bool
	Version  string
}
