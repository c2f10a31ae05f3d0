package cfg

type Cfg struct {
	// Database configuration
	DBPath string

	// Article source configuration
	ScannerDBPath string
	FeedURLs      []string
	SyncLimit     int

	// Application configuration
	Port         string
	SyncInterval int
	WorkerCount  int
	APIAccessKey string

	// Curation policy
	DefaultTopN      int
	MinImpactScore   int
	MaxSelected      int
	MinAvgScore      float64
	EcommerceScoring bool

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
