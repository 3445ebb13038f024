package cfg

type (
	App struct {
		Name    string
		Version string
	}

	Mysql struct {
		Host                  string
		Port                  string
		Username              string
		Password              string
		Database              string
		MaxIdleConnection     int
		MaxOpenConnection     int
		MaxLifeTimeConnection int
	}

	// Provider holds everything needed to talk to the repository search API.
	Provider struct {
		AccessToken       string
		SearchApiUrl      string
		ReadmeApiUrl      string
		RequestsPerSecond int
		ThrottleDelay     int // ms to wait between limiter polls
		DefaultResetWait  int // seconds to wait on throttle when no reset header is present
	}

	// Scanner holds the crawl policy. Quota and cadence are configuration,
	// not invariants; changing them only changes catalog freshness.
	Scanner struct {
		Languages        []string
		QuotaPerLanguage int
		MinPopularity    int
		PageSize         int
		IntervalHours    int
		ItemPauseMs      int
		LanguagePauseMs  int
		ExcerptLimit     int
	}

	KafkaProducer struct {
		TopicCatalog string
	}

	KafkaConsumer struct {
		GroupId   string
		BatchSize int
	}

	Kafka struct {
		Brokers  []string
		Producer KafkaProducer
		Consumer KafkaConsumer
	}
)

type Config struct {
	App      App
	Mysql    Mysql
	Provider Provider
	Scanner  Scanner
	Kafka    Kafka
}
