package cfg

type MockLoader struct{}

func NewMockLoader() (*MockLoader, error) {
	return &MockLoader{}, nil
}

func (yl *MockLoader) Load() (*Config, error) {
	return &Config{
		// App
		App: App{
			Name:    "repo-scanner",
			Version: "0.0.1",
		},

		// Mysql
		Mysql: Mysql{
			Host:                  "127.0.0.1",
			Password:              "root",
			Username:              "root",
			Port:                  "3306",
			Database:              "repo_catalog",
			MaxIdleConnection:     10,
			MaxOpenConnection:     100,
			MaxLifeTimeConnection: 3600,
		},

		// Provider
		Provider: Provider{
			AccessToken:       "",
			SearchApiUrl:      "https://api.github.com/search/repositories",
			ReadmeApiUrl:      "https://api.github.com/repos/{full_name}/readme",
			RequestsPerSecond: 5,
			ThrottleDelay:     200,
			DefaultResetWait:  60,
		},

		// Scanner
		Scanner: Scanner{
			Languages:        []string{"JavaScript", "TypeScript", "Python", "Go", "Rust", "Java"},
			QuotaPerLanguage: 600,
			MinPopularity:    50,
			PageSize:         100,
			IntervalHours:    12,
			ItemPauseMs:      500,
			LanguagePauseMs:  5000,
			ExcerptLimit:     10000,
		},

		// Kafka
		Kafka: Kafka{
			Brokers: []string{},
			Producer: KafkaProducer{
				TopicCatalog: "catalog-records",
			},
			Consumer: KafkaConsumer{
				GroupId:   "catalog-consumer-group",
				BatchSize: 100,
			},
		},
	}, nil
}
