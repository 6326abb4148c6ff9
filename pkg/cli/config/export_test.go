package config

// NewLoggerForTest creates a Logger config for testing purposes
func NewLoggerForTest(level, format, output string) *Logger {
	return &Logger{level: level, format: format, output: output}
}

// NewRepositoryForTest creates a Repository config for testing purposes
func NewRepositoryForTest(backend, projectID string) *Repository {
	return &Repository{backend: backend, projectID: projectID}
}

// NewEstablishmentForTest creates an Establishment config for testing purposes
func NewEstablishmentForTest(paths ...string) *Establishment {
	return &Establishment{paths: paths}
}

// NewBrokerForTest creates a Broker config for testing purposes
func NewBrokerForTest(url, exchange string) *Broker {
	return &Broker{url: url, exchange: exchange}
}
