package cismodels

type BridgeConfig struct {
	// MQTT
	BrokerHost  string
	BrokerPort  int
	BrokerUser  string
	BrokerPass  string
	UseTLS      bool
	CACertPath  string
	Topic       string
	ClientID    string
	SharedGroup string // e.g., "bridges" to enable $share group consumption

	// API service
	ApiServiceURL     string
	InternalAPISecret string

	// Port for the bridge's own health endpoint
	HealthPort string
}
