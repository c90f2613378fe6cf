package bridge

import (
	"log"
	"os"
	"strconv"

	cismodels "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Models"
)

func mustInt(env string, def int) int {
	v := os.Getenv(env)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("invalid %s: %v", env, err)
	}
	return i
}

func mustBool(env string, def bool) bool {
	v := os.Getenv(env)
	if v == "" {
		return def
	}
	if v == "1" || v == "true" || v == "TRUE" {
		return true
	}
	if v == "0" || v == "false" || v == "FALSE" {
		return false
	}
	log.Fatalf("invalid %s: %q", env, v)
	return def
}

func required(k string) string {
	v := os.Getenv(k)
	if v == "" {
		log.Fatalf("missing required env var %s", k)
	}
	return v
}

func defaultStr(k, d string) string {
	v := os.Getenv(k)
	if v == "" {
		return d
	}
	return v
}

// LoadFromEnv loads the bridge configuration from environment variables.
func LoadFromEnv() cismodels.BridgeConfig {
	return cismodels.BridgeConfig{
		BrokerHost:  os.Getenv("BROKER_HOST"),
		BrokerPort:  mustInt("BROKER_PORT", 1883),
		BrokerUser:  os.Getenv("BROKER_USER"),
		BrokerPass:  os.Getenv("BROKER_PASS"),
		UseTLS:      mustBool("BROKER_TLS", false),
		CACertPath:  os.Getenv("BROKER_CA_FILE"),
		Topic:       defaultStr("MQTT_TOPIC", "cistern/+/level"),
		ClientID:    defaultStr("MQTT_CLIENT_ID", "cistern-bridge-1"),
		SharedGroup: os.Getenv("MQTT_SHARED_GROUP"),

		ApiServiceURL:     defaultStr("API_SERVICE_URL", "http://localhost:3000"),
		InternalAPISecret: required("INTERNAL_API_SECRET"),

		HealthPort: defaultStr("BRIDGE_HEALTH_PORT", "8090"),
	}
}
