package application_test

import (
	"os"
	"testing"

	"cardswap/config"
)

func TestMain(m *testing.M) {
	testConfig := config.NewTestConfig()
	testConfig.DiscordToken = "test-token"
	config.SetTestConfig(testConfig)

	_ = config.Get()

	os.Exit(m.Run())
}
