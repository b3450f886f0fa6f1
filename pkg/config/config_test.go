package config

import "testing"

func TestApplyDefaults_FillsZeroFieldsOnly(t *testing.T) {
	c := Config{Port: 1234}
	c.ApplyDefaults()

	if c.Port != 1234 {
		t.Fatalf("expected an explicitly set field to survive ApplyDefaults, got %d", c.Port)
	}
	if c.Bind == "" {
		t.Fatal("expected Bind to receive a default")
	}
	if c.MaxPlayers == 0 {
		t.Fatal("expected MaxPlayers to receive a default")
	}
	if c.StreamDistance == 0 {
		t.Fatal("expected StreamDistance to receive a default")
	}
	if c.PlayerTimeout == 0 {
		t.Fatal("expected PlayerTimeout to receive a default")
	}
}

func TestDefault_IsFullyPopulated(t *testing.T) {
	c := Default()
	if c.Bind == "" || c.Port == 0 || c.MaxPlayers == 0 || c.StreamDistance == 0 || c.StreamRateMS == 0 {
		t.Fatalf("expected Default() to populate every field, got %+v", c)
	}
}
