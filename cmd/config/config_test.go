package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"

	"forgechain/internal/testutil"
)

func TestLoadConfigDefault(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	defer os.Chdir(wd)
	viper.Reset()

	if err := os.Chdir("../.."); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}
	LoadConfig("")
	if AppConfig.Storage.Backend != "mem" {
		t.Fatalf("unexpected storage backend: %s", AppConfig.Storage.Backend)
	}
}

func TestLoadConfigOverride(t *testing.T) {
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	defer os.Chdir(wd)
	viper.Reset()

	if err := os.Chdir("../.."); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}
	LoadConfig("bootstrap")
	if AppConfig.Storage.Backend != "leveldb" {
		t.Fatalf("expected leveldb backend override, got %s", AppConfig.Storage.Backend)
	}
	if AppConfig.Logging.Level != "debug" {
		t.Fatalf("expected debug log level override")
	}
}

func TestLoadConfigSandbox(t *testing.T) {
	sb, err := testutil.NewSandbox()
	if err != nil {
		t.Fatalf("NewSandbox failed: %v", err)
	}
	defer sb.Cleanup()

	if err := os.Mkdir(sb.Path("config"), 0700); err != nil {
		t.Fatalf("Mkdir failed: %v", err)
	}

	data := []byte("storage:\n  backend: sandbox\n  db_path: /tmp/sandbox\n")
	if err := sb.WriteFile("config/default.yaml", data, 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd failed: %v", err)
	}
	defer os.Chdir(wd)
	viper.Reset()

	if err := os.Chdir(sb.Root); err != nil {
		t.Fatalf("chdir failed: %v", err)
	}
	LoadConfig("")

	if AppConfig.Storage.Backend != "sandbox" {
		t.Fatalf("expected storage backend sandbox, got %s", AppConfig.Storage.Backend)
	}
	if AppConfig.Storage.DBPath != "/tmp/sandbox" {
		t.Fatalf("expected db_path override")
	}
}
