package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// unsetEnv clears keys for the duration of the test so env-default
// values apply.
func unsetEnv(t *testing.T, keys ...string) {
	t.Helper()
	for _, key := range keys {
		prev, ok := os.LookupEnv(key)
		os.Unsetenv(key)
		if ok {
			t.Cleanup(func() { os.Setenv(key, prev) })
		}
	}
}

func TestLoadFromEnvDefaults(t *testing.T) {
	unsetEnv(t, "ENV", "DB_DRIVER", "STORAGE_PATH", "UPLOAD_MODE", "UPLOAD_DIR", "UPLOAD_URL_PREFIX")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Env != "dev" {
		t.Errorf("env = %q, want %q", cfg.Env, "dev")
	}
	if cfg.Database.Driver != DriverSQLite {
		t.Errorf("driver = %q, want %q", cfg.Database.Driver, DriverSQLite)
	}
	if cfg.Upload.Mode != UploadModeLocal {
		t.Errorf("upload mode = %q, want %q", cfg.Upload.Mode, UploadModeLocal)
	}
	if cfg.Upload.URLPrefix != "/schoolImages" {
		t.Errorf("url prefix = %q, want %q", cfg.Upload.URLPrefix, "/schoolImages")
	}
}

func TestLoadFromYAMLWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "local.yaml")
	yaml := `env: prod
http_server:
  address: "0.0.0.0:9000"
database:
  driver: mysql
  host: db.internal
  name: schools_db
upload:
  mode: remote
s3:
  bucket: school-images
  region: eu-north-1
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	unsetEnv(t, "ENV", "HTTP_SERVER_ADDR", "DB_DRIVER", "DB_PORT", "UPLOAD_MODE", "S3_BUCKET")
	t.Setenv("DB_HOST", "override.internal")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != "0.0.0.0:9000" {
		t.Errorf("addr = %q, want %q", cfg.Addr, "0.0.0.0:9000")
	}
	if cfg.Database.Host != "override.internal" {
		t.Errorf("host = %q, want env override", cfg.Database.Host)
	}
	if got := cfg.Database.DefaultPort(); got != 3306 {
		t.Errorf("default port = %d, want 3306", got)
	}
	if cfg.S3.Bucket != "school-images" {
		t.Errorf("bucket = %q, want %q", cfg.S3.Bucket, "school-images")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
	if !strings.Contains(err.Error(), "does not exist") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{
			name: "sqlite local ok",
			cfg: Config{
				Database: Database{Driver: DriverSQLite, StoragePath: "x.db"},
				Upload:   Upload{Mode: UploadModeLocal, Dir: "public/schoolImages"},
			},
		},
		{
			name: "unknown driver",
			cfg: Config{
				Database: Database{Driver: "oracle"},
				Upload:   Upload{Mode: UploadModeLocal, Dir: "d"},
			},
			wantErr: `unknown database driver "oracle"`,
		},
		{
			name: "remote without bucket",
			cfg: Config{
				Database: Database{Driver: DriverPostgres, Name: "schools_db"},
				Upload:   Upload{Mode: UploadModeRemote},
			},
			wantErr: "s3.bucket is required",
		},
		{
			name: "unknown upload mode",
			cfg: Config{
				Database: Database{Driver: DriverSQLite, StoragePath: "x.db"},
				Upload:   Upload{Mode: "ftp"},
			},
			wantErr: `unknown upload mode "ftp"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestDefaultPortKeepsExplicitValue(t *testing.T) {
	d := Database{Driver: DriverPostgres, Port: 6543}
	if got := d.DefaultPort(); got != 6543 {
		t.Fatalf("port = %d, want 6543", got)
	}
	d = Database{Driver: DriverPostgres}
	if got := d.DefaultPort(); got != 5432 {
		t.Fatalf("port = %d, want 5432", got)
	}
}
