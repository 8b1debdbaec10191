package testhelpers

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pulsefeed/backend/config"
	"github.com/pulsefeed/backend/internal/database"
)

// SetupTestDatabase starts a containerized PostgreSQL with pgvector and
// returns a migrated connection. Tests are skipped when docker is not
// available.
func SetupTestDatabase(t *testing.T) *gorm.DB {
	t.Helper()
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skip("docker not installed, skipping container-based test")
	}

	secretsDir, err := os.MkdirTemp("", "pulsefeed-test-secrets-*")
	if err != nil {
		t.Fatalf("failed to create temporary secrets directory: %v", err)
	}
	os.Setenv("SECRETS_DIR", secretsDir)
	t.Cleanup(func() {
		os.Unsetenv("SECRETS_DIR")
		if err := os.RemoveAll(secretsDir); err != nil {
			t.Errorf("failed to remove temporary secrets directory: %v", err)
		}
	})

	secrets := map[string]string{
		"db_user":     "postgres",
		"db_password": "postpass",
		"db_name":     "pulsefeed",
		"db_ssl_mode": "disable",
		"jwt_secret":  "test-jwt-secret",
	}
	for name, value := range secrets {
		if err := os.WriteFile(filepath.Join(secretsDir, name), []byte(value), 0644); err != nil {
			t.Fatalf("failed to write secret %s: %v", name, err)
		}
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		t.Fatalf("failed to load configuration: %v", err)
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "pgvector/pgvector:pg16",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     cfg.DBUser,
				"POSTGRES_PASSWORD": cfg.DBPassword,
				"POSTGRES_DB":       cfg.DBName,
			},
			WaitingFor: wait.ForAll(
				wait.ForListeningPort("5432/tcp"),
				wait.ForLog("database system is ready to accept connections"),
				wait.ForSQL("5432/tcp", "postgres", func(host string, port nat.Port) string {
					return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
						cfg.DBUser, cfg.DBPassword, host, port.Port(), cfg.DBName, cfg.DBSSLMode)
				}),
			).WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("failed to start container: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("failed to get container host: %v", err)
	}
	mappedPort, err := container.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("failed to get container port: %v", err)
	}

	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, mappedPort.Port(), cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to connect to database: %v", err)
	}

	if err := database.RunMigrations(db); err != nil {
		t.Fatalf("failed to migrate schema: %v", err)
	}

	return db
}
