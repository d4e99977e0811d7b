// Package testhelper starts throwaway MongoDB, PostgreSQL and Redis containers
// for store and feed tests. Each container is started once per test binary and
// lives until the process exits.
package testhelper

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

type sharedContainer struct {
	once sync.Once
	addr string
	err  error
}

var (
	mongoContainer    sharedContainer
	postgresContainer sharedContainer
	redisContainer    sharedContainer
)

// MongoURI returns a connection string for a shared MongoDB container.
func MongoURI(t *testing.T) string {
	t.Helper()
	addr := mongoContainer.start(t, testcontainers.ContainerRequest{
		Image:        "mongo:7",
		ExposedPorts: []string{"27017/tcp"},
		WaitingFor: wait.ForLog("Waiting for connections").
			WithStartupTimeout(60 * time.Second),
	}, "27017/tcp")
	return "mongodb://" + addr
}

// PostgresDSN returns a DSN for a shared PostgreSQL container.
func PostgresDSN(t *testing.T) string {
	t.Helper()
	addr := postgresContainer.start(t, testcontainers.ContainerRequest{
		Image:        "postgres:17-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
			"POSTGRES_DB":       "dailymoji",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}, "5432/tcp")
	return fmt.Sprintf("postgres://testuser:testpass@%s/dailymoji?sslmode=disable", addr)
}

// RedisAddr returns host:port of a shared Redis container.
func RedisAddr(t *testing.T) string {
	t.Helper()
	return redisContainer.start(t, testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor: wait.ForLog("Ready to accept connections").
			WithStartupTimeout(60 * time.Second),
	}, "6379/tcp")
}

func (c *sharedContainer) start(t *testing.T, req testcontainers.ContainerRequest, port nat.Port) string {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container-backed test in -short mode")
	}

	c.once.Do(func() {
		c.addr, c.err = startContainer(req, port)
	})
	if c.err != nil {
		t.Fatalf("testhelper: failed to start %s: %v", req.Image, c.err)
	}
	return c.addr
}

func startContainer(req testcontainers.ContainerRequest, port nat.Port) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return "", fmt.Errorf("start container: %w", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		return "", fmt.Errorf("get container host: %w", err)
	}

	mapped, err := container.MappedPort(ctx, port)
	if err != nil {
		return "", fmt.Errorf("get mapped port: %w", err)
	}

	return host + ":" + mapped.Port(), nil
}
