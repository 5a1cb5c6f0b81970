package tests

import (
	"context"
	"fmt"
	"log"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/testcontainers/testcontainers-go/modules/mongodb"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoImage = "mongo:latest"

// SetupTestDB starts a throwaway MongoDB container and returns a database
// handle plus a cleanup function. Callers should defer the cleanup; each
// test gets its own container so state never leaks between runs.
func SetupTestDB(t *testing.T) (*mongo.Database, func()) {
	t.Helper()
	ctx := context.Background()

	container, err := mongodb.Run(ctx, mongoImage)
	if err != nil {
		t.Fatalf("failed to start mongo container: %s", err)
	}

	uri, err := container.ConnectionString(ctx)
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to get connection string: %s", err)
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		_ = container.Terminate(ctx)
		t.Fatalf("failed to connect to mongo: %v", err)
	}

	cleanup := func() {
		if err := client.Disconnect(ctx); err != nil {
			log.Printf("failed to disconnect mongo: %v", err)
		}
		if err := container.Terminate(ctx); err != nil {
			log.Printf("failed to terminate container: %v", err)
		}
	}
	return client.Database("ruckplan_test"), cleanup
}

// MockAuthClient stands in for Firebase during tests. Tokens are plain
// strings registered up front; anything else fails verification.
type MockAuthClient struct {
	tokens map[string]*auth.Token
}

func NewMockAuthClient() *MockAuthClient {
	return &MockAuthClient{tokens: make(map[string]*auth.Token)}
}

func (m *MockAuthClient) VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error) {
	token, ok := m.tokens[idToken]
	if !ok {
		return nil, fmt.Errorf("invalid mock token %q", idToken)
	}
	return token, nil
}

// AddMockUser registers a token string resolving to the given uid and email.
func (m *MockAuthClient) AddMockUser(tokenString, uid, email string) {
	m.tokens[tokenString] = &auth.Token{
		UID: uid,
		Claims: map[string]interface{}{
			"email": email,
		},
	}
}
