package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gapmap-ai/gapmap-backend/config"
)

func TestInitializeFirebase_RequiresCredentials(t *testing.T) {
	_, err := InitializeFirebase(context.Background(), nil)
	assert.EqualError(t, err, "FIREBASE_CREDENTIALS_PATH is required")

	_, err = InitializeFirebase(context.Background(), &config.FirebaseConfig{ProjectID: "gapmap-dev"})
	assert.EqualError(t, err, "FIREBASE_CREDENTIALS_PATH is required")
}

func TestInitializeFirebase_MissingCredentialsFile(t *testing.T) {
	_, err := InitializeFirebase(context.Background(), &config.FirebaseConfig{
		CredentialsPath: t.TempDir() + "/missing.json",
		ProjectID:       "gapmap-dev",
	})
	assert.Error(t, err)
}
