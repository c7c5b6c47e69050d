package main

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeMigrator struct {
	version uint
	calls   []string
	steps   int
	upErr   error
	closed  bool
}

func (f *fakeMigrator) Up() error {
	f.calls = append(f.calls, "up")
	if f.upErr != nil {
		return f.upErr
	}
	f.version = 1
	return nil
}

func (f *fakeMigrator) Steps(n int) error {
	f.calls = append(f.calls, "steps")
	f.steps = n
	f.version = 0
	return nil
}

func (f *fakeMigrator) Down() error {
	f.calls = append(f.calls, "down")
	f.version = 0
	return nil
}

func (f *fakeMigrator) Version() (uint, bool, error) {
	if f.version == 0 {
		return 0, false, migrate.ErrNilVersion
	}
	return f.version, false, nil
}

func run(t *testing.T, f *fakeMigrator, args ...string) (string, error) {
	t.Helper()
	open := func(context.Context) (migrator, func(), error) {
		return f, func() { f.closed = true }, nil
	}
	cmd := newRootCmd(open, zap.NewNop())
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestUp(t *testing.T) {
	f := &fakeMigrator{}
	out, err := run(t, f, "up")
	require.NoError(t, err)
	assert.Equal(t, []string{"up"}, f.calls)
	assert.Contains(t, out, "version: 1 dirty: false")
	assert.True(t, f.closed)
}

func TestUp_NoChangeIsSuccess(t *testing.T) {
	f := &fakeMigrator{version: 1, upErr: migrate.ErrNoChange}
	_, err := run(t, f, "up")
	assert.NoError(t, err)
}

func TestUp_Failure(t *testing.T) {
	f := &fakeMigrator{upErr: errors.New("boom")}
	_, err := run(t, f, "up")
	assert.EqualError(t, err, "boom")
	assert.True(t, f.closed)
}

func TestDown_DefaultsToOneStep(t *testing.T) {
	f := &fakeMigrator{version: 1}
	out, err := run(t, f, "down")
	require.NoError(t, err)
	assert.Equal(t, -1, f.steps)
	assert.Contains(t, out, "version: none")
}

func TestDown_All(t *testing.T) {
	f := &fakeMigrator{version: 1}
	_, err := run(t, f, "down", "--all")
	require.NoError(t, err)
	assert.Equal(t, []string{"down"}, f.calls)
}

func TestDown_RejectsZeroSteps(t *testing.T) {
	f := &fakeMigrator{version: 1}
	_, err := run(t, f, "down", "--steps", "0")
	assert.Error(t, err)
	assert.Empty(t, f.calls, "migrator never opened")
}
