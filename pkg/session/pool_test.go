/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/oidyssey/oidyssey/pkg/logger"
	"github.com/oidyssey/oidyssey/pkg/models"
)

type fakeClock struct {
	current time.Time
}

func (c *fakeClock) now() time.Time {
	return c.current
}

func (c *fakeClock) advance(d time.Duration) {
	c.current = c.current.Add(d)
}

func newTestPool(t *testing.T, config *Config, factory HandleFactory) (*Pool, *fakeClock) {
	t.Helper()

	clock := &fakeClock{current: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}

	p := NewPool(config, factory, logger.NewTestLogger())
	p.now = clock.now

	t.Cleanup(p.Stop)

	return p, clock
}

func v2cCreds(community string) *models.Credentials {
	return &models.Credentials{Version: models.SNMPVersion2c, Community: community}
}

func TestAcquireReusesSession(t *testing.T) {
	ctrl := gomock.NewController(t)

	mockHandle := NewMockHandle(ctrl)
	mockHandle.EXPECT().Close()

	factory := NewMockHandleFactory(ctrl)
	factory.EXPECT().
		OpenHandle(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(mockHandle, nil).
		Times(1)

	p, _ := newTestPool(t, nil, factory)

	target := Target{Host: "192.168.1.1", Port: 161}
	creds := v2cCreds("public")

	first, err := p.Acquire(context.Background(), target, creds)
	require.NoError(t, err)

	second, err := p.Acquire(context.Background(), target, creds)
	require.NoError(t, err)

	assert.Equal(t, first.ID(), second.ID())
}

func TestAcquireHostNormalization(t *testing.T) {
	ctrl := gomock.NewController(t)

	mockHandle := NewMockHandle(ctrl)
	mockHandle.EXPECT().Close()

	factory := NewMockHandleFactory(ctrl)
	factory.EXPECT().
		OpenHandle(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(mockHandle, nil).
		Times(1)

	p, _ := newTestPool(t, nil, factory)

	creds := v2cCreds("public")

	first, err := p.Acquire(context.Background(), Target{Host: "Router-One"}, creds)
	require.NoError(t, err)

	second, err := p.Acquire(context.Background(), Target{Host: "router-one"}, creds)
	require.NoError(t, err)

	assert.Equal(t, first.ID(), second.ID())
}

func TestAcquireDistinctCredentialsDistinctSessions(t *testing.T) {
	ctrl := gomock.NewController(t)

	handleA := NewMockHandle(ctrl)
	handleA.EXPECT().Close()
	handleB := NewMockHandle(ctrl)
	handleB.EXPECT().Close()

	factory := NewMockHandleFactory(ctrl)
	factory.EXPECT().
		OpenHandle(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(handleA, nil)
	factory.EXPECT().
		OpenHandle(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(handleB, nil)

	p, _ := newTestPool(t, nil, factory)

	target := Target{Host: "192.168.1.1"}

	first, err := p.Acquire(context.Background(), target, v2cCreds("public"))
	require.NoError(t, err)

	second, err := p.Acquire(context.Background(), target, v2cCreds("private"))
	require.NoError(t, err)

	assert.NotEqual(t, first.ID(), second.ID())
}

func TestAcquireIdleTimeoutRecreates(t *testing.T) {
	ctrl := gomock.NewController(t)

	stale := NewMockHandle(ctrl)
	stale.EXPECT().Close()
	fresh := NewMockHandle(ctrl)
	fresh.EXPECT().Close()

	factory := NewMockHandleFactory(ctrl)
	factory.EXPECT().OpenHandle(gomock.Any(), gomock.Any(), gomock.Any()).Return(stale, nil)
	factory.EXPECT().OpenHandle(gomock.Any(), gomock.Any(), gomock.Any()).Return(fresh, nil)

	config := &Config{SessionTimeout: models.Duration(time.Minute)}
	p, clock := newTestPool(t, config, factory)

	target := Target{Host: "192.168.1.1"}
	creds := v2cCreds("public")

	first, err := p.Acquire(context.Background(), target, creds)
	require.NoError(t, err)

	clock.advance(2 * time.Minute)

	second, err := p.Acquire(context.Background(), target, creds)
	require.NoError(t, err)

	assert.NotEqual(t, first.ID(), second.ID())
}

func TestAcquireRequestCeilingRecreates(t *testing.T) {
	ctrl := gomock.NewController(t)

	worn := NewMockHandle(ctrl)
	worn.EXPECT().Close()
	fresh := NewMockHandle(ctrl)
	fresh.EXPECT().Close()

	factory := NewMockHandleFactory(ctrl)
	factory.EXPECT().OpenHandle(gomock.Any(), gomock.Any(), gomock.Any()).Return(worn, nil)
	factory.EXPECT().OpenHandle(gomock.Any(), gomock.Any(), gomock.Any()).Return(fresh, nil)

	config := &Config{MaxRequestsPerSession: 2}
	p, _ := newTestPool(t, config, factory)

	target := Target{Host: "192.168.1.1"}
	creds := v2cCreds("public")

	first, err := p.Acquire(context.Background(), target, creds)
	require.NoError(t, err)

	second, err := p.Acquire(context.Background(), target, creds)
	require.NoError(t, err)
	assert.Equal(t, first.ID(), second.ID())

	// The session hit its request ceiling; the next acquire rebuilds it.
	third, err := p.Acquire(context.Background(), target, creds)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID(), third.ID())
}

func TestAcquireEvictsIdleSessionAtCapacity(t *testing.T) {
	ctrl := gomock.NewController(t)

	idle := NewMockHandle(ctrl)
	idle.EXPECT().Close()
	fresh := NewMockHandle(ctrl)
	fresh.EXPECT().Close()

	factory := NewMockHandleFactory(ctrl)
	factory.EXPECT().OpenHandle(gomock.Any(), gomock.Any(), gomock.Any()).Return(idle, nil)
	factory.EXPECT().OpenHandle(gomock.Any(), gomock.Any(), gomock.Any()).Return(fresh, nil)

	config := &Config{MaxSessions: 1}
	p, _ := newTestPool(t, config, factory)

	creds := v2cCreds("public")

	first, err := p.Acquire(context.Background(), Target{Host: "192.168.1.1"}, creds)
	require.NoError(t, err)

	p.Release(first.ID())

	second, err := p.Acquire(context.Background(), Target{Host: "192.168.1.2"}, creds)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID(), second.ID())
	assert.Len(t, p.Sessions(), 1)
}

func TestAcquireCapacityErrorWhenAllActive(t *testing.T) {
	ctrl := gomock.NewController(t)

	mockHandle := NewMockHandle(ctrl)
	mockHandle.EXPECT().Close()

	factory := NewMockHandleFactory(ctrl)
	factory.EXPECT().
		OpenHandle(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(mockHandle, nil).
		Times(1)

	config := &Config{MaxSessions: 1}
	p, _ := newTestPool(t, config, factory)

	creds := v2cCreds("public")

	_, err := p.Acquire(context.Background(), Target{Host: "192.168.1.1"}, creds)
	require.NoError(t, err)

	_, err = p.Acquire(context.Background(), Target{Host: "192.168.1.2"}, creds)
	require.ErrorIs(t, err, ErrPoolAtCapacity)
}

func TestAcquireValidatesInput(t *testing.T) {
	ctrl := gomock.NewController(t)

	p, _ := newTestPool(t, nil, NewMockHandleFactory(ctrl))

	_, err := p.Acquire(context.Background(), Target{Host: "  "}, v2cCreds("public"))
	require.ErrorIs(t, err, ErrInvalidHost)

	_, err = p.Acquire(context.Background(), Target{Host: "192.168.1.1"}, nil)
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAcquireRedactsCredentialOnFailure(t *testing.T) {
	ctrl := gomock.NewController(t)

	factory := NewMockHandleFactory(ctrl)
	factory.EXPECT().
		OpenHandle(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New(`authentication failed for community "s3cret-community"`))

	p, _ := newTestPool(t, nil, factory)

	_, err := p.Acquire(context.Background(), Target{Host: "192.168.1.1"}, v2cCreds("s3cret-community"))
	require.ErrorIs(t, err, ErrHandleCreation)
	assert.Contains(t, err.Error(), "192.168.1.1")
	assert.NotContains(t, err.Error(), "s3cret-community")
}

func TestCloseAndCloseAll(t *testing.T) {
	ctrl := gomock.NewController(t)

	handleA := NewMockHandle(ctrl)
	handleA.EXPECT().Close()
	handleB := NewMockHandle(ctrl)
	handleB.EXPECT().Close()

	factory := NewMockHandleFactory(ctrl)
	factory.EXPECT().OpenHandle(gomock.Any(), gomock.Any(), gomock.Any()).Return(handleA, nil)
	factory.EXPECT().OpenHandle(gomock.Any(), gomock.Any(), gomock.Any()).Return(handleB, nil)

	p, _ := newTestPool(t, nil, factory)

	creds := v2cCreds("public")

	first, err := p.Acquire(context.Background(), Target{Host: "192.168.1.1"}, creds)
	require.NoError(t, err)

	_, err = p.Acquire(context.Background(), Target{Host: "192.168.1.2"}, creds)
	require.NoError(t, err)

	p.Close(first.ID())
	assert.Len(t, p.Sessions(), 1)

	p.CloseAll()
	assert.Empty(t, p.Sessions())
}

func TestSweepClosesInvalidSessions(t *testing.T) {
	ctrl := gomock.NewController(t)

	mockHandle := NewMockHandle(ctrl)
	mockHandle.EXPECT().Close()

	factory := NewMockHandleFactory(ctrl)
	factory.EXPECT().OpenHandle(gomock.Any(), gomock.Any(), gomock.Any()).Return(mockHandle, nil)

	config := &Config{SessionTimeout: models.Duration(time.Minute)}
	p, clock := newTestPool(t, config, factory)

	_, err := p.Acquire(context.Background(), Target{Host: "192.168.1.1"}, v2cCreds("public"))
	require.NoError(t, err)

	clock.advance(2 * time.Minute)
	p.sweep()

	assert.Empty(t, p.Sessions())
}

func TestHealthCheck(t *testing.T) {
	ctrl := gomock.NewController(t)

	mockHandle := NewMockHandle(ctrl)
	mockHandle.EXPECT().Close()

	factory := NewMockHandleFactory(ctrl)
	factory.EXPECT().OpenHandle(gomock.Any(), gomock.Any(), gomock.Any()).Return(mockHandle, nil)

	config := &Config{SessionTimeout: models.Duration(time.Minute)}
	p, clock := newTestPool(t, config, factory)

	s, err := p.Acquire(context.Background(), Target{Host: "192.168.1.1"}, v2cCreds("public"))
	require.NoError(t, err)

	statuses := p.HealthCheck()
	require.Len(t, statuses, 1)
	assert.Equal(t, s.ID(), statuses[0].ID)
	assert.True(t, statuses[0].Alive)

	clock.advance(2 * time.Minute)

	statuses = p.HealthCheck()
	require.Len(t, statuses, 1)
	assert.False(t, statuses[0].Alive)
}

func TestMetrics(t *testing.T) {
	ctrl := gomock.NewController(t)

	mockHandle := NewMockHandle(ctrl)
	mockHandle.EXPECT().Close()

	factory := NewMockHandleFactory(ctrl)
	factory.EXPECT().OpenHandle(gomock.Any(), gomock.Any(), gomock.Any()).Return(mockHandle, nil)

	config := &Config{MaxSessions: 10, EnableMetrics: true}
	p, _ := newTestPool(t, config, factory)

	_, err := p.Acquire(context.Background(), Target{Host: "192.168.1.1"}, v2cCreds("public"))
	require.NoError(t, err)

	p.RecordExchange(10*time.Millisecond, nil)
	p.RecordExchange(30*time.Millisecond, nil)
	p.RecordExchange(0, errors.New("timeout"))

	m := p.Metrics()
	assert.Equal(t, 1, m.TotalSessions)
	assert.Equal(t, 1, m.ActiveSessions)
	assert.Equal(t, uint64(1), m.TotalRequests)
	assert.InDelta(t, 20.0, m.AvgLatencyMs, 0.001)
	assert.InDelta(t, 1.0/3.0, m.ErrorRate, 0.001)
	assert.InDelta(t, 0.1, m.Utilization, 0.001)
}

func TestFingerprintNeverEmbedsSecret(t *testing.T) {
	creds := v2cCreds("very-secret-community")

	fp := Fingerprint(creds)
	assert.NotContains(t, fp, "very-secret-community")
	assert.Equal(t, Fingerprint(v2cCreds("very-secret-community")), fp)
	assert.NotEqual(t, Fingerprint(v2cCreds("other")), fp)
}
