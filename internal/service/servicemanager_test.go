package service_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/larkwiot/shelfscan/internal/service"
	"github.com/stretchr/testify/assert"
)

type flakyService struct {
	name    string
	healthy atomic.Bool
	checks  atomic.Int32
}

func (f *flakyService) Name() string {
	return f.name
}

func (f *flakyService) SelfCheck() (bool, string) {
	return true, ""
}

func (f *flakyService) HealthCheck(context.Context) (bool, string) {
	f.checks.Add(1)
	if f.healthy.Load() {
		return true, ""
	}
	return false, "connection refused"
}

func TestCheckAllTracksLiveness(t *testing.T) {
	svcmgr := service.NewServiceManager(time.Hour)
	defer svcmgr.Close()

	backend := &flakyService{name: "backend"}
	backend.healthy.Store(true)
	svcmgr.Manage(backend)

	assert.True(t, svcmgr.IsLive("backend"))

	backend.healthy.Store(false)
	svcmgr.CheckAll()
	assert.False(t, svcmgr.IsLive("backend"))
	assert.Empty(t, svcmgr.GetLiveServices())

	backend.healthy.Store(true)
	svcmgr.CheckAll()
	assert.True(t, svcmgr.IsLive("backend"))
	assert.Len(t, svcmgr.GetLiveServices(), 1)
}

func TestWatchRunsPeriodically(t *testing.T) {
	svcmgr := service.NewServiceManager(5 * time.Millisecond)

	backend := &flakyService{name: "backend"}
	svcmgr.Manage(backend)

	assert.Eventually(t, func() bool {
		return !svcmgr.IsLive("backend")
	}, time.Second, 5*time.Millisecond)

	svcmgr.Close()
	svcmgr.Close()

	checks := backend.checks.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, checks, backend.checks.Load())
}
