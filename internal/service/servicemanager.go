package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/samber/lo"
)

type Service interface {
	Name() string
	SelfCheck() (bool, string)
	HealthCheck(ctx context.Context) (bool, string)
}

type ServiceManager struct {
	services            []Service
	servicesLock        sync.RWMutex
	liveServices        map[string]Service
	liveServicesLock    sync.RWMutex
	healthCheckInterval time.Duration
	quit                chan struct{}
	done                chan struct{}
	closeOnce           sync.Once
}

func NewServiceManager(healthCheckInterval time.Duration) *ServiceManager {
	svcmgr := &ServiceManager{
		services:            make([]Service, 0),
		liveServices:        make(map[string]Service),
		healthCheckInterval: healthCheckInterval,
		quit:                make(chan struct{}),
		done:                make(chan struct{}),
	}

	go svcmgr.watch()

	return svcmgr
}

// Manage registers a service. It counts as live until a check says otherwise.
func (dd *ServiceManager) Manage(service Service) {
	dd.servicesLock.Lock()
	defer dd.servicesLock.Unlock()
	dd.liveServicesLock.Lock()
	defer dd.liveServicesLock.Unlock()

	dd.services = append(dd.services, service)
	dd.liveServices[service.Name()] = service
}

func (dd *ServiceManager) Close() {
	dd.closeOnce.Do(func() {
		close(dd.quit)
		<-dd.done
	})
}

func (dd *ServiceManager) watch() {
	defer close(dd.done)

	ticker := time.NewTicker(dd.healthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-dd.quit:
			return
		case <-ticker.C:
			dd.CheckAll()
		}
	}
}

// CheckAll runs one round of checks and updates the live set.
func (dd *ServiceManager) CheckAll() {
	dd.servicesLock.RLock()
	services := append([]Service{}, dd.services...)
	dd.servicesLock.RUnlock()

	for _, service := range services {
		ctx, cancel := context.WithTimeout(context.Background(), dd.healthCheckInterval)
		up, reason := service.SelfCheck()
		if up {
			up, reason = service.HealthCheck(ctx)
		}
		cancel()

		dd.liveServicesLock.Lock()
		_, wasLive := dd.liveServices[service.Name()]
		if up {
			dd.liveServices[service.Name()] = service
		} else {
			delete(dd.liveServices, service.Name())
		}
		dd.liveServicesLock.Unlock()

		if !up && wasLive {
			log.Printf("warning: %s is down because: %s\n", service.Name(), reason)
		}
		if up && !wasLive {
			log.Printf("info: %s is back up\n", service.Name())
		}
	}
}

func (dd *ServiceManager) IsLive(name string) bool {
	dd.liveServicesLock.RLock()
	defer dd.liveServicesLock.RUnlock()
	_, live := dd.liveServices[name]
	return live
}

func (dd *ServiceManager) GetLiveServices() []Service {
	dd.liveServicesLock.RLock()
	defer dd.liveServicesLock.RUnlock()
	return lo.Values(dd.liveServices)
}
