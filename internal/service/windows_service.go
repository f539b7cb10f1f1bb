//go:build windows

package service

import (
	"fmt"
	"time"

	"golang.org/x/sys/windows/svc"
	"golang.org/x/sys/windows/svc/debug"
	"golang.org/x/sys/windows/svc/eventlog"
	"golang.org/x/sys/windows/svc/mgr"
)

const (
	ServiceName        = "EasySign"
	ServiceDisplayName = "EasySign Document Signing"
	ServiceDescription = "EasySign API for uploading, sharing and signing PDF documents"
)

var elog debug.Log

// handler adapts Application to svc.Handler
type handler struct {
	app *Application
}

func (h *handler) Execute(_ []string, r <-chan svc.ChangeRequest, changes chan<- svc.Status) (bool, uint32) {
	const accepted = svc.AcceptStop | svc.AcceptShutdown
	changes <- svc.Status{State: svc.StartPending}

	go h.app.Run()

	changes <- svc.Status{State: svc.Running, Accepts: accepted}
	elog.Info(1, ServiceName+" started")

	for {
		select {
		case c := <-r:
			switch c.Cmd {
			case svc.Interrogate:
				changes <- c.CurrentStatus
			case svc.Stop, svc.Shutdown:
				changes <- svc.Status{State: svc.StopPending}
				h.app.Shutdown()
				if err := h.app.Wait(); err != nil {
					elog.Error(1, fmt.Sprintf("%s stopped with error: %v", ServiceName, err))
					return false, 1
				}
				return false, 0
			default:
				elog.Warning(1, fmt.Sprintf("unexpected control request #%d", c.Cmd))
			}
		case <-h.app.done:
			// The fx graph exited on its own, usually a failed start.
			if err := h.app.Wait(); err != nil {
				elog.Error(1, fmt.Sprintf("%s exited: %v", ServiceName, err))
				return false, 1
			}
			return false, 0
		}
	}
}

// RunService hands the application to the service control manager, or to the
// console debug runner when isDebug is set.
func RunService(isDebug bool, app *Application) error {
	var err error
	if isDebug {
		elog = debug.New(ServiceName)
	} else if elog, err = eventlog.Open(ServiceName); err != nil {
		return fmt.Errorf("failed to open event log: %w", err)
	}
	defer elog.Close()

	run := svc.Run
	if isDebug {
		run = debug.Run
	}
	if err := run(ServiceName, &handler{app: app}); err != nil {
		elog.Error(1, fmt.Sprintf("%s failed: %v", ServiceName, err))
		return err
	}
	return nil
}

func InstallService(exePath string) error {
	m, err := mgr.Connect()
	if err != nil {
		return err
	}
	defer m.Disconnect()

	if s, err := m.OpenService(ServiceName); err == nil {
		s.Close()
		return fmt.Errorf("service %s already exists", ServiceName)
	}

	s, err := m.CreateService(ServiceName, exePath, mgr.Config{
		DisplayName: ServiceDisplayName,
		Description: ServiceDescription,
		StartType:   mgr.StartAutomatic,
	})
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}
	defer s.Close()

	if err := eventlog.InstallAsEventCreate(ServiceName, eventlog.Error|eventlog.Warning|eventlog.Info); err != nil {
		fmt.Printf("Warning: event log source not installed: %v\n", err)
	}

	// Restart with backoff, failure count resets after a day
	actions := []mgr.RecoveryAction{
		{Type: mgr.ServiceRestart, Delay: 5 * time.Second},
		{Type: mgr.ServiceRestart, Delay: 15 * time.Second},
		{Type: mgr.ServiceRestart, Delay: time.Minute},
	}
	if err := s.SetRecoveryActions(actions, uint32((24 * time.Hour).Seconds())); err != nil {
		fmt.Printf("Warning: recovery actions not set: %v\n", err)
	}

	return nil
}

func UninstallService() error {
	return withService(func(s *mgr.Service) error {
		_ = eventlog.Remove(ServiceName)
		return s.Delete()
	})
}

func StartService() error {
	return withService(func(s *mgr.Service) error {
		return s.Start()
	})
}

func StopService() error {
	return withService(func(s *mgr.Service) error {
		_, err := s.Control(svc.Stop)
		return err
	})
}

func IsWindowsService() (bool, error) {
	return svc.IsWindowsService()
}

func withService(fn func(s *mgr.Service) error) error {
	m, err := mgr.Connect()
	if err != nil {
		return err
	}
	defer m.Disconnect()

	s, err := m.OpenService(ServiceName)
	if err != nil {
		return fmt.Errorf("service %s not installed: %w", ServiceName, err)
	}
	defer s.Close()

	return fn(s)
}
