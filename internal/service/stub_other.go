//go:build !windows

package service

import "errors"

var ErrUnsupported = errors.New("service management is only available on windows")

// RunService runs the application in the foreground
func RunService(_ bool, app *Application) error {
	app.Run()
	return app.Wait()
}

func InstallService(string) error { return ErrUnsupported }

func UninstallService() error { return ErrUnsupported }

func StartService() error { return ErrUnsupported }

func StopService() error { return ErrUnsupported }

func IsWindowsService() (bool, error) { return false, nil }
