package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"easysign/internal/config"
	"easysign/internal/service"
)

func main() {
	install := flag.Bool("install", false, "Install Windows service")
	uninstall := flag.Bool("uninstall", false, "Uninstall Windows service")
	start := flag.Bool("start", false, "Start the service")
	stop := flag.Bool("stop", false, "Stop the service")
	debug := flag.Bool("debug", false, "Run in debug/console mode")
	checkConfig := flag.Bool("check-config", false, "Load config.yaml and exit")
	version := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *version {
		fmt.Printf("EasySign %s\n", config.Version)
		os.Exit(0)
	}

	exePath, err := os.Executable()
	if err != nil {
		log.Fatal(err)
	}

	// config.yaml is looked up next to the binary
	if err := os.Chdir(filepath.Dir(exePath)); err != nil {
		log.Printf("Warning: could not change to executable directory: %v", err)
	}

	switch {
	case *checkConfig:
		cfg, err := config.NewConfig()
		if err != nil {
			log.Fatalf("Invalid configuration: %v", err)
		}
		fmt.Printf("Configuration OK: env=%s port=%d storage=%s lock=%s\n",
			cfg.App.Env, cfg.App.Port, cfg.Storage.Driver, cfg.Lock.Driver)

	case *install:
		if err := service.InstallService(exePath); err != nil {
			log.Fatalf("Failed to install service: %v", err)
		}
		fmt.Println("Service installed")

		if err := service.StartService(); err != nil {
			log.Printf("Warning: failed to start service: %v", err)
		} else {
			fmt.Println("Service started")
		}

	case *uninstall:
		_ = service.StopService()
		if err := service.UninstallService(); err != nil {
			log.Fatalf("Failed to uninstall service: %v", err)
		}
		fmt.Println("Service uninstalled")

	case *start:
		if err := service.StartService(); err != nil {
			log.Fatalf("Failed to start service: %v", err)
		}
		fmt.Println("Service started")

	case *stop:
		if err := service.StopService(); err != nil {
			log.Fatalf("Failed to stop service: %v", err)
		}
		fmt.Println("Service stopped")

	default:
		isService, err := service.IsWindowsService()
		if err != nil {
			log.Printf("Warning: could not determine if running as service: %v", err)
		}

		app := service.NewApplication()
		switch {
		case isService:
			err = service.RunService(false, app)
		case *debug:
			err = service.RunService(true, app)
		default:
			fmt.Printf("EasySign %s\n", config.Version)
			fmt.Println("Running in console mode. Press Ctrl+C to stop.")
			fmt.Println("Run with -h to list service management flags.")
			app.Run()
			err = app.Wait()
		}
		if err != nil {
			log.Fatalf("EasySign exited: %v", err)
		}
	}
}
