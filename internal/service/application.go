package service

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/fx"

	"easysign/internal/app"
)

// Application runs the EasySign fx graph under a host process: the console,
// the Windows service control manager, or the debug runner.
type Application struct {
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	stopOnce sync.Once

	mu  sync.Mutex
	app *fx.App
	err error
}

func NewApplication() *Application {
	ctx, cancel := context.WithCancel(context.Background())
	return &Application{
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Run starts the service and blocks until SIGINT, SIGTERM or Shutdown
func (a *Application) Run() {
	defer close(a.done)

	fxApp := fx.New(
		fx.Provide(func() context.Context { return a.ctx }),
		app.Modules,
	)

	a.mu.Lock()
	a.app = fxApp
	a.mu.Unlock()

	if err := fxApp.Start(a.ctx); err != nil {
		a.setErr(err)
		return
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case <-sigChan:
	case <-a.ctx.Done():
	}

	a.stop()
}

// Shutdown stops a running application; it is safe to call more than once
func (a *Application) Shutdown() {
	a.cancel()
}

// Wait blocks until Run returns and reports the startup error, if any
func (a *Application) Wait() error {
	<-a.done
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.err
}

func (a *Application) stop() {
	a.stopOnce.Do(func() {
		a.mu.Lock()
		fxApp := a.app
		a.mu.Unlock()
		if fxApp == nil {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), fx.DefaultTimeout)
		defer cancel()
		a.setErr(fxApp.Stop(ctx))
	})
}

func (a *Application) setErr(err error) {
	if err == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err == nil {
		a.err = err
	}
}
