package main

import (
	"go.uber.org/fx"

	"easysign/internal/app"
)

func main() {
	fx.New(app.Modules).Run()
}
