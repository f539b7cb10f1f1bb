package usecase

import "go.uber.org/fx"

var Module = fx.Module("usecase",
	fx.Provide(NewCompositorUsecase),
	fx.Provide(NewDocumentUsecase),
	fx.Provide(NewInvitationUsecase),
	fx.Provide(NewSignatureUsecase),
	fx.Provide(NewUserUsecase),
)
