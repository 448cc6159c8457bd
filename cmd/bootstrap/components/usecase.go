package components

import (
	"library-rental-api/internal/pkg/clock"
	"library-rental-api/internal/pkg/config"
	"library-rental-api/internal/usecase"
	"library-rental-api/internal/usecase/commands"
	"library-rental-api/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseValidatorsModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	NewRentalConfig,
)

func NewRentalConfig(cfg config.Config) config.RentalConfig {
	return cfg.Rental
}

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewAuthCommands,
		commands.NewBookCommands,
		commands.NewRentalCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewBookQueries,
		queries.NewRentalQueries,
	),
)

var usecaseValidatorsModule = fx.Module("usecase/validators",
	fx.Provide(
		usecase.NewTokenValidator,
	),
)
