package cmd

import (
	"log/slog"

	inhttp "orderflow/internal/adapters/in/http"
	"orderflow/internal/adapters/out/amqp"
	"orderflow/internal/adapters/out/notifier"
	"orderflow/internal/adapters/out/postgres"
	"orderflow/internal/adapters/out/postgres/storerepo"
	"orderflow/internal/adapters/out/postgres/taskrepo"
	"orderflow/internal/core/application/scheduling"
	"orderflow/internal/core/application/usecases/commands"
	"orderflow/internal/core/application/usecases/queries"
	"orderflow/internal/core/domain/model/kernel"
	"orderflow/internal/core/domain/services"
	"orderflow/internal/jobs"

	"gorm.io/gorm"
)

type CompositionRoot struct {
	gormDB        *gorm.DB
	uowFactory    postgres.GormUnitOfWorkFactory
	taskScheduler *taskrepo.GormTaskScheduler
	storeRepo     *storerepo.GormStoreRepository
	dispatcher    *notifier.Dispatcher
	logger        *slog.Logger
}

func NewCompositionRoot(_ Config, gormDB *gorm.DB, amqpClient *amqp.Client, logger *slog.Logger) (CompositionRoot, error) {
	gateway, err := amqp.NewGateway(amqpClient)
	if err != nil {
		return CompositionRoot{}, err
	}

	return CompositionRoot{
		gormDB:        gormDB,
		uowFactory:    *postgres.NewGormUnitOfWorkFactory(gormDB),
		taskScheduler: taskrepo.NewGormTaskScheduler(gormDB),
		storeRepo:     storerepo.NewGormStoreRepository(gormDB, noopTracker{}),
		dispatcher:    notifier.NewDispatcher(gateway),
		logger:        logger,
	}, nil
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateOrderCommandHandler(f, c.CreateStageDeadlineScheduler(), c.dispatcher, c.logger)
}

func (c *CompositionRoot) CreateAdvanceOrderCommandHandler() commands.AdvanceOrderCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewAdvanceOrderCommandHandler(f, c.CreateStageDeadlineScheduler(), c.dispatcher, c.logger)
}

func (c *CompositionRoot) CreateCancelOrderCommandHandler() commands.CancelOrderCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewCancelOrderCommandHandler(f, c.CreateStageDeadlineScheduler(), c.dispatcher, c.logger)
}

func (c *CompositionRoot) CreateEscalateOrderCommandHandler() commands.EscalateOrderCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	return commands.NewEscalateOrderCommandHandler(f, c.dispatcher, c.logger)
}

func (c *CompositionRoot) CreateSweepEscalationsCommandHandler() commands.SweepEscalationsCommandHandler {
	var f commands.UoWFactory = FuncUoWFactory(func() commands.UoW {
		return c.uowFactory.Create()
	})
	escalate := c.CreateEscalateOrderCommandHandler()
	return commands.NewSweepEscalationsCommandHandler(f, escalate, services.NewDeadlineCalculator(), c.logger)
}

func (c *CompositionRoot) CreateStageDeadlineScheduler() *scheduling.StageDeadlineScheduler {
	escalate := c.CreateEscalateOrderCommandHandler()
	return scheduling.NewStageDeadlineScheduler(c.taskScheduler, c.storeRepo, escalate, c.logger)
}

func (c *CompositionRoot) CreateGetOrderStatusQueryHandler() queries.GetOrderStatusQueryHandler {
	return queries.NewGetOrderStatusQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		c.taskScheduler,
		c.CreateStageDeadlineScheduler(),
		c.CreateSweepEscalationsCommandHandler(),
		c.logger,
	)
}

func (c *CompositionRoot) CreateHTTPServer() *inhttp.Server {
	return inhttp.NewServer(
		c.CreateCreateOrderCommandHandler(),
		c.CreateAdvanceOrderCommandHandler(),
		c.CreateCancelOrderCommandHandler(),
		c.CreateGetOrderStatusQueryHandler(),
	)
}

type FuncUoWFactory func() commands.UoW

func (f FuncUoWFactory) Create() commands.UoW {
	return f()
}

// noopTracker satisfies the repository tracker contract for repositories
// used outside a unit of work, where change tracking has no transaction
// to report into.
type noopTracker struct{}

func (noopTracker) TrackAggregate(kernel.UUID, any) {}
