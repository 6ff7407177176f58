package postgres

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/paperloft/api/internal/repositories"
)

type txContextKey struct{}

// Config carries the connection parameters for the postgres registry.
type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Logger          *zap.Logger
}

// Registry bundles the gorm-backed repositories over a shared connection pool.
type Registry struct {
	db *gorm.DB

	products   *ProductRepository
	categories *CategoryRepository
	customers  *CustomerRepository
	orders     *OrderRepository
	payments   *PaymentRepository
}

// NewRegistry opens the database, runs schema migration, and wires the repositories.
func NewRegistry(cfg Config) (*Registry, error) {
	if cfg.DSN == "" {
		return nil, errors.New("postgres: dsn is required")
	}

	gormCfg := &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Discard,
	}
	if cfg.Logger != nil {
		gormCfg.Logger = newZapGormLogger(cfg.Logger)
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN), gormCfg)
	if err != nil {
		return nil, repositories.NewError("postgres.open", repositories.ErrorKindUnavailable, "failed to open database", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, repositories.NewError("postgres.open", repositories.ErrorKindUnavailable, "failed to access connection pool", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := db.AutoMigrate(
		&categoryModel{},
		&productModel{},
		&addressModel{},
		&customerModel{},
		&orderModel{},
		&orderItemModel{},
		&paymentModel{},
	); err != nil {
		return nil, repositories.NewError("postgres.migrate", repositories.ErrorKindUnavailable, "schema migration failed", err)
	}

	registry := &Registry{db: db}
	registry.products = &ProductRepository{registry: registry}
	registry.categories = &CategoryRepository{registry: registry}
	registry.customers = &CustomerRepository{registry: registry}
	registry.orders = &OrderRepository{registry: registry}
	registry.payments = &PaymentRepository{registry: registry}
	return registry, nil
}

// Close releases the underlying connection pool.
func (r *Registry) Close(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Ping verifies database connectivity for health checks.
func (r *Registry) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Products implements repositories.Registry.
func (r *Registry) Products() repositories.ProductRepository { return r.products }

// Categories implements repositories.Registry.
func (r *Registry) Categories() repositories.CategoryRepository { return r.categories }

// Customers implements repositories.Registry.
func (r *Registry) Customers() repositories.CustomerRepository { return r.customers }

// Orders implements repositories.Registry.
func (r *Registry) Orders() repositories.OrderRepository { return r.orders }

// Payments implements repositories.Registry.
func (r *Registry) Payments() repositories.PaymentRepository { return r.payments }

// RunInTx runs fn inside a single database transaction. Repository calls
// made with the ctx handed to fn join that transaction; any error rolls
// the whole unit back.
func (r *Registry) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txContextKey{}, tx))
	})
}

// conn resolves the ambient transaction when present, else the shared pool.
func (r *Registry) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txContextKey{}).(*gorm.DB); ok && tx != nil {
		return tx
	}
	return r.db.WithContext(ctx)
}

// mapError normalises gorm failures into categorised repository errors.
func mapError(op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return repositories.NewError(op, repositories.ErrorKindNotFound, "record not found", err)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return repositories.NewError(op, repositories.ErrorKindConflict, "duplicate record", err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return repositories.NewError(op, repositories.ErrorKindUnavailable, "database call aborted", err)
	default:
		return repositories.NewError(op, repositories.ErrorKindUnknown, err.Error(), err)
	}
}

var _ repositories.Registry = (*Registry)(nil)

// zapGormLogger adapts gorm's logger interface onto zap.
type zapGormLogger struct {
	logger *zap.SugaredLogger
}

func newZapGormLogger(logger *zap.Logger) gormlogger.Interface {
	return &zapGormLogger{logger: logger.Sugar()}
}

func (l *zapGormLogger) LogMode(gormlogger.LogLevel) gormlogger.Interface { return l }

func (l *zapGormLogger) Info(_ context.Context, msg string, args ...any) {
	l.logger.Infof(msg, args...)
}

func (l *zapGormLogger) Warn(_ context.Context, msg string, args ...any) {
	l.logger.Warnf(msg, args...)
}

func (l *zapGormLogger) Error(_ context.Context, msg string, args ...any) {
	l.logger.Errorf(msg, args...)
}

func (l *zapGormLogger) Trace(_ context.Context, begin time.Time, fc func() (string, int64), err error) {
	if err == nil || errors.Is(err, gorm.ErrRecordNotFound) {
		return
	}
	sql, rows := fc()
	l.logger.Errorw("query failed", "sql", sql, "rows", rows, "elapsed", time.Since(begin), "error", err)
}
