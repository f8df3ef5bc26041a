package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"example.com/freightline/services/settlement/internal/aggregation"
	"example.com/freightline/services/settlement/internal/auth"
	"example.com/freightline/services/settlement/internal/cache"
	"example.com/freightline/services/settlement/internal/messaging"
	"example.com/freightline/services/settlement/internal/models"
	"example.com/freightline/services/settlement/internal/repository"
)

// Service defines the business logic operations
type Service interface {
	// Auth operations
	Register(ctx context.Context, user *models.User, password string) (string, error)
	Login(ctx context.Context, email, password string) (string, *models.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	ForgotPassword(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword string) (string, error)

	// Carrier operations
	CreateCarrier(ctx context.Context, actor *models.User, carrier *models.Carrier) error
	GetCarrier(ctx context.Context, id uuid.UUID) (*models.Carrier, error)
	ListCarriers(ctx context.Context) ([]*models.Carrier, error)
	UpdateCarrier(ctx context.Context, actor *models.User, carrier *models.Carrier) error
	DeleteCarrier(ctx context.Context, actor *models.User, id uuid.UUID) error

	// Settlement operations
	CreateSettlement(ctx context.Context, actor *models.User, settlement *models.Settlement) error
	GetSettlement(ctx context.Context, id uuid.UUID) (*models.Settlement, error)
	ListSettlements(ctx context.Context) ([]*models.Settlement, error)
	ListCarrierSettlements(ctx context.Context, carrierID uuid.UUID) ([]*models.Settlement, error)
	UpdateSettlement(ctx context.Context, actor *models.User, settlement *models.Settlement) error
	DeleteSettlement(ctx context.Context, actor *models.User, id uuid.UUID) error

	// Line-item operations, shared across the seven child kinds
	CreateLineItem(ctx context.Context, actor *models.User, settlementID uuid.UUID, item models.LineItem) error
	GetLineItem(ctx context.Context, kind models.Kind, id uuid.UUID) (models.LineItem, error)
	ListSettlementLineItems(ctx context.Context, kind models.Kind, settlementID uuid.UUID) ([]models.LineItem, error)
	UpdateLineItem(ctx context.Context, actor *models.User, item models.LineItem) error
	DeleteLineItem(ctx context.Context, actor *models.User, kind models.Kind, id uuid.UUID) error

	// Reconcile recomputes every derived aggregate from scratch
	Reconcile(ctx context.Context) error
}

// service is an implementation of the Service interface
type service struct {
	repo            repository.Repository
	cache           cache.RedisClient
	messagingClient messaging.ServiceBusClient
	tokens          *auth.Manager
	engine          *aggregation.Engine
	coordinator     *aggregation.Coordinator
	log             *logrus.Logger
}

// ServiceConfig holds the configuration for the service
type ServiceConfig struct {
	Repository      repository.Repository
	Cache           cache.RedisClient
	MessagingClient messaging.ServiceBusClient
	Tokens          *auth.Manager
	Logger          *logrus.Logger
}

// NewService creates a new service instance
func NewService(config ServiceConfig) (Service, error) {
	if config.Repository == nil {
		return nil, errors.New("repository is required")
	}
	if config.Cache == nil {
		return nil, errors.New("cache is required")
	}
	if config.MessagingClient == nil {
		return nil, errors.New("messaging client is required")
	}
	if config.Tokens == nil {
		return nil, errors.New("token manager is required")
	}
	if config.Logger == nil {
		config.Logger = logrus.New()
	}

	engine := aggregation.NewEngine(config.Logger)

	return &service{
		repo:            config.Repository,
		cache:           config.Cache,
		messagingClient: config.MessagingClient,
		tokens:          config.Tokens,
		engine:          engine,
		coordinator:     aggregation.NewCoordinator(engine, config.Logger),
		log:             config.Logger,
	}, nil
}

// publishChange notifies downstream consumers of an entity mutation.
// Publishing is best effort and never fails the triggering operation.
func (s *service) publishChange(ctx context.Context, entity string, id uuid.UUID, action string) {
	change := messaging.EntityChange{
		Entity:   entity,
		EntityID: id.String(),
		Action:   action,
	}
	if err := s.messagingClient.SendMessage(ctx, change, entity); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"entity": entity,
			"action": action,
		}).Warn("Failed to publish entity change")
	}
}

// canModify reports whether the actor may mutate a record owned by ownerID
func canModify(actor *models.User, ownerID uuid.UUID) bool {
	if actor == nil {
		return false
	}
	return actor.Role == models.RoleAdmin || actor.ID == ownerID
}

// translateRepoError maps repository sentinels onto service sentinels
func translateRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrDuplicateKey):
		return ErrDuplicate
	default:
		return err
	}
}
