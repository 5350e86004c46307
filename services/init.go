package services

import (
	"gorm.io/gorm"

	"github.com/rankforge/seoportal/config"
	"github.com/rankforge/seoportal/interfaces"
	"github.com/rankforge/seoportal/internal/logger"
	"github.com/rankforge/seoportal/internal/repository"
	"github.com/rankforge/seoportal/services/binding"
	"github.com/rankforge/seoportal/services/dashboard"
	"github.com/rankforge/seoportal/services/events"
	"github.com/rankforge/seoportal/services/ingestion"
	"github.com/rankforge/seoportal/services/publication"
	"github.com/rankforge/seoportal/services/storage"
	"github.com/rankforge/seoportal/services/tenant"
)

type Services struct {
	TenantResolver     interfaces.TenantResolver
	BindingService     interfaces.BindingService
	IngestionService   interfaces.IngestionService
	PublicationService interfaces.PublicationService
	DashboardService   interfaces.DashboardService
	EventPublisher     interfaces.EventPublisher
	ReportStorage      interfaces.StorageService
}

func InitServices(cfg *config.Config, db *gorm.DB, log logger.Logger, repositories *repository.Repositories) (*Services, error) {
	var eventPublisher interfaces.EventPublisher
	if cfg.AppConfig.RabbitMQURL != "" {
		publisher, err := events.NewRabbitMQPublisher(cfg.AppConfig.RabbitMQURL, log)
		if err != nil {
			return nil, err
		}
		eventPublisher = publisher
	} else {
		log.Warn("no RabbitMQ url configured, events will be dropped")
		eventPublisher = events.NewNoopPublisher()
	}

	var reportStorage interfaces.StorageService
	if cfg.StorageConfig.AccountID != "" {
		reportStorage = storage.NewR2StorageService(
			cfg.StorageConfig.AccountID,
			cfg.StorageConfig.AccessKeyID,
			cfg.StorageConfig.AccessKeySecret,
			cfg.StorageConfig.ReportBucket,
			cfg.StorageConfig.CDNDomain,
		)
	}

	resolver := tenant.NewTenantResolver(log, db, repositories)

	services := Services{
		TenantResolver:     resolver,
		BindingService:     binding.NewBindingService(log, db, repositories),
		IngestionService:   ingestion.NewIngestionService(log, repositories, resolver),
		PublicationService: publication.NewPublicationService(log, db, repositories, publication.NewNoopRemotePublisher(log), eventPublisher),
		DashboardService:   dashboard.NewDashboardService(log, repositories, reportStorage),
		EventPublisher:     eventPublisher,
		ReportStorage:      reportStorage,
	}

	return &services, nil
}
