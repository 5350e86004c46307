package repository

import (
	"time"

	"gorm.io/gorm"

	"github.com/rankforge/seoportal/config"
	"github.com/rankforge/seoportal/internal/models"
)

type Repositories struct {
	UserRepository           UserRepository
	CompanyRepository        CompanyRepository
	TenantRepository         TenantRepository
	MembershipRepository     MembershipRepository
	CmsIntegrationRepository CmsIntegrationRepository
	ContentScheduleItemRepo  ContentScheduleItemRepository
	PublishLogRepository     PublishLogRepository
	KpiSnapshotRepository    KpiSnapshotRepository
	TrafficStatRepository    TrafficStatRepository
	KeywordRankingRepository KeywordRankingRepository
	ReportRepository         ReportRepository
}

func InitRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		UserRepository:           NewUserRepository(db),
		CompanyRepository:        NewCompanyRepository(db),
		TenantRepository:         NewTenantRepository(db),
		MembershipRepository:     NewMembershipRepository(db),
		CmsIntegrationRepository: NewCmsIntegrationRepository(db),
		ContentScheduleItemRepo:  NewContentScheduleItemRepository(db),
		PublishLogRepository:     NewPublishLogRepository(db),
		KpiSnapshotRepository:    NewKpiSnapshotRepository(db),
		TrafficStatRepository:    NewTrafficStatRepository(db),
		KeywordRankingRepository: NewKeywordRankingRepository(db),
		ReportRepository:         NewReportRepository(db),
	}
}

func MigrateDB(dbConfig *config.DatabaseConfig, portalDB *gorm.DB) error {
	db, err := portalDB.DB()
	if err != nil {
		return err
	}

	db.SetMaxOpenConns(5)

	err = portalDB.AutoMigrate(AllModels()...)
	if err != nil {
		return err
	}

	if dbConfig != nil {
		db.SetMaxIdleConns(dbConfig.MaxIdleConn)
		db.SetMaxOpenConns(dbConfig.MaxConn)
		db.SetConnMaxLifetime(time.Duration(dbConfig.ConnMaxLifetime) * time.Minute)
	}

	return nil
}

// AllModels lists every persisted model for migration.
func AllModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Company{},
		&models.Tenant{},
		&models.Membership{},
		&models.CmsIntegration{},
		&models.ContentScheduleItem{},
		&models.PublishLogEntry{},
		&models.KpiSnapshot{},
		&models.TrafficStat{},
		&models.KeywordRanking{},
		&models.Report{},
	}
}
