package binding

import (
	"context"
	"strings"

	"github.com/customeros/mailsherpa/mailvalidate"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/rankforge/seoportal/interfaces"
	er "github.com/rankforge/seoportal/internal/errors"
	"github.com/rankforge/seoportal/internal/logger"
	"github.com/rankforge/seoportal/internal/models"
	"github.com/rankforge/seoportal/internal/repository"
	"github.com/rankforge/seoportal/internal/tracing"
	"github.com/rankforge/seoportal/internal/utils"
)

type bindingService struct {
	log          logger.Logger
	db           *gorm.DB
	repositories *repository.Repositories
}

func NewBindingService(log logger.Logger, db *gorm.DB, repositories *repository.Repositories) *bindingService {
	return &bindingService{
		log:          log,
		db:           db,
		repositories: repositories,
	}
}

// BindTenant creates or updates a tenant for the given user, reconciles the
// owning company and merges the tenant's CMS integration settings. The whole
// binding is applied in a single transaction.
func (s *bindingService) BindTenant(ctx context.Context, request interfaces.BindTenantRequest) (*models.Tenant, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "BindingService.BindTenant")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.LogObjectAsJson(span, "request", request)

	if err := s.validateRequest(&request); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	user, err := s.repositories.UserRepository.GetById(ctx, request.UserID)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}
	if user == nil {
		tracing.TraceErr(span, er.ErrResolutionFailed)
		return nil, er.ErrResolutionFailed
	}

	var existingTenant *models.Tenant
	if request.TenantID != "" {
		existingTenant, err = s.repositories.TenantRepository.GetById(ctx, request.TenantID)
		if err != nil {
			tracing.TraceErr(span, err)
			return nil, err
		}
		if existingTenant == nil {
			tracing.TraceErr(span, er.ErrTenantNotFound)
			return nil, er.ErrTenantNotFound
		}

		isAdmin, err := s.repositories.MembershipRepository.HasAdminRole(ctx, existingTenant.ID, user.ID)
		if err != nil {
			tracing.TraceErr(span, err)
			return nil, err
		}
		if !isAdmin {
			tracing.TraceErr(span, er.ErrUnauthorized)
			return nil, er.ErrUnauthorized
		}
	}

	var boundTenant *models.Tenant
	err = s.db.Transaction(func(tx *gorm.DB) error {
		company, txErr := s.reconcileCompany(ctx, tx, user, request.Company)
		if txErr != nil {
			return txErr
		}

		boundTenant, txErr = s.reconcileTenant(ctx, tx, user, existingTenant, company, request)
		if txErr != nil {
			return txErr
		}

		return s.mergeIntegration(ctx, tx, boundTenant, request)
	})
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	tracing.TagTenant(span, boundTenant.ID)
	s.log.Infof("bound tenant %s for user %s", boundTenant.ID, user.ID)
	return boundTenant, nil
}

func (s *bindingService) validateRequest(request *interfaces.BindTenantRequest) error {
	if request.UserID == "" {
		return errors.Wrap(er.ErrValidationFailed, "userId is required")
	}
	if request.TenantID == "" && strings.TrimSpace(request.SiteName) == "" {
		return errors.Wrap(er.ErrValidationFailed, "siteName is required for a new tenant")
	}
	if request.PublishTime != "" {
		if _, _, err := utils.ParseClock(request.PublishTime); err != nil {
			return errors.Wrap(er.ErrValidationFailed, err.Error())
		}
	}
	if request.Company != nil && request.Company.ContactEmail != "" {
		validation := mailvalidate.ValidateEmailSyntax(request.Company.ContactEmail)
		if !validation.IsValid {
			return errors.Wrapf(er.ErrInvalidEmail, "contact email %s", request.Company.ContactEmail)
		}
		request.Company.ContactEmail = validation.CleanEmail
	}
	return nil
}

// reconcileCompany returns the company the bound tenant should belong to.
// A user whose company_id points at a removed row gets a fresh company so
// the stale reference heals instead of failing the binding.
func (s *bindingService) reconcileCompany(ctx context.Context, tx *gorm.DB, user *models.User, fields *interfaces.CompanyFields) (*models.Company, error) {
	var company *models.Company
	if user.CompanyID != nil {
		var err error
		company, err = s.repositories.CompanyRepository.GetById(ctx, tx, *user.CompanyID)
		if err != nil {
			return nil, err
		}
		if company == nil {
			s.log.Warnf("user %s references missing company %s, recreating", user.ID, *user.CompanyID)
		}
	}

	if company == nil {
		if fields == nil {
			return nil, nil
		}
		company = &models.Company{}
	}

	if fields != nil {
		if fields.Name != "" {
			company.Name = fields.Name
		}
		if fields.ContactEmail != "" {
			company.ContactEmail = fields.ContactEmail
		}
		if fields.CoopStartAt != nil {
			company.CoopStartAt = fields.CoopStartAt
		}
		if fields.ValidUntil != nil {
			company.ValidUntil = fields.ValidUntil
		}
	}

	if company.ID == "" {
		if company.Name == "" {
			company.Name = utils.FirstNonEmpty(user.DisplayName, user.Email)
		}
		if err := s.repositories.CompanyRepository.Create(ctx, tx, company); err != nil {
			return nil, err
		}
	} else if fields != nil {
		if err := s.repositories.CompanyRepository.Save(ctx, tx, company); err != nil {
			return nil, err
		}
	}

	if user.CompanyID == nil || *user.CompanyID != company.ID {
		if err := s.repositories.UserRepository.AttachCompany(ctx, tx, user.ID, company.ID); err != nil {
			return nil, err
		}
		user.CompanyID = &company.ID
	}

	return company, nil
}

func (s *bindingService) reconcileTenant(ctx context.Context, tx *gorm.DB, user *models.User, existingTenant *models.Tenant, company *models.Company, request interfaces.BindTenantRequest) (*models.Tenant, error) {
	if existingTenant == nil {
		newTenant := &models.Tenant{
			Name:    request.SiteName,
			SiteURL: request.SiteURL,
		}
		if company != nil {
			newTenant.CompanyID = &company.ID
		}
		if err := s.repositories.TenantRepository.Create(ctx, tx, newTenant); err != nil {
			return nil, err
		}
		err := s.repositories.MembershipRepository.Create(ctx, tx, &models.Membership{
			TenantID: newTenant.ID,
			UserID:   user.ID,
			Role:     models.MembershipRoleAdmin,
		})
		if err != nil {
			return nil, err
		}
		return newTenant, nil
	}

	if request.SiteName != "" {
		existingTenant.Name = request.SiteName
	}
	if request.SiteURL != "" {
		existingTenant.SiteURL = request.SiteURL
	}
	if company != nil {
		existingTenant.CompanyID = &company.ID
	}
	if err := s.repositories.TenantRepository.Save(ctx, tx, existingTenant); err != nil {
		return nil, err
	}
	return existingTenant, nil
}

// mergeIntegration upserts the tenant's CMS settings. Credentials drive the
// connection state: present credentials connect the integration and enable
// auto-publish, withdrawn credentials disconnect it and stop the scheduler.
func (s *bindingService) mergeIntegration(ctx context.Context, tx *gorm.DB, tenant *models.Tenant, request interfaces.BindTenantRequest) error {
	existing, err := s.repositories.CmsIntegrationRepository.GetByTenantId(ctx, tx, tenant.ID)
	if err != nil {
		return err
	}

	integration := &models.CmsIntegration{
		TenantID:    tenant.ID,
		SiteURL:     utils.FirstNonEmpty(request.SiteURL, tenant.SiteURL),
		CmsUsername: request.CmsUsername,
		CmsSecret:   request.CmsSecret,
		Timezone:    request.Timezone,
		PublishTime: request.PublishTime,
	}
	if existing != nil {
		if integration.Timezone == "" {
			integration.Timezone = existing.Timezone
		}
		if integration.PublishTime == "" {
			integration.PublishTime = existing.PublishTime
		}
	}
	if integration.Timezone == "" {
		integration.Timezone = "UTC"
	}
	if integration.PublishTime == "" {
		integration.PublishTime = "09:00"
	}

	if integration.HasCredentials() {
		integration.Status = models.CmsConnectionStatusConnected
		integration.AutoPublish = true
	} else {
		integration.Status = models.CmsConnectionStatusDisconnected
		integration.AutoPublish = false
	}

	return s.repositories.CmsIntegrationRepository.Merge(ctx, tx, integration)
}
