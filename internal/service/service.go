// Package service holds the application operations behind the dashboard and
// the CLI. Every operation checks the caller's permissions in the target
// organization before touching a repository.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/emiliopalmerini/abadmin/internal/ports"
)

// Config wires repositories and external collaborators into the services.
// AnalysisClient and Generator may be nil when those integrations are not
// configured.
type Config struct {
	Organizations  ports.OrganizationRepository
	Roles          ports.RoleRepository
	Members        ports.MemberRepository
	Invitations    ports.InvitationRepository
	Tests          ports.ABTestRepository
	Versions       ports.TestVersionRepository
	MetricRows     ports.MetricRowRepository
	AnalysisClient ports.AnalysisClient
	Generator      ports.HypothesisGenerator
	Metrics        ports.MetricsRecorder
	Logger         *zap.Logger
}

type Services struct {
	Authz         *Authorizer
	Organizations *OrganizationService
	Roles         *RoleService
	Members       *MemberService
	Tests         *ABTestService
	Versions      *VersionService
	Analysis      *AnalysisService
	Hypotheses    *HypothesisService
}

func New(cfg Config) *Services {
	c := newCommon(cfg)
	return &Services{
		Authz:         c.authz,
		Organizations: &OrganizationService{common: c, orgs: cfg.Organizations},
		Roles:         &RoleService{common: c, roles: cfg.Roles, members: cfg.Members},
		Members: &MemberService{
			common:      c,
			orgs:        cfg.Organizations,
			roles:       cfg.Roles,
			members:     cfg.Members,
			invitations: cfg.Invitations,
		},
		Tests:    &ABTestService{common: c, tests: cfg.Tests, versions: cfg.Versions},
		Versions: &VersionService{common: c, tests: cfg.Tests, versions: cfg.Versions},
		Analysis: &AnalysisService{
			common:   c,
			tests:    cfg.Tests,
			versions: cfg.Versions,
			rows:     cfg.MetricRows,
			client:   cfg.AnalysisClient,
		},
		Hypotheses: &HypothesisService{
			common:    c,
			tests:     cfg.Tests,
			versions:  cfg.Versions,
			generator: cfg.Generator,
		},
	}
}

// common carries what every service needs besides its repositories.
type common struct {
	authz   *Authorizer
	metrics ports.MetricsRecorder
	logger  *zap.Logger
	now     func() time.Time
	newID   func() string
}

func newCommon(cfg Config) *common {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &common{
		authz:   NewAuthorizer(cfg.Members, cfg.Roles),
		metrics: cfg.Metrics,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   uuid.NewString,
	}
}

// record reports the outcome of operation and returns err unchanged.
func (c *common) record(ctx context.Context, operation string, err error) error {
	if c.metrics != nil {
		c.metrics.RecordOperation(ctx, operation, err)
	}
	if err != nil {
		c.logger.Debug("operation failed", zap.String("operation", operation), zap.Error(err))
	}
	return err
}
