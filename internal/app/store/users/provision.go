package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/tripdesk/tripdesk/internal/app/policy/userpolicy"
	"github.com/tripdesk/tripdesk/internal/app/store/audit"
	"github.com/tripdesk/tripdesk/internal/app/system/auditlog"
	"github.com/tripdesk/tripdesk/internal/app/system/normalize"
	"github.com/tripdesk/tripdesk/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Identity is what the identity provider asserts about a signed-in
// account. ID is the provider's uid and becomes the record key.
type Identity struct {
	Provider      string
	ID            string
	Email         string
	DisplayName   string
	Avatar        string
	EmailVerified bool
}

var errBadIdentity = errors.New("identity must carry a provider uid and email")

// Provisioner lazily creates user records on first successful sign-in
// and touches existing ones. The SuperAdmin email allow-list is
// injected configuration, not a package constant, so environments and
// tests control it.
type Provisioner struct {
	users    *Store
	allow    map[string]bool
	auditLog *auditlog.Logger
	log      *zap.Logger
}

// NewProvisioner builds a Provisioner. superAdminEmails entries are
// matched case-insensitively.
func NewProvisioner(users *Store, superAdminEmails []string, auditLog *auditlog.Logger, logger *zap.Logger) *Provisioner {
	allow := make(map[string]bool, len(superAdminEmails))
	for _, e := range superAdminEmails {
		if e = normalize.Email(e); e != "" {
			allow[e] = true
		}
	}
	return &Provisioner{users: users, allow: allow, auditLog: auditLog, log: logger}
}

// IsSuperAdminEmail reports whether the email is on the bootstrap
// allow-list.
func (p *Provisioner) IsSuperAdminEmail(email string) bool {
	return p.allow[normalize.Email(email)]
}

// SignIn handles the sign-in side effect for an authenticated identity.
//
// Unknown identity: create the record (role from the allow-list check,
// category defaulted, name split on the first space). Known identity:
// advance last_login_at, refresh the email, and backfill the avatar if
// the stored one is empty. Role is never altered for a known identity,
// so a returning user's locally-assigned role survives and the identity
// provider cannot escalate privileges.
//
// If the store write fails, sign-in still proceeds: the returned record
// is transient, with the role derived from the allow-list alone. That
// trade of consistency for availability is deliberate and logged.
func (p *Provisioner) SignIn(ctx context.Context, ident Identity) (*models.User, error) {
	if ident.ID == "" || ident.Email == "" {
		return nil, errBadIdentity
	}

	existing, err := p.users.GetByID(ctx, ident.ID)
	switch {
	case err == nil:
		return p.touch(ctx, existing, ident), nil
	case err == mongo.ErrNoDocuments:
		return p.create(ctx, ident), nil
	default:
		p.log.Warn("provisioning lookup failed; using transient role",
			zap.String("uid", ident.ID),
			zap.String("provider", ident.Provider),
			zap.Error(err))
		p.auditFallback(ctx, ident, err)
		return p.transient(ident), nil
	}
}

func (p *Provisioner) create(ctx context.Context, ident Identity) *models.User {
	u := p.transient(ident)

	created, err := p.users.Create(ctx, *u)
	if err != nil {
		p.log.Warn("provisioning create failed; using transient record",
			zap.String("uid", ident.ID),
			zap.String("provider", ident.Provider),
			zap.Error(err))
		p.auditFallback(ctx, ident, err)
		return u
	}

	p.auditLog.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventUserProvisioned,
		UserID:    created.ID,
		Success:   true,
		Details: map[string]string{
			"provider": ident.Provider,
			"role":     created.Role,
		},
	})
	return &created
}

func (p *Provisioner) touch(ctx context.Context, u *models.User, ident Identity) *models.User {
	avatar := ""
	if u.Profile.Avatar == "" {
		avatar = ident.Avatar
	}

	if err := p.users.TouchLogin(ctx, u.ID, ident.Email, avatar); err != nil {
		p.log.Warn("login touch failed",
			zap.String("uid", u.ID),
			zap.Error(err))
		return u
	}

	u.Email = normalize.Email(ident.Email)
	if avatar != "" {
		u.Profile.Avatar = avatar
	}
	u.Metadata.LastLoginAt = time.Now().UTC()
	return u
}

// transient builds the record a brand-new identity would get, without
// persisting it.
func (p *Provisioner) transient(ident Identity) *models.User {
	role := userpolicy.User
	if p.IsSuperAdminEmail(ident.Email) {
		role = userpolicy.SuperAdmin
	}
	first, last := normalize.SplitName(ident.DisplayName)

	now := time.Now().UTC()
	return &models.User{
		ID:       ident.ID,
		Email:    normalize.Email(ident.Email),
		Role:     string(role),
		Category: userpolicy.DefaultCategory(role),
		Profile: models.Profile{
			FirstName: first,
			LastName:  last,
			Gender:    "Other",
			Avatar:    ident.Avatar,
		},
		Metadata: models.Metadata{
			CreatedAt:     now,
			LastLoginAt:   now,
			IsActive:      true,
			EmailVerified: ident.EmailVerified,
		},
		Permissions: []string{},
	}
}

func (p *Provisioner) auditFallback(ctx context.Context, ident Identity, cause error) {
	p.auditLog.Log(ctx, audit.Event{
		Category:      audit.CategoryAuth,
		EventType:     audit.EventProvisionFallback,
		UserID:        ident.ID,
		Success:       false,
		FailureReason: cause.Error(),
		Details:       map[string]string{"provider": ident.Provider},
	})
}
