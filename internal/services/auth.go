package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"gams-bknd/internal/auth"
	"gams-bknd/internal/config"
	"gams-bknd/internal/logger"
	model "gams-bknd/internal/models"

	"github.com/go-ldap/ldap/v3"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthService is the session/identity provider at the registry's
// boundary: local and LDAP login, refresh rotation, revocation.
type AuthService struct {
	db   *bun.DB
	jwt  *auth.JWTManager
	cfg  *config.Config
	logr *logger.Logger
}

func NewAuthService(db *bun.DB, jwt *auth.JWTManager, cfg *config.Config, logr *logger.Logger) *AuthService {
	return &AuthService{db: db, jwt: jwt, cfg: cfg, logr: logr}
}

func HashPassword(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(b), err
}

func ComparePassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

type UserInfo struct {
	ID       string   `json:"id"`
	Email    string   `json:"email"`
	Name     string   `json:"name"`
	Provider string   `json:"provider"`
	Roles    []string `json:"roles"`
}

// LoginLocal authenticates against the stored bcrypt hash and issues a
// token pair.
func (s *AuthService) LoginLocal(ctx context.Context, email, password, deviceInfo string) (*auth.TokenPair, *UserInfo, error) {
	var u model.User
	err := s.db.NewSelect().Model(&u).Where("email = ?", email).Scan(ctx)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil, fmt.Errorf("invalid credentials")
		}
		return nil, nil, err
	}
	if u.PasswordHash == "" {
		return nil, nil, fmt.Errorf("account not configured for local login")
	}
	if err := ComparePassword(u.PasswordHash, password); err != nil {
		return nil, nil, fmt.Errorf("invalid credentials")
	}

	now := time.Now().UTC()
	_, _ = s.db.NewUpdate().Model(&model.User{LastLoginAt: &now}).Where("id = ?", u.ID).Exec(ctx)

	pair, err := s.jwt.GenerateTokenPair(u.ID.String(), s.cfg.AccessTokenTTL, s.cfg.RefreshTokenTTL, u.TokenVersion, "local", u.Roles)
	if err != nil {
		return nil, nil, err
	}
	if err := s.storeRefreshToken(ctx, u.ID, pair.RefreshToken, pair.RefreshExp, pair.JTI, deviceInfo); err != nil {
		return nil, nil, err
	}

	return pair, &UserInfo{
		ID:       u.ID.String(),
		Email:    u.Email,
		Name:     u.Name,
		Provider: "local",
		Roles:    u.Roles,
	}, nil
}

// LoginLDAP binds against the directory, provisions the user on first
// login and issues a token pair. New LDAP users get no administrative
// role; the admin gate keeps them out of the registry until one is
// granted.
func (s *AuthService) LoginLDAP(ctx context.Context, ldapUser, ldapPass, deviceInfo string) (*auth.TokenPair, *UserInfo, error) {
	username := ldapUser
	if suffix := "@" + strings.ToLower(s.cfg.LDAPDomain); s.cfg.LDAPDomain != "" {
		if strings.HasSuffix(strings.ToLower(username), suffix) {
			username = username[:len(username)-len(suffix)]
		}
	}

	ldap.DefaultTimeout = 10 * time.Second
	l, err := ldap.DialURL(s.cfg.LDAPServer)
	if err != nil {
		s.logr.Error("ldap dial failed", zap.Error(err), zap.String("server", s.cfg.LDAPServer))
		return nil, nil, fmt.Errorf("ldap connection failed")
	}
	defer func() {
		if l != nil {
			_ = l.Close()
		}
	}()
	l.SetTimeout(30 * time.Second)

	userDN := fmt.Sprintf("%s@%s", username, s.cfg.LDAPDomain)
	if err = l.Bind(userDN, ldapPass); err != nil {
		s.logr.Warn("ldap bind failed", zap.String("username", username))
		return nil, nil, fmt.Errorf("invalid credentials")
	}

	searchReq := ldap.NewSearchRequest(
		s.cfg.LDAPBaseDN,
		ldap.ScopeWholeSubtree,
		ldap.NeverDerefAliases,
		0, 0, false,
		fmt.Sprintf("(sAMAccountName=%s)", ldap.EscapeFilter(username)),
		[]string{"cn", "mail", "displayName"},
		nil,
	)
	sr, err := l.Search(searchReq)
	if err != nil {
		s.logr.Error("ldap search failed", zap.Error(err), zap.String("username", username))
		return nil, nil, fmt.Errorf("user lookup failed")
	}
	if len(sr.Entries) == 0 {
		return nil, nil, fmt.Errorf("user not found in directory")
	}

	entry := sr.Entries[0]
	mail := entry.GetAttributeValue("mail")
	if mail == "" {
		return nil, nil, fmt.Errorf("user account missing email")
	}
	fullName := entry.GetAttributeValue("displayName")
	if fullName == "" {
		fullName = entry.GetAttributeValue("cn")
	}
	if fullName == "" {
		fullName = username
	}

	_ = l.Close()
	l = nil

	var u model.User
	err = s.db.NewSelect().
		Model(&u).
		Column("id", "email", "provider", "name", "roles", "token_version", "created_at").
		Where("email = ?", mail).
		Scan(ctx)
	if err != nil {
		if err != sql.ErrNoRows {
			s.logr.Error("user lookup failed", zap.Error(err), zap.String("email", mail))
			return nil, nil, fmt.Errorf("database error")
		}
		u = model.User{
			Email:    mail,
			Provider: "ldap",
			Name:     fullName,
			Roles:    []string{"user"},
		}
		if _, err = s.db.NewInsert().Model(&u).Exec(ctx); err != nil {
			s.logr.Error("failed to create user", zap.Error(err), zap.String("email", mail))
			return nil, nil, fmt.Errorf("failed to create user account")
		}
		s.logr.Info("provisioned ldap user", zap.String("email", mail))
	} else if u.Provider != "ldap" {
		_, _ = s.db.NewUpdate().Model(&u).
			Set("provider = ?", "ldap").
			Where("id = ?", u.ID).
			Exec(ctx)
	}

	now := time.Now().UTC()
	_, _ = s.db.NewUpdate().Model(&model.User{LastLoginAt: &now}).Where("id = ?", u.ID).Exec(ctx)

	pair, err := s.jwt.GenerateTokenPair(u.ID.String(), s.cfg.AccessTokenTTL, s.cfg.RefreshTokenTTL, u.TokenVersion, "ldap", u.Roles)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to generate tokens")
	}
	if err := s.storeRefreshToken(ctx, u.ID, pair.RefreshToken, pair.RefreshExp, pair.JTI, deviceInfo); err != nil {
		return nil, nil, fmt.Errorf("failed to store session")
	}

	return pair, &UserInfo{
		ID:       u.ID.String(),
		Email:    mail,
		Name:     fullName,
		Provider: "ldap",
		Roles:    u.Roles,
	}, nil
}

// storeRefreshToken stores the hash and enforces a two-session cap per
// user.
func (s *AuthService) storeRefreshToken(ctx context.Context, userID uuid.UUID, refreshToken string, expiresAt time.Time, jti string, deviceInfo string) error {
	_, _ = s.db.NewDelete().Model((*model.RefreshToken)(nil)).
		Where("user_id = ? AND expires_at < now()", userID).Exec(ctx)

	var count int
	err := s.db.NewSelect().ColumnExpr("count(*)").Table("refresh_tokens").
		Where("user_id = ? AND revoked = false AND expires_at > now()", userID).
		Scan(ctx, &count)
	if err == nil && count >= 2 {
		toRemove := count - 1
		_, _ = s.db.NewDelete().Model((*model.RefreshToken)(nil)).
			Where("id IN (SELECT id FROM refresh_tokens WHERE user_id = ? AND revoked = false AND expires_at > now() ORDER BY created_at ASC LIMIT ?)", userID, toRemove).
			Exec(ctx)
	}

	rt := model.RefreshToken{
		UserID:     userID,
		JTI:        jti,
		TokenHash:  auth.HashToken(refreshToken),
		DeviceInfo: &deviceInfo,
		CreatedAt:  time.Now().UTC(),
		ExpiresAt:  expiresAt,
	}
	_, err = s.db.NewInsert().Model(&rt).Exec(ctx)
	return err
}

// Refresh rotates a refresh token: verifies it, revokes the stored
// record and issues a new pair.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string, deviceInfo string) (*auth.TokenPair, error) {
	claims, err := s.jwt.VerifyToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("invalid refresh token: %w", err)
	}
	if claims["typ"] != string(auth.RefreshToken) {
		return nil, fmt.Errorf("not a refresh token")
	}
	jti, ok := claims["jti"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid token jti")
	}

	hashed := auth.HashToken(refreshToken)
	var rt model.RefreshToken
	err = s.db.NewSelect().Model(&rt).
		Where("jti = ? AND token_hash = ? AND revoked = false AND expires_at > now()", jti, hashed).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("refresh token not found or revoked")
	}

	var u model.User
	if err = s.db.NewSelect().Model(&u).Where("id = ?", rt.UserID).Scan(ctx); err != nil {
		return nil, fmt.Errorf("user not found")
	}

	_, _ = s.db.NewUpdate().Model(&model.RefreshToken{Revoked: true}).Where("id = ?", rt.ID).Exec(ctx)

	pair, err := s.jwt.GenerateTokenPair(u.ID.String(), s.cfg.AccessTokenTTL, s.cfg.RefreshTokenTTL, u.TokenVersion, "refresh", u.Roles)
	if err != nil {
		return nil, err
	}
	if err := s.storeRefreshToken(ctx, u.ID, pair.RefreshToken, pair.RefreshExp, pair.JTI, deviceInfo); err != nil {
		return nil, err
	}
	return pair, nil
}

// Logout revokes the refresh token identified by its JTI.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	claims, err := s.jwt.VerifyToken(refreshToken)
	if err != nil {
		return err
	}
	jti, ok := claims["jti"].(string)
	if !ok {
		return fmt.Errorf("invalid jti")
	}
	_, err = s.db.NewUpdate().Model(&model.RefreshToken{Revoked: true}).Where("jti = ?", jti).Exec(ctx)
	return err
}

func (s *AuthService) CheckTokenVersion(ctx context.Context, userID string, tokenVersion int) (bool, error) {
	var user model.User
	if err := s.db.NewSelect().Model(&user).Where("id = ?", userID).Scan(ctx); err != nil {
		return false, err
	}
	return user.TokenVersion == tokenVersion, nil
}
