package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"researchnett/internal/logger"
	"researchnett/internal/model"
	"researchnett/internal/repository"
)

// SeedDocument is the demo-data format accepted by the seeder.
type SeedDocument struct {
	Users []SeedUser `json:"users"`
}

// SeedUser is one demo member with optional profile and calls.
type SeedUser struct {
	Email    string       `json:"email"`
	Password string       `json:"password"`
	Admin    bool         `json:"admin"`
	Profile  *SeedProfile `json:"profile,omitempty"`
	Calls    []SeedCall   `json:"calls,omitempty"`
}

// SeedProfile mirrors the editable profile fields.
type SeedProfile struct {
	FullName     string  `json:"full_name"`
	Department   string  `json:"department"`
	InstituteURL string  `json:"institute_url"`
	ScholarURL   *string `json:"scholar_url,omitempty"`
	Overview     *string `json:"overview,omitempty"`
}

// SeedCall mirrors the editable call fields.
type SeedCall struct {
	Title            string   `json:"title"`
	Summary          string   `json:"summary"`
	CollaborationFor string   `json:"collaboration_for"`
	Keywords         []string `json:"keywords"`
	Links            []string `json:"links,omitempty"`
}

// SeedReport counts what a seed run did.
type SeedReport struct {
	UsersCreated    int `json:"users_created"`
	UsersExisting   int `json:"users_existing"`
	ProfilesCreated int `json:"profiles_created"`
	CallsCreated    int `json:"calls_created"`
	Skipped         int `json:"skipped"`
}

// SeedService loads demo data through the regular services so that seeded
// rows pass the same validation as user input.
type SeedService interface {
	Seed(ctx context.Context, doc *SeedDocument) (*SeedReport, error)
}

type seedService struct {
	users    repository.UserRepository
	admins   repository.AdminRepository
	profiles ProfileService
	calls    CallService
}

// NewSeedService creates a new seed service.
func NewSeedService(users repository.UserRepository, admins repository.AdminRepository, profiles ProfileService, calls CallService) SeedService {
	return &seedService{users: users, admins: admins, profiles: profiles, calls: calls}
}

// Seed creates missing users as confirmed accounts, then their profiles and
// calls. Existing users keep their password; their calls are added again.
// Entries failing validation are skipped and counted.
func (s *seedService) Seed(ctx context.Context, doc *SeedDocument) (*SeedReport, error) {
	report := &SeedReport{}

	for _, su := range doc.Users {
		email := normalizeEmail(su.Email)
		if email == "" || len(su.Password) < MinPasswordLength {
			logger.Warn(ctx, "Skipping seed user", zap.String("email", su.Email))
			report.Skipped++
			continue
		}

		user, created, err := s.ensureUser(ctx, email, su.Password)
		if err != nil {
			return report, err
		}
		if created {
			report.UsersCreated++
		} else {
			report.UsersExisting++
		}

		if su.Admin {
			if err := s.admins.Grant(ctx, user.ID); err != nil {
				return report, fmt.Errorf("grant admin %s: %w", email, err)
			}
		}

		if su.Profile != nil {
			_, err := s.profiles.Save(ctx, user.ID, ProfileInput{
				FullName:     su.Profile.FullName,
				Department:   su.Profile.Department,
				InstituteURL: su.Profile.InstituteURL,
				ScholarURL:   su.Profile.ScholarURL,
				Overview:     su.Profile.Overview,
			})
			if err != nil {
				logger.Warn(ctx, "Skipping seed profile", zap.String("email", email), zap.Error(err))
				report.Skipped++
			} else {
				report.ProfilesCreated++
			}
		}

		for _, sc := range su.Calls {
			_, err := s.calls.Create(ctx, user.ID, CallInput{
				Title:            sc.Title,
				Summary:          sc.Summary,
				CollaborationFor: model.CallCategory(sc.CollaborationFor),
				Keywords:         sc.Keywords,
				Links:            sc.Links,
			})
			if err != nil {
				logger.Warn(ctx, "Skipping seed call", zap.String("email", email), zap.String("title", sc.Title), zap.Error(err))
				report.Skipped++
				continue
			}
			report.CallsCreated++
		}
	}

	logger.Info(ctx, "Seed completed",
		zap.Int("users_created", report.UsersCreated),
		zap.Int("users_existing", report.UsersExisting),
		zap.Int("profiles_created", report.ProfilesCreated),
		zap.Int("calls_created", report.CallsCreated),
		zap.Int("skipped", report.Skipped),
	)
	return report, nil
}

func (s *seedService) ensureUser(ctx context.Context, email, password string) (*model.User, bool, error) {
	existing, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, fmt.Errorf("check user %s: %w", email, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, false, fmt.Errorf("hash password: %w", err)
	}
	now := time.Now().UTC()
	user := &model.User{Email: email, PasswordHash: string(hash), EmailConfirmedAt: &now}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, false, fmt.Errorf("create user %s: %w", email, err)
	}
	return user, true, nil
}

// LoadSeedDocument reads a seed document from a local path or an http(s) URL.
func LoadSeedDocument(ctx context.Context, source string) (*SeedDocument, error) {
	var body io.ReadCloser
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("fetch seed data: %w", err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("seed source returned status code: %d", resp.StatusCode)
		}
		body = resp.Body
	} else {
		f, err := os.Open(source)
		if err != nil {
			return nil, fmt.Errorf("open seed file: %w", err)
		}
		body = f
	}
	defer body.Close()

	var doc SeedDocument
	if err := json.NewDecoder(body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse seed data: %w", err)
	}
	return &doc, nil
}
