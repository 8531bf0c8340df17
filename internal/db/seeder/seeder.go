package seeder

import (
	"time"

	"stockroom/internal/app/session"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Seeder struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewSeeder(db *gorm.DB, logger *zap.Logger) *Seeder {
	return &Seeder{
		db:     db,
		logger: logger,
	}
}

func (s *Seeder) Seed() error {
	s.logger.Info("Running database seeders...")

	if err := s.seedTenants(); err != nil {
		return err
	}

	s.logger.Info("Database seeders completed successfully")
	return nil
}

// seedTenants creates two demo tenants with a few team members each, so
// sessions can be issued and tenant isolation exercised locally.
func (s *Seeder) seedTenants() error {
	var count int64
	s.db.Model(&session.Tenant{}).Count(&count)
	if count > 0 {
		s.logger.Info("Tenants already exist, skipping seed")
		return nil
	}

	now := time.Now().UTC()

	tenants := []struct {
		name    string
		members []struct{ name, email string }
	}{
		{
			name: "Acme Warehousing",
			members: []struct{ name, email string }{
				{"Alice Martin", "alice@acme.test"},
				{"Bob Johnson", "bob@acme.test"},
				{"Carol Reyes", "carol@acme.test"},
			},
		},
		{
			name: "Globex Supplies",
			members: []struct{ name, email string }{
				{"Dana White", "dana@globex.test"},
				{"Evan Liu", "evan@globex.test"},
			},
		},
	}

	seededProfiles := 0
	for _, t := range tenants {
		tenant := session.Tenant{
			ID:        uuid.NewString(),
			Name:      t.name,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := s.db.Create(&tenant).Error; err != nil {
			return err
		}

		for _, m := range t.members {
			profile := session.Profile{
				ID:        uuid.NewString(),
				TenantID:  tenant.ID,
				FullName:  m.name,
				Email:     m.email,
				CreatedAt: now,
				UpdatedAt: now,
			}
			if err := s.db.Create(&profile).Error; err != nil {
				return err
			}
			seededProfiles++
		}
	}

	s.logger.Info("Seeded demo tenants",
		zap.Int("tenants", len(tenants)),
		zap.Int("profiles", seededProfiles),
	)
	return nil
}
