package postgres

import (
	"github.com/WPCM-2025/consultation-service/internal/repositories"
	"gorm.io/gorm"
)

type repository struct {
	consultation repositories.ConsultationRepository
	user         repositories.UserRepository
	department   repositories.DepartmentRepository
	donation     repositories.DonationRepository
	news         repositories.NewsRepository
}

// NewRepository wires all gorm-backed repositories over one connection.
func NewRepository(db *gorm.DB) repositories.Repository {
	consultation := NewConsultationPostgreSQL(db)
	return &repository{
		consultation: consultation,
		user:         NewUserPostgreSQL(db, consultation),
		department:   NewDepartmentPostgreSQL(db, consultation),
		donation:     NewDonationPostgreSQL(db),
		news:         NewNewsPostgreSQL(db),
	}
}

func (r *repository) Consultation() repositories.ConsultationRepository { return r.consultation }
func (r *repository) User() repositories.UserRepository                 { return r.user }
func (r *repository) Department() repositories.DepartmentRepository     { return r.department }
func (r *repository) Donation() repositories.DonationRepository         { return r.donation }
func (r *repository) News() repositories.NewsRepository                 { return r.news }
