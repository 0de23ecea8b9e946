package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/Falzz1010/umkm-ai-spark-sub001/internal/core/ports"
)

// AdminService builds the admin listing: every account joined with its
// profile and activity counts.
type AdminService struct {
	users    ports.UserRepository
	profiles ports.ProfileRepository
	products ports.ProductRepository
	sales    ports.SaleRepository
	log      zerolog.Logger
}

func NewAdminService(
	users ports.UserRepository,
	profiles ports.ProfileRepository,
	products ports.ProductRepository,
	sales ports.SaleRepository,
	log zerolog.Logger,
) *AdminService {
	return &AdminService{users: users, profiles: profiles, products: products, sales: sales, log: log}
}

func (s *AdminService) ListUsers(ctx context.Context) ([]ports.AdminUserView, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]ports.AdminUserView, 0, len(users))
	for _, u := range users {
		view := ports.AdminUserView{User: u}

		profile, err := s.profiles.FindByUserID(ctx, u.ID)
		if err != nil {
			s.log.Warn().Err(err).Str("user_id", u.ID).Msg("profile lookup failed in admin listing")
		} else {
			view.Profile = profile
		}

		if n, err := s.products.CountByOwner(ctx, u.ID); err == nil {
			view.ProductCount = n
		}
		if n, err := s.sales.CountByOwner(ctx, u.ID); err == nil {
			view.SalesCount = n
		}

		views = append(views, view)
	}
	return views, nil
}
