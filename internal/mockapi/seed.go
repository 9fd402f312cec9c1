package mockapi

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"go-printshop-storefront/internal/api"
)

// Seed accounts for demos and tests. The password for both is "password123".
const (
	SeedUserEmail  = "demo@printshop.mn"
	SeedAdminEmail = "admin@printshop.mn"
	SeedPassword   = "password123"
)

func (s *Server) seed() {
	hash, err := bcrypt.GenerateFromPassword([]byte(SeedPassword), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}

	demo := &user{
		ID:           uuid.NewString(),
		Name:         "Demo Customer",
		Email:        SeedUserEmail,
		Role:         api.RoleUser,
		Wallet:       decimal.NewFromInt(100000),
		passwordHash: hash,
	}
	admin := &user{
		ID:           uuid.NewString(),
		Name:         "Shop Admin",
		Email:        SeedAdminEmail,
		Role:         api.RoleAdmin,
		Wallet:       decimal.Zero,
		passwordHash: hash,
	}
	s.usersByEmail[demo.Email] = demo
	s.usersByID[demo.ID] = demo
	s.usersByEmail[admin.Email] = admin
	s.usersByID[admin.ID] = admin

	for _, p := range []api.Product{
		{ID: uuid.NewString(), Name: "Business Cards (500 pcs)", Price: decimal.NewFromInt(45000)},
		{ID: uuid.NewString(), Name: "A5 Flyers (1000 pcs)", Price: decimal.NewFromInt(120000)},
		{ID: uuid.NewString(), Name: "Vinyl Banner 2x1m", Price: decimal.NewFromInt(80000)},
		{ID: uuid.NewString(), Name: "Branded Mug", Price: decimal.NewFromInt(15000)},
	} {
		s.products[p.ID] = p
	}
}
