package model

import "time"

// BuilderProfile is the company profile behind one or more listings. A
// builder-role user owns exactly one profile; ownership checks on signature
// and purchase endpoints resolve through it.
type BuilderProfile struct {
	ID          uint64    // builder_profiles.id
	UserID      uint64    // builder_profiles.user_id (unique)
	CompanyName string    // builder_profiles.company_name
	CNPJ        string    // builder_profiles.cnpj
	CreatedAt   time.Time // builder_profiles.created_at
}

// Listing is a real-estate development (empreendimento) that groups
// sellable units. Only read here; listing CRUD lives outside this service.
type Listing struct {
	ID        uint64    // listings.id
	BuilderID uint64    // listings.builder_id
	Name      string    // listings.name
	City      string    // listings.city
	CreatedAt time.Time // listings.created_at
}
