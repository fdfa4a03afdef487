package store

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"opensite/api/internal/model"
)

// SeedDemo loads a demo tenant so a fresh process has something to serve.
// State is in-memory only and reset on every start, so seeding replaces
// migrations. Seed writes bypass the permission gate the way a migration
// would; nothing here is audited.
func (s *Store) SeedDemo(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()

	company := &model.Company{ID: s.nextID(), Name: "Meridian Construction", Status: 1, CreatedAt: now}
	s.companies[company.ID] = company

	users := []*model.User{
		{Username: "platform", Name: "Platform Admin", Role: model.RolePrincipalAdmin},
		{Username: "dana", Name: "Dana Whitfield", Role: model.RoleCompanyAdmin},
		{Username: "marcus", Name: "Marcus Cole", Role: model.RoleProjectManager},
		{Username: "priya", Name: "Priya Shah", Role: model.RoleForeman},
		{Username: "tom", Name: "Tom Okafor", Role: model.RoleOperative},
	}
	for _, u := range users {
		u.ID = s.nextID()
		u.CompanyID = company.ID
		u.Password = string(hash)
		u.Status = 1
		u.CreatedAt = now
		u.UpdatedAt = now
		s.users[u.ID] = u
	}

	projects := []*model.Project{
		{
			Name:         "Riverside Plaza",
			Description:  "Mixed-use development, phase 2",
			Status:       model.ProjectActive,
			Lat:          51.5074,
			Lng:          -0.1278,
			RadiusMeters: 250,
		},
		{
			Name:         "Northgate Depot",
			Description:  "Warehouse refurbishment",
			Status:       model.ProjectActive,
			Lat:          51.5405,
			Lng:          -0.1430,
			RadiusMeters: 180,
		},
		{
			Name:         "Harbour View",
			Description:  "Residential tower, groundworks",
			Status:       model.ProjectPlanning,
			Lat:          51.5033,
			Lng:          -0.0195,
			RadiusMeters: 300,
		},
	}
	for _, p := range projects {
		p.ID = s.nextID()
		p.CompanyID = company.ID
		p.StartDate = now.AddDate(0, -2, 0)
		p.CreatedAt = now
		p.UpdatedAt = now
		s.projects[p.ID] = p
	}

	equipment := []*model.Equipment{
		{Name: "Tower Crane TC-80", Type: "crane", Status: model.EquipmentInUse, ProjectID: &projects[0].ID},
		{Name: "Excavator EX-210", Type: "excavator", Status: model.EquipmentAvailable},
		{Name: "Concrete Pump CP-12", Type: "pump", Status: model.EquipmentMaintenance},
	}
	for _, eq := range equipment {
		eq.ID = s.nextID()
		eq.CompanyID = company.ID
		eq.CreatedAt = now
		eq.UpdatedAt = now
		s.equipment[eq.ID] = eq
	}

	// One pending timesheet awaiting review.
	ts := &model.Timesheet{
		ID:         s.nextID(),
		CompanyID:  company.ID,
		ProjectID:  projects[0].ID,
		UserID:     users[4].ID,
		ClockIn:    now.Add(-8 * time.Hour),
		Status:     model.TimesheetPending,
		TrustScore: 1.0,
		CreatedAt:  now.Add(-8 * time.Hour),
		UpdatedAt:  now.Add(-8 * time.Hour),
	}
	out := now.Add(-30 * time.Minute)
	ts.ClockOut = &out
	s.timesheets[ts.ID] = ts

	inv := &model.Invoice{
		ID:         s.nextID(),
		CompanyID:  company.ID,
		ProjectID:  projects[0].ID,
		ClientName: "Thameside Holdings",
		Amount:     184500,
		Status:     model.InvoiceSent,
		DueDate:    now.AddDate(0, 1, 0),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.invoices[inv.ID] = inv

	s.lg.Infow("seeded demo tenant",
		"company", company.Name,
		"users", len(users),
		"projects", len(projects))
	return nil
}
