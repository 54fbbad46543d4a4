package workorder

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Service wraps a Store with the application's use cases: validation,
// trimming, defaulting and timestamp management. It has no transport
// dependencies so it is reusable from any handler and easy to test.
type Service struct {
	store Store
	now   func() time.Time
}

func NewService(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// CreateInput carries the create form fields.
type CreateInput struct {
	CustomerName string
	Vehicle      string
	Complaint    string
	Status       string
}

// Patch enumerates the fields an edit may replace; nil pointers leave the
// stored value untouched. Supplied values are trimmed but, unlike Create,
// not re-checked for emptiness: existing records can blank a required field
// through the edit form, and consumers rely on that.
type Patch struct {
	CustomerName *string
	Vehicle      *string
	Complaint    *string
	Status       *string
}

// Create validates the three required fields, applies the "Open" status
// default and persists a new record with created_at == updated_at.
func (s *Service) Create(ctx context.Context, in CreateInput) (*WorkOrder, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("service not initialized")
	}

	wo := &WorkOrder{
		CustomerName: strings.TrimSpace(in.CustomerName),
		Vehicle:      strings.TrimSpace(in.Vehicle),
		Complaint:    strings.TrimSpace(in.Complaint),
		Status:       strings.TrimSpace(in.Status),
	}

	var missing []string
	if wo.CustomerName == "" {
		missing = append(missing, "customer_name")
	}
	if wo.Vehicle == "" {
		missing = append(missing, "vehicle")
	}
	if wo.Complaint == "" {
		missing = append(missing, "complaint")
	}
	if len(missing) > 0 {
		return nil, &ValidationError{Missing: missing}
	}

	if wo.Status == "" {
		wo.Status = StatusOpen
	}

	now := s.now().UTC()
	wo.CreatedAt = now
	wo.UpdatedAt = now

	if err := s.store.Create(ctx, wo); err != nil {
		return nil, err
	}
	return wo, nil
}

func (s *Service) Get(ctx context.Context, id int64) (*WorkOrder, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	return s.store.GetByID(ctx, id)
}

// List returns work orders newest first; a non-empty query filters by
// case-insensitive substring across customer name, vehicle, status and
// complaint.
func (s *Service) List(ctx context.Context, query string) ([]WorkOrder, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("service not initialized")
	}
	return s.store.List(ctx, query)
}

// Update applies the patch to an existing record and refreshes updated_at.
func (s *Service) Update(ctx context.Context, id int64, p Patch) (*WorkOrder, error) {
	if s == nil || s.store == nil {
		return nil, fmt.Errorf("service not initialized")
	}

	wo, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if p.CustomerName != nil {
		wo.CustomerName = strings.TrimSpace(*p.CustomerName)
	}
	if p.Vehicle != nil {
		wo.Vehicle = strings.TrimSpace(*p.Vehicle)
	}
	if p.Complaint != nil {
		wo.Complaint = strings.TrimSpace(*p.Complaint)
	}
	if p.Status != nil {
		wo.Status = strings.TrimSpace(*p.Status)
	}

	wo.UpdatedAt = s.now().UTC()
	if wo.UpdatedAt.Before(wo.CreatedAt) {
		wo.UpdatedAt = wo.CreatedAt
	}

	if err := s.store.Update(ctx, wo); err != nil {
		return nil, err
	}
	return wo, nil
}

// Delete removes the record if present and reports whether it existed.
func (s *Service) Delete(ctx context.Context, id int64) (bool, error) {
	if s == nil || s.store == nil {
		return false, fmt.Errorf("service not initialized")
	}
	return s.store.Delete(ctx, id)
}

// demoSamples are the fixed demonstration records; texts are part of the
// seeding contract and must not drift.
var demoSamples = []CreateInput{
	{CustomerName: "Amara J.", Vehicle: "2013 Infiniti G37S", Complaint: "Hard top won't close; HYD pump noise; DTC B23XX", Status: StatusOpen},
	{CustomerName: "Archer R.", Vehicle: "2015 Chevy Suburban 5.3L", Complaint: "Intermittent no crank; suspect starter/grounds", Status: StatusInProgress},
	{CustomerName: "Athena R.", Vehicle: "2020 Nissan Pathfinder", Complaint: "Sunroof drains clogged; wet headliner", Status: StatusOpen},
	{CustomerName: "Nik R.", Vehicle: "2017 Ford F-150 3.5 EB", Complaint: "Underboost under load; P0299; smoke test needed", Status: StatusClosed},
}

// SeedDemo inserts the four demonstration records and returns how many were
// created.
func (s *Service) SeedDemo(ctx context.Context) (int, error) {
	if s == nil || s.store == nil {
		return 0, fmt.Errorf("service not initialized")
	}
	for i, sample := range demoSamples {
		if _, err := s.Create(ctx, sample); err != nil {
			return i, fmt.Errorf("seed sample %d: %w", i, err)
		}
	}
	return len(demoSamples), nil
}
