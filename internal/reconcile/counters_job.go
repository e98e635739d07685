package reconcile

import (
	"context"
	"fmt"

	"go.uber.org/multierr"

	"github.com/mealbridge/mealbridge-backend/internal/donations"
	"github.com/mealbridge/mealbridge-backend/internal/ngos"
	"github.com/mealbridge/mealbridge-backend/internal/users"
	"github.com/mealbridge/mealbridge-backend/pkg/enums"
	"github.com/mealbridge/mealbridge-backend/pkg/logger"
)

// CountersJob recomputes the denormalized donation counters from the donation
// table, repairing drift left behind by concurrent transitions. Points are
// event-sourced awards and are deliberately not touched.
type CountersJob struct {
	users     users.Repository
	ngos      ngos.Repository
	donations donations.Repository
	logg      *logger.Logger
}

// NewCountersJob builds the counters reconciliation job.
func NewCountersJob(usersRepo users.Repository, ngosRepo ngos.Repository, donationsRepo donations.Repository, logg *logger.Logger) (*CountersJob, error) {
	if usersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if ngosRepo == nil {
		return nil, fmt.Errorf("ngos repository required")
	}
	if donationsRepo == nil {
		return nil, fmt.Errorf("donations repository required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &CountersJob{
		users:     usersRepo,
		ngos:      ngosRepo,
		donations: donationsRepo,
		logg:      logg,
	}, nil
}

// Name implements Job.
func (j *CountersJob) Name() string {
	return "counters"
}

// Run implements Job. Per-entity failures are aggregated so one bad row does
// not stop the rest of the sweep.
func (j *CountersJob) Run(ctx context.Context) error {
	var errs error
	errs = multierr.Append(errs, j.reconcileDonors(ctx))
	errs = multierr.Append(errs, j.reconcileNGOs(ctx))
	return errs
}

func (j *CountersJob) reconcileDonors(ctx context.Context) error {
	donors, err := j.users.ListByRole(ctx, enums.UserRoleDonor)
	if err != nil {
		return fmt.Errorf("listing donors: %w", err)
	}

	inFlight := []enums.DonationStatus{enums.DonationStatusPending, enums.DonationStatusActive}
	completed := []enums.DonationStatus{enums.DonationStatusCompleted}

	var errs error
	for _, donor := range donors {
		active, err := j.donations.CountForDonor(ctx, donor.ID, inFlight)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("donor %s: counting active donations: %w", donor.ID, err))
			continue
		}
		total, err := j.donations.CountForDonor(ctx, donor.ID, completed)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("donor %s: counting completed donations: %w", donor.ID, err))
			continue
		}

		if donor.ActiveDonations == int(active) && donor.TotalDonations == int(total) {
			continue
		}

		entryCtx := j.logg.WithFields(ctx, map[string]any{
			"donor_id":        donor.ID.String(),
			"stored_active":   donor.ActiveDonations,
			"computed_active": active,
			"stored_total":    donor.TotalDonations,
			"computed_total":  total,
		})
		j.logg.Warn(entryCtx, "donor counters drifted; repairing")

		if err := j.users.SetCounters(ctx, donor.ID, int(active), int(total)); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("donor %s: repairing counters: %w", donor.ID, err))
		}
	}
	return errs
}

func (j *CountersJob) reconcileNGOs(ctx context.Context) error {
	orgs, err := j.ngos.List(ctx)
	if err != nil {
		return fmt.Errorf("listing organizations: %w", err)
	}

	inFlight := []enums.DonationStatus{enums.DonationStatusPending, enums.DonationStatusActive}
	completed := []enums.DonationStatus{enums.DonationStatusCompleted}

	var errs error
	for _, org := range orgs {
		active, err := j.donations.CountForNGO(ctx, org.ID, inFlight)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("ngo %s: counting active pickups: %w", org.ID, err))
			continue
		}
		done, err := j.donations.CountForNGO(ctx, org.ID, completed)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("ngo %s: counting completed pickups: %w", org.ID, err))
			continue
		}

		if org.ActivePickups == int(active) && org.CompletedPickups == int(done) {
			continue
		}

		entryCtx := j.logg.WithFields(ctx, map[string]any{
			"ngo_id":             org.ID.String(),
			"stored_active":      org.ActivePickups,
			"computed_active":    active,
			"stored_completed":   org.CompletedPickups,
			"computed_completed": done,
		})
		j.logg.Warn(entryCtx, "organization counters drifted; repairing")

		if err := j.ngos.SetPickupCounters(ctx, org.ID, int(active), int(done)); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("ngo %s: repairing counters: %w", org.ID, err))
		}
	}
	return errs
}
