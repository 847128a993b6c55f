// Package seed populates a storage backend with fake eviction cases for
// local development of the clerk dashboard.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"gaevic/internal/cases"
	"gaevic/internal/engine"
	"gaevic/internal/utils"
	"gaevic/pkg/types"
)

var fakeLandlords = []string{
	"Warner Robins Property Group",
	"Centerville Rentals LLC",
	"Peach State Housing",
	"Marcus Tillman",
	"Robins Plaza Management",
	"Houston Lake Properties",
}

var fakeTenants = []string{
	"James Carter",
	"Maria Delgado",
	"Terrence Boyd",
	"Alicia Nguyen",
	"Derrick Holmes",
	"Sandra Whitfield",
}

var fakeStreets = []string{
	"101 Elberta Rd",
	"422 Watson Blvd",
	"87 Green St",
	"1520 Moody Rd",
	"233 Carl Vinson Pkwy",
	"9 Sandy Run Dr",
}

var fakeReasons = []string{
	"non-payment of rent",
	"holding over past lease term",
	"lease violation",
}

type weightedStatus struct {
	Status types.CaseStatus
	Weight int
}

var weightedStatuses = []weightedStatus{
	{Status: types.StatusSubmitted, Weight: 35},
	{Status: types.StatusProcessing, Weight: 25},
	{Status: types.StatusApproved, Weight: 15},
	{Status: types.StatusRejected, Weight: 10},
	{Status: types.StatusFiled, Weight: 15},
}

func pickStatus(rng *rand.Rand) types.CaseStatus {
	total := 0
	for _, ws := range weightedStatuses {
		total += ws.Weight
	}
	n := rng.Intn(total)
	for _, ws := range weightedStatuses {
		n -= ws.Weight
		if n < 0 {
			return ws.Status
		}
	}
	return types.StatusSubmitted
}

// FakeCases submits count generated cases through the sync engine and walks
// a weighted share of them through the clerk lifecycle.
func FakeCases(ctx context.Context, eng *engine.Engine, caseService *cases.Service, count int) error {
	if count <= 0 {
		fmt.Println("Skipping fake case seed because count <= 0")
		return nil
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	created := 0

	for i := 0; i < count; i++ {
		leaseType := "annual"
		if rng.Intn(2) == 0 {
			leaseType = "month-to-month"
		}
		rent := float64(rng.Intn(12)+6) * 100

		sub := &types.CaseSubmission{
			CaseData: types.Case{
				LandlordName:    fakeLandlords[rng.Intn(len(fakeLandlords))],
				LandlordEmail:   "landlord@example.com",
				TenantName:      fakeTenants[rng.Intn(len(fakeTenants))],
				PropertyAddress: fakeStreets[rng.Intn(len(fakeStreets))],
				PropertyCity:    "Warner Robins",
				PropertyZip:     "31088",
				RentAmount:      rent,
				AmountOwed:      rent * float64(rng.Intn(3)+1),
				Reason:          fakeReasons[rng.Intn(len(fakeReasons))],
				LeaseType:       leaseType,
				MilitaryCheck:   rng.Intn(10) > 0,
				SubmittedAt:     time.Now().UTC().AddDate(0, 0, -rng.Intn(90)),
			},
		}

		result, err := eng.Submit(ctx, sub)
		if err != nil {
			return fmt.Errorf("seed case %d: %w", i, err)
		}
		if !result.Success {
			return fmt.Errorf("seed case %d: %d document failures", i, len(result.Failures))
		}

		if err := advanceCase(ctx, caseService, result.CaseID, pickStatus(rng), rng); err != nil {
			return fmt.Errorf("advance seed case %s: %w", result.CaseID, err)
		}
		created++
	}

	fmt.Printf("Seeded %d fake cases\n", created)
	return nil
}

// advanceCase replays the clerk workflow up to the target status so seeded
// records carry the same field stamps real ones do.
func advanceCase(ctx context.Context, caseService *cases.Service, caseID string, target types.CaseStatus, rng *rand.Rand) error {
	const actor = "seed@houstoncountyga.gov"

	step := func(status types.CaseStatus, upd types.CaseUpdate) error {
		upd.Status = &status
		_, err := caseService.UpdateStatus(ctx, caseID, upd, actor)
		return err
	}

	switch target {
	case types.StatusSubmitted:
		return nil
	case types.StatusProcessing:
		return step(types.StatusProcessing, types.CaseUpdate{})
	case types.StatusApproved:
		if err := step(types.StatusProcessing, types.CaseUpdate{}); err != nil {
			return err
		}
		return step(types.StatusApproved, types.CaseUpdate{})
	case types.StatusRejected:
		if err := step(types.StatusProcessing, types.CaseUpdate{}); err != nil {
			return err
		}
		return step(types.StatusRejected, types.CaseUpdate{
			RejectionReason: utils.StringPtr("incomplete demand notice"),
		})
	case types.StatusFiled:
		if err := step(types.StatusProcessing, types.CaseUpdate{}); err != nil {
			return err
		}
		if err := step(types.StatusApproved, types.CaseUpdate{}); err != nil {
			return err
		}
		number := fmt.Sprintf("%d-EV-%05d", time.Now().Year(), rng.Intn(99999))
		_, err := caseService.AssignOfficialNumber(ctx, caseID, number, "", actor)
		return err
	}
	return nil
}
