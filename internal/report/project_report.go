package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// UnassignedDepartment is the fallback when a project has no department.
const UnassignedDepartment = "Unassigned"

// maxCoordinators caps the coordinator list shown per project.
const maxCoordinators = 5

type Coordinator struct {
	UserID int    `json:"user_id"`
	Name   string `json:"name"`
}

type ProjectReportEntry struct {
	ProjectID    int             `json:"project_id"`
	Name         string          `json:"name"`
	Department   string          `json:"department"`
	Billing      string          `json:"billing"`
	Billed       HoursMinutes    `json:"billed"`
	Logged       HoursMinutes    `json:"logged"`
	Payment      decimal.Decimal `json:"payment"`
	LastActivity *time.Time      `json:"last_activity,omitempty"`
	Coordinators []Coordinator   `json:"coordinators"`
}

type ProjectReport struct {
	Projects []ProjectReportEntry `json:"projects"`
}

func (s *Service) buildProjectReport(ctx context.Context, snap *snapshot, p Params) (*ProjectReport, error) {
	rollups := s.rollupAll(ctx, snap, p.Range)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := &ProjectReport{Projects: []ProjectReportEntry{}}

	for _, proj := range snap.projects {
		rollup := rollups[proj.ID]

		department := proj.DepartmentName
		if department == "" {
			department = UnassignedDepartment
		}

		coordinatorIDs := proj.Coordinators
		if len(coordinatorIDs) > maxCoordinators {
			coordinatorIDs = coordinatorIDs[:maxCoordinators]
		}
		coordinators := make([]Coordinator, 0, len(coordinatorIDs))
		for _, id := range coordinatorIDs {
			coordinators = append(coordinators, Coordinator{UserID: id, Name: snap.names.Get(id)})
		}

		doc.Projects = append(doc.Projects, ProjectReportEntry{
			ProjectID:    proj.ID,
			Name:         proj.Name,
			Department:   department,
			Billing:      proj.Billing,
			Billed:       SplitMinutes(rollup.BilledMinutes),
			Logged:       SplitMinutes(rollup.LoggedMinutes),
			Payment:      ComputePayment(proj, rollup.BilledMinutes),
			LastActivity: rollup.LastActivity,
			Coordinators: coordinators,
		})
	}

	return doc, nil
}
