package sync

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-repo-sync/core"
	"github.com/google/uuid"
)

// Distributor fans a population re-sync out over the job queue, one sync job
// per member, staggered so downstream provider calls never burst.
type Distributor struct {
	Organizations core.OrganizationStore
	Dispatcher    core.JobDispatcher
	Config        core.SyncConfig
	Observer      core.Observer
}

func NewDistributor(organizations core.OrganizationStore, dispatcher core.JobDispatcher, cfg core.SyncConfig) *Distributor {
	return &Distributor{
		Organizations: organizations,
		Dispatcher:    dispatcher,
		Config:        cfg,
	}
}

// Distribute submits one sync job per distinct member of the target
// organizations. With slugs the targets are the matching organizations;
// without, every organization with delegated SSO enabled. The n-th submitted
// job carries a delay of n times the stagger interval, counted across the
// whole call rather than per organization.
func (d *Distributor) Distribute(ctx context.Context, organizationSlugs []string) (err error) {
	if d == nil || d.Organizations == nil || d.Dispatcher == nil {
		return fmt.Errorf("sync: distributor requires organization store and dispatcher")
	}
	startedAt := time.Now().UTC()
	fields := map[string]any{}
	defer func() {
		d.Observer.ObserveOperation(ctx, startedAt, "distribute_resync", err, fields)
	}()

	var organizations []core.Organization
	slugs := trimSlugs(organizationSlugs)
	if len(slugs) > 0 {
		fields["organization_slugs"] = strings.Join(slugs, ",")
		organizations, err = d.Organizations.FindBySlugs(ctx, slugs)
	} else {
		organizations, err = d.Organizations.FindWithSSOProvider(ctx, core.SSOProviderAllauth)
	}
	if err != nil {
		return err
	}
	fields["organization_count"] = len(organizations)

	d.Observer.LogInfo(ctx, "triggering re-sync for organizations", map[string]any{
		"count": len(organizations),
	})

	submitted := 0
	seen := map[string]struct{}{}
	for _, organization := range organizations {
		members, listErr := d.Organizations.Members(ctx, organization.ID)
		if listErr != nil {
			err = listErr
			return err
		}
		d.Observer.LogInfo(ctx, "triggering re-sync for organization", map[string]any{
			"organization_slug": organization.Slug,
			"count":             len(members),
		})
		for _, member := range members {
			if _, ok := seen[member.ID]; ok {
				continue
			}
			seen[member.ID] = struct{}{}

			submitErr := d.Dispatcher.Submit(ctx, core.JobRequest{
				Task:           core.TaskSyncUser,
				Args:           map[string]any{"user_id": member.ID},
				Delay:          time.Duration(submitted) * d.staggerInterval(),
				Budget:         d.singleUserBudget(),
				IdempotencyKey: uuid.NewString(),
			})
			if submitErr != nil {
				err = submitErr
				return err
			}
			submitted++
		}
	}
	fields["submitted_jobs"] = submitted
	return nil
}

func (d *Distributor) staggerInterval() time.Duration {
	if d != nil && d.Config.StaggerInterval > 0 {
		return d.Config.StaggerInterval
	}
	return core.DefaultConfig().Sync.StaggerInterval
}

func (d *Distributor) singleUserBudget() time.Duration {
	if d != nil && d.Config.SingleUserBudget > 0 {
		return d.Config.SingleUserBudget
	}
	return core.DefaultConfig().Sync.SingleUserBudget
}

func trimSlugs(slugs []string) []string {
	out := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		trimmed := strings.TrimSpace(slug)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}
	return out
}
