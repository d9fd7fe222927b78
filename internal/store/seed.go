package store

import (
	"context"

	"talentscreen/internal/errors"
	"talentscreen/internal/types"
)

// demoJobs are inserted on first startup so the dashboard is usable
// before any real positions have been defined.
var demoJobs = []types.JobInput{
	{
		Title:        "Senior Full Stack Engineer",
		Department:   "Engineering",
		Description:  "We are looking for an experienced Full Stack Engineer to join our team. You will be building scalable web applications using React and Node.js.",
		Requirements: "- 5+ years of experience with JavaScript/TypeScript\n- Experience with React, Node.js, and PostgreSQL\n- Knowledge of cloud infrastructure (AWS/GCP)\n- Strong communication skills",
	},
	{
		Title:        "Product Marketing Manager",
		Department:   "Marketing",
		Description:  "Join our marketing team to lead product launches and go-to-market strategies.",
		Requirements: "- 3+ years in product marketing\n- Experience in B2B SaaS\n- Excellent writing and storytelling skills\n- Data-driven mindset",
	},
}

// SeedDemoJobs inserts the demo jobs when the jobs table is empty.
// Existing data is never touched.
func SeedDemoJobs(ctx context.Context, s Store, logger *errors.Logger) error {
	jobs, err := s.ListJobs(ctx)
	if err != nil {
		return err
	}
	if len(jobs) > 0 {
		return nil
	}

	if logger != nil {
		logger.Info("Seeding database with demo jobs")
	}

	for _, input := range demoJobs {
		if _, err := s.CreateJob(ctx, input); err != nil {
			return err
		}
	}

	if logger != nil {
		logger.Info("Database seeded", "jobs", len(demoJobs))
	}

	return nil
}
