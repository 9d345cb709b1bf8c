/*
main.go - Database seeder

PURPOSE:
  Idempotent bootstrap for a fresh or existing database. Ensures the
  standard department list exists and, when the database has no users
  yet, creates a demo admin, employee and manager.

USAGE:
  ./seed -db="./officecal.db"

SEE ALSO:
  - store/sqlite/sqlite.go: schema and store
*/
package main

import (
	"context"
	"errors"
	"flag"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/zhuk18/OfficeCal/calendar"
	"github.com/zhuk18/OfficeCal/store/sqlite"
)

var departmentNames = []string{
	"Accounting and law",
	"Cloud",
	"Development",
	"HR",
	"Integrations",
	"Marketing",
	"Office administrators",
	"Partner relationships",
	"Product owners",
	"Sales",
	"Security",
	"Support",
	"System administration",
	"Trainings",
}

func main() {
	_ = godotenv.Load()

	log := logrus.StandardLogger()

	dbPath := flag.String("db", envString("DATABASE_URL", "officecal.db"), "SQLite database path")
	flag.Parse()

	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize database")
	}
	defer store.Close()

	ctx := context.Background()

	byName := make(map[string]int64, len(departmentNames))
	for _, name := range departmentNames {
		dept, err := store.CreateDepartment(ctx, name)
		if errors.Is(err, sqlite.ErrConflict) {
			dept, err = store.GetDepartmentByName(ctx, name)
		}
		if err != nil {
			log.WithError(err).WithField("department", name).Fatal("Failed to seed department")
		}
		byName[name] = dept.ID
	}
	log.WithField("count", len(departmentNames)).Info("Departments ensured")

	// Demo users only on an empty database.
	count, err := store.CountUsers(ctx)
	if err != nil {
		log.WithError(err).Fatal("Failed to count users")
	}
	if count > 0 {
		log.Info("Users exist, skipping demo users")
		return
	}

	hr := byName["HR"]
	dev := byName["Development"]
	demo := []sqlite.User{
		{DisplayName: "Admin User", Email: "admin@example.com", Role: calendar.RoleAdmin, AnnualRemoteLimit: 100, DepartmentID: &hr},
		{DisplayName: "Alice Employee", Email: "alice@example.com", Role: calendar.RoleEmployee, AnnualRemoteLimit: 100, DepartmentID: &dev},
		{DisplayName: "Bob Manager", Email: "bob@example.com", Role: calendar.RoleManager, AnnualRemoteLimit: 100, DepartmentID: &dev},
	}
	for i := range demo {
		if err := store.CreateUser(ctx, &demo[i]); err != nil {
			log.WithError(err).WithField("email", demo[i].Email).Fatal("Failed to seed user")
		}
	}
	log.WithField("count", len(demo)).Info("Demo users created")
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
