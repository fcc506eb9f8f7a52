package main

import (
	"context"
	"os"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/upkeeply/maintenance-tracker/internal/auth"
	"github.com/upkeeply/maintenance-tracker/internal/config"
	"github.com/upkeeply/maintenance-tracker/internal/db"
	"github.com/upkeeply/maintenance-tracker/internal/models"
)

// Seeds a development database with an admin user, a site with a few
// machines, inventory stock and one recurring maintenance template, so the
// scheduler has something to chew on immediately.
func main() {
	_ = godotenv.Load()

	logger := log.New()
	logger.SetFormatter(&log.TextFormatter{FullTimestamp: true})

	cfg := config.Load()
	client, err := db.ConnectMongo()
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to MongoDB")
	}
	defer client.Disconnect(context.Background())

	database := client.Database(cfg.MongoDB)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.EnsureIndexes(ctx, database); err != nil {
		logger.WithError(err).Fatal("failed to create indexes")
	}
	collections := db.NewCollections(database)

	authService, err := auth.NewService()
	if err != nil {
		logger.WithError(err).Fatal("failed to initialize auth service")
	}

	adminPassword := os.Getenv("SEED_ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "changeme-admin"
	}
	hash, err := authService.HashPassword(adminPassword)
	if err != nil {
		logger.WithError(err).Fatal("failed to hash admin password")
	}

	if _, err := collections.Users.FindUserByUsername(ctx, "admin"); err != nil {
		admin := models.User{
			Username:     "admin",
			Email:        "admin@example.com",
			PasswordHash: hash,
			Role:         models.RoleAdmin,
			FirstName:    "Default",
			LastName:     "Admin",
		}
		if err := collections.Users.InsertUser(ctx, admin); err != nil {
			logger.WithError(err).Fatal("failed to create admin user")
		}
		logger.Info("created admin user")
	} else {
		logger.Info("admin user already exists, skipping")
	}

	siteID, err := collections.Sites.InsertSite(ctx, models.Site{
		Name:         "Main Plant",
		Address:      "1 Factory Road",
		ContactName:  "Plant Office",
		ContactEmail: "plant@example.com",
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to create site")
	}

	machines := []models.Machine{
		{Name: "Hydraulic Press A", Model: "HP-200", Manufacturer: "Stamford", SerialNumber: "HP200-0001", SiteID: &siteID, Status: "operational"},
		{Name: "Conveyor Line 1", Model: "CV-12", Manufacturer: "Beltco", SerialNumber: "CV12-0042", SiteID: &siteID, Status: "operational"},
		{Name: "CNC Mill 3", Model: "MX-5", Manufacturer: "Harding", SerialNumber: "MX5-0317", SiteID: &siteID, Status: "maintenance"},
	}
	var firstMachineID *models.Machine
	for i := range machines {
		id, err := collections.Machines.InsertMachine(ctx, machines[i])
		if err != nil {
			logger.WithError(err).Fatal("failed to create machine")
		}
		machines[i].ID = id
		if firstMachineID == nil {
			firstMachineID = &machines[i]
		}
		logger.WithField("machine", machines[i].Name).Info("created machine")
	}

	items := []models.InventoryItem{
		{Name: "Hydraulic oil 46", Category: "fluids", CurrentStock: 40, MinStock: 10, Unit: "L", UnitCost: 6.5, SiteID: &siteID, Supplier: "FluidCorp"},
		{Name: "Drive belt B-1422", Category: "belts", CurrentStock: 8, MinStock: 4, Unit: "pcs", UnitCost: 23.0, SiteID: &siteID, Supplier: "Beltco"},
		{Name: "Air filter AF-90", Category: "filters", CurrentStock: 3, MinStock: 5, Unit: "pcs", UnitCost: 11.2, SiteID: &siteID, Supplier: "FilterPro"},
	}
	for i := range items {
		id, err := collections.Inventory.InsertItem(ctx, items[i])
		if err != nil {
			logger.WithError(err).Fatal("failed to create inventory item")
		}
		items[i].ID = id
		logger.WithField("item", items[i].Name).Info("created inventory item")
	}

	scheduled := time.Now().AddDate(0, 0, -7)
	template := models.MaintenanceRecord{
		Title:              "Weekly press lubrication",
		Description:        "Check oil level, grease slides, inspect hoses.",
		Status:             models.StatusPending,
		Priority:           models.PriorityMedium,
		MachineID:          &firstMachineID.ID,
		SiteID:             &siteID,
		AssignedTo:         "admin",
		ScheduledDate:      scheduled,
		DueDate:            scheduled.AddDate(0, 0, 7),
		IsRecurring:        true,
		RecurrencePattern:  models.RecurrenceWeekly,
		RecurrenceInterval: 1,
		IsTemplate:         true,
	}
	templateID, err := collections.Maintenance.InsertMaintenance(ctx, template)
	if err != nil {
		logger.WithError(err).Fatal("failed to create maintenance template")
	}
	logger.WithField("template_id", templateID.Hex()).Info("created recurring maintenance template")

	logger.Info("seed finished")
}
