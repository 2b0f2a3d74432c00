package migrations

import (
	"log"

	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// Run applies all pending migrations in order
func Run(db *gorm.DB) error {
	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		CreateUsersTable(),
		CreateCampaignsTables(),
		CreateDonationsTables(),
		CreatePayoutTables(),
	})

	if err := m.Migrate(); err != nil {
		return err
	}

	log.Println("Migrations completed successfully")
	return nil
}
