package migrations

import (
	"github.com/go-gormigrate/gormigrate/v2"
	"gorm.io/gorm"
)

// CreatePayoutTables creates withdrawal accounts, exchange rate snapshots
// and the background job table
func CreatePayoutTables() *gormigrate.Migration {
	return &gormigrate.Migration{
		ID: "000004_create_payout_tables",
		Migrate: func(tx *gorm.DB) error {
			if err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS withdrawal_accounts (
					id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
					user_id UUID NOT NULL REFERENCES users(id),
					account_type VARCHAR(20) NOT NULL,
					details JSONB,
					verified BOOLEAN DEFAULT FALSE,
					is_primary BOOLEAN DEFAULT FALSE,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					deleted_at TIMESTAMP WITH TIME ZONE
				);

				CREATE INDEX idx_withdrawal_accounts_user_id ON withdrawal_accounts(user_id);
			`).Error; err != nil {
				return err
			}

			if err := tx.Exec(`
				CREATE TABLE IF NOT EXISTS exchange_rates (
					id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
					currency VARCHAR(5) NOT NULL,
					rate_usd DECIMAL(16,4) NOT NULL,
					source VARCHAR(50),
					fetched_at TIMESTAMP WITH TIME ZONE NOT NULL,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
				);

				CREATE INDEX idx_exchange_rates_currency ON exchange_rates(currency);
			`).Error; err != nil {
				return err
			}

			return tx.Exec(`
				CREATE TABLE IF NOT EXISTS jobs (
					id UUID PRIMARY KEY,
					type VARCHAR(50) NOT NULL,
					payload JSONB,
					status VARCHAR(20) NOT NULL DEFAULT 'pending',
					retry_count INT DEFAULT 0,
					max_retries INT DEFAULT 3,
					error TEXT,
					created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
					updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
				);

				CREATE INDEX idx_jobs_type ON jobs(type);
				CREATE INDEX idx_jobs_status ON jobs(status);
			`).Error
		},
		Rollback: func(tx *gorm.DB) error {
			return tx.Exec(`
				DROP TABLE IF EXISTS jobs;
				DROP TABLE IF EXISTS exchange_rates;
				DROP TABLE IF EXISTS withdrawal_accounts;
			`).Error
		},
	}
}
