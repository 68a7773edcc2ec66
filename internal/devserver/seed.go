package devserver

import (
	"fmt"
	"log"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"servio/internal/domain"
)

// Seed fills an empty database with demo accounts and bookings. All demo
// passwords are "password". Re-running against a non-empty database is a
// no-op.
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&Account{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count accounts: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte("password"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash demo password: %w", err)
	}

	accounts := []Account{
		{UserName: "alice", FirstName: "Alice", LastName: "Nguyen", Role: domain.RoleCustomer, PasswordHash: string(hash)},
		{UserName: "bob", FirstName: "Bob", LastName: "Kaplan", Role: domain.RoleCustomer, PasswordHash: string(hash)},
		{UserName: "brightclean", FirstName: "Carol", LastName: "Reyes", Role: domain.RoleServiceProvider, BusinessName: "Bright Clean Services", PasswordHash: string(hash)},
		{UserName: "fixitdave", FirstName: "Dave", LastName: "Okafor", Role: domain.RoleServiceProvider, BusinessName: "FixIt Dave", PasswordHash: string(hash)},
	}
	if err := db.Create(&accounts).Error; err != nil {
		return fmt.Errorf("failed to seed accounts: %w", err)
	}

	bookings := []Booking{
		{CustomerID: accounts[0].ID, ProviderID: accounts[2].ID, ServiceName: "Deep cleaning", Status: domain.BookingConfirmed, Price: 120, ScheduledAt: time.Now().Add(48 * time.Hour)},
		{CustomerID: accounts[1].ID, ProviderID: accounts[3].ID, ServiceName: "Faucet repair", Status: domain.BookingPending, Price: 75, ScheduledAt: time.Now().Add(24 * time.Hour)},
	}
	if err := db.Create(&bookings).Error; err != nil {
		return fmt.Errorf("failed to seed bookings: %w", err)
	}

	log.Printf("devserver: seeded %d accounts and %d bookings", len(accounts), len(bookings))
	return nil
}
